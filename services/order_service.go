package services

import (
	"context"
	"fmt"
	"strings"

	"smartpyme-api/apperrors"
	"smartpyme-api/metrics"
	"smartpyme-api/models"
	"smartpyme-api/statemachine"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor is the authenticated user performing an order operation
type Actor struct {
	UserID uint
	Role   models.Role
}

type OrderLineInput struct {
	ProductID uint
	Quantity  int
}

type CreateOrderInput struct {
	DeliveryMethod  models.DeliveryMethod
	DeliveryAddress string
	Notes           string
	Items           []OrderLineInput
}

type OrderFilter struct {
	Status *models.OrderStatus
}

type OrderService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewOrderService(db *gorm.DB, log *zap.Logger) *OrderService {
	return &OrderService{db: db, log: log}
}

func validateOrderInput(in CreateOrderInput) error {
	if !in.DeliveryMethod.Valid() {
		return apperrors.Field("delivery_method", "delivery_method must be pickup or delivery")
	}
	if in.DeliveryMethod == models.DeliveryDelivery && strings.TrimSpace(in.DeliveryAddress) == "" {
		return apperrors.Field("delivery_address", "delivery_address is required for delivery orders")
	}
	if len(in.Items) == 0 {
		return apperrors.Field("items", "an order needs at least one item")
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return apperrors.Field("items", "quantity must be at least 1")
		}
	}
	return nil
}

func deliveryAllowed(tx *gorm.DB, tenant models.TenantID, method models.DeliveryMethod) error {
	key := models.SettingAllowPickup
	if method == models.DeliveryDelivery {
		key = models.SettingAllowDelivery
	}
	ok, err := settingBool(tx, tenant, key, true)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Field("delivery_method", fmt.Sprintf("%s is not offered by this store", method))
	}
	return nil
}

// Create places an order for customerID. Lines snapshot the current product
// price; stock is taken and the order, its lines and the initial Pending
// history row are written in a single transaction.
func (s *OrderService) Create(ctx context.Context, tenant models.TenantID, customerID uint, in CreateOrderInput) (*models.Order, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if err := validateOrderInput(in); err != nil {
		return nil, err
	}

	order := models.Order{
		TenantID:        tenant,
		CustomerID:      customerID,
		Status:          models.StatusPending,
		DeliveryMethod:  in.DeliveryMethod,
		DeliveryAddress: strings.TrimSpace(in.DeliveryAddress),
		Notes:           in.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.User
		if err := tx.Scopes(forTenant(tenant)).First(&customer, "id = ?", customerID).Error; err != nil {
			if isNotFound(err) {
				return apperrors.NotFound("customer")
			}
			return err
		}
		if !customer.Active {
			return apperrors.Forbidden("account is deactivated")
		}
		if err := deliveryAllowed(tx, tenant, in.DeliveryMethod); err != nil {
			return err
		}

		total := decimal.Zero
		for _, line := range in.Items {
			var p models.Product
			if err := tx.Scopes(forTenant(tenant)).First(&p, "id = ?", line.ProductID).Error; err != nil {
				if isNotFound(err) {
					return apperrors.Field("items", fmt.Sprintf("product %d does not exist", line.ProductID))
				}
				return err
			}
			if !p.Active {
				return apperrors.Field("items", fmt.Sprintf("product %q is not available", p.Name))
			}
			if p.Stock < line.Quantity {
				return apperrors.Field("items", fmt.Sprintf("insufficient stock for %q (available %d)", p.Name, p.Stock))
			}
			if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).
				Update("stock", gorm.Expr("stock - ?", line.Quantity)).Error; err != nil {
				return fmt.Errorf("reserve stock: %w", err)
			}

			subtotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(subtotal)
			order.Items = append(order.Items, models.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				Quantity:  line.Quantity,
				UnitPrice: p.Price,
				Subtotal:  subtotal,
			})
		}
		order.Total = total

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    models.StatusPending,
			ChangedBy: customerID,
			Note:      "order created",
		}).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	s.log.Info("order created",
		zap.Uint("tenant_id", uint(tenant)),
		zap.Uint("order_id", order.ID),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return s.load(ctx, tenant, order.ID)
}

// Transition moves an order along one edge of the lifecycle. The status update
// and the history row commit together. Concurrent transitions of the same
// order are not serialized: the last writer wins.
func (s *OrderService) Transition(ctx context.Context, tenant models.TenantID, orderID uint, to models.OrderStatus, actor Actor, note string) (*models.Order, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if !to.Valid() {
		return nil, apperrors.Field("status", "unknown status")
	}

	var from models.OrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Scopes(forTenant(tenant)).Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if isNotFound(err) {
				return apperrors.NotFound("order")
			}
			return err
		}
		if actor.Role == models.RoleCustomer {
			if order.CustomerID != actor.UserID {
				return apperrors.Forbidden("this order does not belong to you")
			}
			if to != models.StatusCancelled {
				return apperrors.Forbidden("customers can only cancel their orders")
			}
		}

		from = order.Status
		if err := statemachine.CanTransition(from, to); err != nil {
			return err
		}

		if err := tx.Model(&models.Order{}).Scopes(forTenant(tenant)).
			Where("id = ?", orderID).Update("status", to).Error; err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if to == models.StatusCancelled {
			for _, it := range order.Items {
				if err := tx.Model(&models.Product{}).Scopes(forTenant(tenant)).Where("id = ?", it.ProductID).
					Update("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
					return fmt.Errorf("restore stock: %w", err)
				}
			}
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   orderID,
			Status:    to,
			ChangedBy: actor.UserID,
			Note:      note,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderTransitions.WithLabelValues(from.String(), to.String()).Inc()
	s.log.Info("order transitioned",
		zap.Uint("tenant_id", uint(tenant)),
		zap.Uint("order_id", orderID),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Uint("actor", actor.UserID),
	)
	return s.load(ctx, tenant, orderID)
}

func (s *OrderService) load(ctx context.Context, tenant models.TenantID, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Scopes(forTenant(tenant)).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("order")
		}
		return nil, err
	}
	return &order, nil
}

// Get returns one order with lines and history. Customers only see their own.
func (s *OrderService) Get(ctx context.Context, tenant models.TenantID, actor Actor, id uint) (*models.Order, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	order, err := s.load(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleCustomer && order.CustomerID != actor.UserID {
		return nil, apperrors.Forbidden("this order does not belong to you")
	}
	return order, nil
}

// List returns the tenant's orders, newest first. Customers only see their own.
func (s *OrderService) List(ctx context.Context, tenant models.TenantID, actor Actor, f OrderFilter) ([]models.Order, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Scopes(forTenant(tenant)).Preload("Items")
	if actor.Role == models.RoleCustomer {
		q = q.Where("customer_id = ?", actor.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	var orders []models.Order
	err := q.Order("created_at desc, id desc").Find(&orders).Error
	return orders, err
}

// History returns the audit trail of an order, oldest first
func (s *OrderService) History(ctx context.Context, tenant models.TenantID, actor Actor, id uint) ([]models.OrderStatusHistory, error) {
	order, err := s.Get(ctx, tenant, actor, id)
	if err != nil {
		return nil, err
	}
	return order.StatusHistory, nil
}
