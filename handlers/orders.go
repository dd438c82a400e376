package handlers

import (
	"net/http"

	"smartpyme-api/middleware"
	"smartpyme-api/models"
	"smartpyme-api/services"
	"smartpyme-api/statemachine"

	"github.com/gin-gonic/gin"
)

type PlaceOrderRequest struct {
	DeliveryMethod  models.DeliveryMethod `json:"delivery_method" binding:"required,oneof=pickup delivery"`
	DeliveryAddress string                `json:"delivery_address"`
	Notes           string                `json:"notes" binding:"max=500"`
	Items           []struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// PlaceOrder creates a new order (customer only)
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if !bind(c, &req) {
		return
	}
	in := services.CreateOrderInput{
		DeliveryMethod:  req.DeliveryMethod,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, services.OrderLineInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	order, err := h.orders.Create(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, order)
}

// ListOrders supports ?status=<name>. Customers only get their own orders.
func (h *Handler) ListOrders(c *gin.Context) {
	var filter services.OrderFilter
	if raw := c.Query("status"); raw != "" {
		st, err := models.ParseOrderStatus(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid status filter", nil)
			return
		}
		filter.Status = &st
	}
	orders, err := h.orders.List(c.Request.Context(), middleware.GetTenantID(c), h.actor(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), middleware.GetTenantID(c), h.actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"order":             order,
		"valid_transitions": validTransitionsFor(order.Status, h.actor(c)),
	})
}

// UpdateOrderStatus applies one lifecycle transition. Invalid edges are 422.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req UpdateStatusRequest
	if !bind(c, &req) {
		return
	}
	order, err := h.orders.Transition(c.Request.Context(), middleware.GetTenantID(c), id, req.Status, h.actor(c), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, order)
}

func (h *Handler) GetOrderHistory(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	history, err := h.orders.History(c.Request.Context(), middleware.GetTenantID(c), h.actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, history)
}

// validTransitionsFor lists the statuses the caller may move an order to next
func validTransitionsFor(status models.OrderStatus, actor services.Actor) []models.OrderStatus {
	nexts := statemachine.ValidTransitionsFrom(status)
	if actor.Role != models.RoleCustomer {
		return nexts
	}
	for _, s := range nexts {
		if s == models.StatusCancelled {
			return []models.OrderStatus{s}
		}
	}
	return []models.OrderStatus{}
}
