package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// SettingKind tags the type stored in a SettingValue
type SettingKind string

const (
	KindString  SettingKind = "string"
	KindNumber  SettingKind = "number"
	KindBoolean SettingKind = "boolean"
	KindJSON    SettingKind = "json"
)

// SettingValue is a tagged union. Only the field matching Kind is meaningful.
type SettingValue struct {
	Kind SettingKind
	Str  string
	Num  float64
	Bool bool
	JSON json.RawMessage
}

func StringValue(s string) SettingValue { return SettingValue{Kind: KindString, Str: s} }
func NumberValue(n float64) SettingValue { return SettingValue{Kind: KindNumber, Num: n} }
func BooleanValue(b bool) SettingValue { return SettingValue{Kind: KindBoolean, Bool: b} }
func JSONValue(raw string) SettingValue { return SettingValue{Kind: KindJSON, JSON: json.RawMessage(raw)} }

// Encode serializes the value into the TEXT column representation.
func (v SettingValue) Encode() (string, error) {
	switch v.Kind {
	case KindString:
		return v.Str, nil
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64), nil
	case KindBoolean:
		return strconv.FormatBool(v.Bool), nil
	case KindJSON:
		if !json.Valid(v.JSON) {
			return "", fmt.Errorf("setting value is not valid json")
		}
		return string(v.JSON), nil
	}
	return "", fmt.Errorf("unknown setting kind %q", v.Kind)
}

// DecodeSettingValue is the inverse of Encode for a stored kind/text pair.
func DecodeSettingValue(kind SettingKind, text string) (SettingValue, error) {
	switch kind {
	case KindString:
		return StringValue(text), nil
	case KindNumber:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return SettingValue{}, fmt.Errorf("decode number setting: %w", err)
		}
		return NumberValue(n), nil
	case KindBoolean:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return SettingValue{}, fmt.Errorf("decode boolean setting: %w", err)
		}
		return BooleanValue(b), nil
	case KindJSON:
		if !json.Valid([]byte(text)) {
			return SettingValue{}, fmt.Errorf("decode json setting: invalid json")
		}
		return JSONValue(text), nil
	}
	return SettingValue{}, fmt.Errorf("unknown setting kind %q", kind)
}

// SettingValueFromJSON builds a value of the given kind from an arbitrary JSON payload
func SettingValueFromJSON(kind SettingKind, raw json.RawMessage) (SettingValue, error) {
	switch kind {
	case KindString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return SettingValue{}, fmt.Errorf("expected a string")
		}
		return StringValue(s), nil
	case KindNumber:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return SettingValue{}, fmt.Errorf("expected a number")
		}
		return NumberValue(n), nil
	case KindBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return SettingValue{}, fmt.Errorf("expected a boolean")
		}
		return BooleanValue(b), nil
	case KindJSON:
		if !json.Valid(raw) {
			return SettingValue{}, fmt.Errorf("expected json")
		}
		return JSONValue(string(raw)), nil
	}
	return SettingValue{}, fmt.Errorf("unknown setting kind %q", kind)
}

// MarshalJSON renders the value as its natural JSON type
func (v SettingValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBoolean:
		return json.Marshal(v.Bool)
	case KindJSON:
		if len(v.JSON) == 0 {
			return []byte("null"), nil
		}
		return v.JSON, nil
	}
	return nil, fmt.Errorf("unknown setting kind %q", v.Kind)
}

// TenantSetting is the persisted row. Use Decode to read it typed.
type TenantSetting struct {
	ID        uint        `json:"-" gorm:"primaryKey"`
	TenantID  TenantID    `json:"-" gorm:"not null;uniqueIndex:idx_settings_tenant_key,priority:1"`
	Key       string      `json:"key" gorm:"column:setting_key;size:100;not null;uniqueIndex:idx_settings_tenant_key,priority:2"`
	Kind      SettingKind `json:"kind" gorm:"size:20;not null"`
	RawValue  string      `json:"-" gorm:"column:setting_value;type:text"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (TenantSetting) TableName() string { return "tenant_settings" }

func (s TenantSetting) Decode() (SettingValue, error) {
	return DecodeSettingValue(s.Kind, s.RawValue)
}

// NewTenantSetting encodes v into a row for tenant
func NewTenantSetting(tenant TenantID, key string, v SettingValue) (TenantSetting, error) {
	raw, err := v.Encode()
	if err != nil {
		return TenantSetting{}, err
	}
	return TenantSetting{TenantID: tenant, Key: key, Kind: v.Kind, RawValue: raw}, nil
}

// Well-known setting keys
const (
	SettingCurrency      = "currency"
	SettingTaxRate       = "tax_rate"
	SettingAllowPickup   = "allow_pickup"
	SettingAllowDelivery = "allow_delivery"
	SettingBusinessHours = "business_hours"
)

// DefaultSettings are created together with every new tenant
func DefaultSettings() map[string]SettingValue {
	return map[string]SettingValue{
		SettingCurrency:      StringValue("USD"),
		SettingTaxRate:       NumberValue(0),
		SettingAllowPickup:   BooleanValue(true),
		SettingAllowDelivery: BooleanValue(true),
		SettingBusinessHours: JSONValue(`{}`),
	}
}
