package domain

import (
	"sort"
	"strings"
	"time"

	cart "github.com/ridloal/stationery-storefront/internal/cart/domain"
	"github.com/shopspring/decimal"
)

// Delivery slots offered at checkout.
const (
	SlotMorning   = "Morning (9 AM - 12 PM)"
	SlotAfternoon = "Afternoon (12 PM - 3 PM)"
	SlotEvening   = "Evening (3 PM - 6 PM)"
	SlotAnyTime   = "Any Time"
)

var DeliverySlots = []string{SlotMorning, SlotAfternoon, SlotEvening, SlotAnyTime}

type CustomerDetails struct {
	FullName              string `json:"full_name" validate:"required"`
	ContactNumber         string `json:"contact_number" validate:"required,contact"`
	Email                 string `json:"email" validate:"required,looseemail"`
	Address               string `json:"address" validate:"required"`
	PreferredDeliveryTime string `json:"preferred_delivery_time" validate:"required,slot"`
	SpecialInstructions   string `json:"special_instructions"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (c CustomerDetails) Trimmed() CustomerDetails {
	return CustomerDetails{
		FullName:              strings.TrimSpace(c.FullName),
		ContactNumber:         strings.TrimSpace(c.ContactNumber),
		Email:                 strings.TrimSpace(c.Email),
		Address:               strings.TrimSpace(c.Address),
		PreferredDeliveryTime: strings.TrimSpace(c.PreferredDeliveryTime),
		SpecialInstructions:   strings.TrimSpace(c.SpecialInstructions),
	}
}

type CreateOrderRequest struct {
	Customer    CustomerDetails
	Items       []cart.Entry
	TotalAmount decimal.Decimal
}

type OrderDetails struct {
	OrderID               string          `json:"order_id"`
	Items                 []cart.Entry    `json:"items"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	Customer              CustomerDetails `json:"customer"`
	OrderDate             time.Time       `json:"order_date"`
	EstimatedDeliveryDate time.Time       `json:"estimated_delivery_date"`
}

// ValidationError maps field names (JSON) to user-facing messages.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid customer details: " + strings.Join(parts, "; ")
}
