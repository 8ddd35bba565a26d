package events

import (
	"time"

	"github.com/agassama1998/materialmanagementapp/internal/domain"

	"github.com/google/uuid"
)

type EventType string

const (
	MaterialCreated  EventType = "material.created"
	MaterialUpdated  EventType = "material.updated"
	MaterialDeleted  EventType = "material.deleted"
	MaterialLowStock EventType = "material.low_stock"
)

// MaterialEvent is published after a material write has been committed.
type MaterialEvent struct {
	EventID         string    `json:"event_id"`
	Type            EventType `json:"type"`
	MaterialID      int64     `json:"material_id"`
	SKU             string    `json:"sku"`
	Name            string    `json:"name"`
	CategoryID      int64     `json:"category_id"`
	Quantity        int       `json:"quantity"`
	MinimumQuantity int       `json:"minimum_quantity"`
	UnitPrice       string    `json:"unit_price"`
	Actor           string    `json:"actor,omitempty"`
	RequestID       string    `json:"request_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

func NewMaterialEvent(t EventType, m *domain.Material, actor string) MaterialEvent {
	return MaterialEvent{
		EventID:         uuid.NewString(),
		Type:            t,
		MaterialID:      m.ID,
		SKU:             m.SKU,
		Name:            m.Name,
		CategoryID:      m.CategoryID,
		Quantity:        m.Quantity,
		MinimumQuantity: m.MinimumQuantity,
		UnitPrice:       m.UnitPrice.StringFixed(domain.UnitPriceScale),
		Actor:           actor,
		Timestamp:       time.Now().UTC(),
	}
}
