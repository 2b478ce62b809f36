package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockwise/backend/internal/domain/inventory"
)

// InventoryModel is the persistence model for a current stock record.
// VariationID is uuid.Nil for product-level stock so that the composite
// unique key treats it as a concrete value.
type InventoryModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	LocationID  string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_inventory_key,priority:1"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_key,priority:2"`
	VariationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_key,priority:3"`
	Quantity    float64   `gorm:"type:numeric(14,3);not null;default:0"`
	CountedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InventoryModel) TableName() string {
	return "inventory"
}

// ToDomain converts the model to a domain Record
func (m *InventoryModel) ToDomain() inventory.Record {
	return inventory.Record{
		InventoryKey: inventory.InventoryKey{
			LocationID:  m.LocationID,
			ProductID:   m.ProductID,
			VariationID: m.VariationID,
		},
		Quantity:  m.Quantity,
		UpdatedAt: m.CountedAt,
	}
}

// InventoryModelFromDomain converts a domain Record to a model, clamping the quantity
func InventoryModelFromDomain(r inventory.Record) *InventoryModel {
	return &InventoryModel{
		ID:          uuid.New(),
		LocationID:  r.LocationID,
		ProductID:   r.ProductID,
		VariationID: r.VariationID,
		Quantity:    inventory.ClampQuantity(r.Quantity),
		CountedAt:   r.UpdatedAt,
	}
}

// SaleModel is the persistence model for a raw sale event
type SaleModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LocationID  string     `gorm:"type:varchar(64);not null;index:idx_sales_location_date,priority:1"`
	ProductID   *uuid.UUID `gorm:"type:uuid"`
	VariationID *uuid.UUID `gorm:"type:uuid"`
	Quantity    float64    `gorm:"type:numeric(14,3);not null"`
	SaleDate    time.Time  `gorm:"not null;index:idx_sales_sale_date;index:idx_sales_location_date,priority:2"`
	CreatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the model to a domain SaleEvent
func (m *SaleModel) ToDomain() inventory.SaleEvent {
	e := inventory.SaleEvent{
		LocationID: m.LocationID,
		Quantity:   m.Quantity,
		SaleDate:   m.SaleDate,
	}
	if m.ProductID != nil {
		e.ProductID = *m.ProductID
	}
	if m.VariationID != nil {
		e.VariationID = *m.VariationID
	}
	return e
}

// SaleModelFromDomain converts a domain SaleEvent to a model
func SaleModelFromDomain(e inventory.SaleEvent) *SaleModel {
	m := &SaleModel{
		ID:         uuid.New(),
		LocationID: e.LocationID,
		Quantity:   e.Quantity,
		SaleDate:   e.SaleDate,
	}
	if e.ProductID != uuid.Nil {
		id := e.ProductID
		m.ProductID = &id
	}
	if e.VariationID != uuid.Nil {
		id := e.VariationID
		m.VariationID = &id
	}
	return m
}
