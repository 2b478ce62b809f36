package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockwise/backend/internal/domain/catalog"
)

// LocationModel is the persistence model for a store location
type LocationModel struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	SyncedAt  time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LocationModel) TableName() string {
	return "locations"
}

// ToDomain converts the model to a domain Location
func (m *LocationModel) ToDomain() catalog.Location {
	return catalog.Location{ID: m.ID, Name: m.Name, SyncedAt: m.SyncedAt}
}

// LocationModelFromDomain converts a domain Location to a model
func LocationModelFromDomain(l catalog.Location) *LocationModel {
	return &LocationModel{ID: l.ID, Name: l.Name, SyncedAt: l.SyncedAt}
}

// ProductModel is the persistence model for a canonical product
type ProductModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ExternalID *string   `gorm:"type:varchar(128);uniqueIndex:idx_products_external_id"`
	Name       string    `gorm:"type:varchar(255);not null"`
	Category   *string   `gorm:"type:varchar(128)"`
	SKU        string    `gorm:"type:varchar(100)"`
	IsDeleted  bool      `gorm:"not null;default:false"`
	SyncedAt   time.Time `gorm:"not null;index:idx_products_synced_at"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model to a domain Product
func (m *ProductModel) ToDomain() catalog.Product {
	p := catalog.Product{
		ID:        m.ID,
		Name:      m.Name,
		Category:  m.Category,
		SKU:       m.SKU,
		IsDeleted: m.IsDeleted,
		SyncedAt:  m.SyncedAt,
	}
	if m.ExternalID != nil {
		p.ExternalID = *m.ExternalID
	}
	return p
}

// ProductModelFromDomain converts a domain Product to a model. An empty
// external ID is stored as NULL so the unique index ignores it.
func ProductModelFromDomain(p catalog.Product) *ProductModel {
	m := &ProductModel{
		ID:        p.ID,
		Name:      catalog.CleanName(p.Name),
		Category:  p.Category,
		SKU:       p.SKU,
		IsDeleted: p.IsDeleted,
		SyncedAt:  p.SyncedAt,
	}
	if p.ExternalID != "" {
		ext := p.ExternalID
		m.ExternalID = &ext
	}
	return m
}

// VariationModel is the persistence model for a product variation
type VariationModel struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_product_variations_product"`
	ExternalVariationID string          `gorm:"type:varchar(128);not null;uniqueIndex:idx_product_variations_external_id"`
	Name                string          `gorm:"type:varchar(255)"`
	SKU                 string          `gorm:"type:varchar(100)"`
	Price               decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SyncedAt            time.Time       `gorm:"not null"`
	CreatedAt           time.Time       `gorm:"not null"`
	UpdatedAt           time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VariationModel) TableName() string {
	return "product_variations"
}

// ToDomain converts the model to a domain Variation
func (m *VariationModel) ToDomain() catalog.Variation {
	return catalog.Variation{
		ID:                  m.ID,
		ProductID:           m.ProductID,
		ExternalVariationID: m.ExternalVariationID,
		Name:                m.Name,
		SKU:                 m.SKU,
		Price:               m.Price,
		SyncedAt:            m.SyncedAt,
	}
}

// VariationModelFromDomain converts a domain Variation to a model
func VariationModelFromDomain(v catalog.Variation) *VariationModel {
	return &VariationModel{
		ID:                  v.ID,
		ProductID:           v.ProductID,
		ExternalVariationID: v.ExternalVariationID,
		Name:                v.Name,
		SKU:                 v.SKU,
		Price:               v.Price,
		SyncedAt:            v.SyncedAt,
	}
}
