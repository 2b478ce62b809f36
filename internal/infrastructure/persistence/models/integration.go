package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockwise/backend/internal/domain/integration"
)

// IdentityMappingModel is the persistence model for an identity mapping
type IdentityMappingModel struct {
	ExternalID string    `gorm:"type:varchar(128);primaryKey"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index:idx_identity_mappings_product"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (IdentityMappingModel) TableName() string {
	return "identity_mappings"
}

// ToDomain converts the model to a domain IdentityMapping
func (m *IdentityMappingModel) ToDomain() integration.IdentityMapping {
	return integration.IdentityMapping{
		ExternalID: m.ExternalID,
		ProductID:  m.ProductID,
		UpdatedAt:  m.UpdatedAt,
	}
}

// IdentityMappingModelFromDomain converts a domain IdentityMapping to a model
func IdentityMappingModelFromDomain(m integration.IdentityMapping) *IdentityMappingModel {
	return &IdentityMappingModel{
		ExternalID: m.ExternalID,
		ProductID:  m.ProductID,
		UpdatedAt:  m.UpdatedAt,
	}
}

// AllModels lists every model, in dependency order, for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&LocationModel{},
		&ProductModel{},
		&VariationModel{},
		&InventoryModel{},
		&SaleModel{},
		&IdentityMappingModel{},
	}
}
