package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stockwise/backend/internal/domain/catalog"
	"github.com/stockwise/backend/internal/infrastructure/persistence/models"
)

// GormVariationRepository implements catalog.VariationRepository using GORM
type GormVariationRepository struct {
	db    *gorm.DB
	batch *BatchWriter
}

// NewGormVariationRepository creates a new GormVariationRepository
func NewGormVariationRepository(db *gorm.DB, batch *BatchWriter) *GormVariationRepository {
	return &GormVariationRepository{db: db, batch: batch}
}

// UpsertVariations inserts or replaces variations keyed by external variation ID
func (r *GormVariationRepository) UpsertVariations(ctx context.Context, variations []catalog.Variation) error {
	rows := make([]*models.VariationModel, len(variations))
	for i, v := range variations {
		rows[i] = models.VariationModelFromDomain(v)
	}
	return r.batch.Write(ctx, "product_variations", len(rows), func(ctx context.Context, start, end int) error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "external_variation_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"product_id", "name", "sku", "price", "synced_at", "updated_at",
				}),
			}).
			Create(rows[start:end]).Error
	})
}

// FindByExternalIDs returns variations whose external variation ID is in externalIDs
func (r *GormVariationRepository) FindByExternalIDs(ctx context.Context, externalIDs []string) ([]catalog.Variation, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}
	var rows []models.VariationModel
	if err := r.db.WithContext(ctx).Where("external_variation_id IN ?", externalIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.VariationModel).ToDomain), nil
}

// ListByProductIDs returns variations owned by the given products
func (r *GormVariationRepository) ListByProductIDs(ctx context.Context, productIDs []uuid.UUID) ([]catalog.Variation, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var rows []models.VariationModel
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.VariationModel).ToDomain), nil
}

var _ catalog.VariationRepository = (*GormVariationRepository)(nil)
