package persistence

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stockwise/backend/internal/domain/integration"
	"github.com/stockwise/backend/internal/infrastructure/persistence/models"
)

// GormIdentityMappingRepository implements integration.IdentityMappingRepository using GORM
type GormIdentityMappingRepository struct {
	db    *gorm.DB
	batch *BatchWriter
}

// NewGormIdentityMappingRepository creates a new GormIdentityMappingRepository
func NewGormIdentityMappingRepository(db *gorm.DB, batch *BatchWriter) *GormIdentityMappingRepository {
	return &GormIdentityMappingRepository{db: db, batch: batch}
}

// FindByExternalIDs returns mappings for the given external IDs
func (r *GormIdentityMappingRepository) FindByExternalIDs(ctx context.Context, externalIDs []string) ([]integration.IdentityMapping, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}
	var rows []models.IdentityMappingModel
	if err := r.db.WithContext(ctx).Where("external_id IN ?", externalIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.IdentityMappingModel).ToDomain), nil
}

// Upsert inserts or refreshes mappings keyed by external ID
func (r *GormIdentityMappingRepository) Upsert(ctx context.Context, mappings []integration.IdentityMapping) error {
	rows := make([]*models.IdentityMappingModel, len(mappings))
	for i, m := range mappings {
		rows[i] = models.IdentityMappingModelFromDomain(m)
	}
	return r.batch.Write(ctx, "identity_mappings", len(rows), func(ctx context.Context, start, end int) error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "external_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"product_id", "updated_at"}),
			}).
			Create(rows[start:end]).Error
	})
}

var _ integration.IdentityMappingRepository = (*GormIdentityMappingRepository)(nil)
