package persistence

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stockwise/backend/internal/domain/catalog"
	"github.com/stockwise/backend/internal/infrastructure/persistence/models"
)

// GormLocationRepository implements catalog.LocationRepository using GORM
type GormLocationRepository struct {
	db    *gorm.DB
	batch *BatchWriter
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB, batch *BatchWriter) *GormLocationRepository {
	return &GormLocationRepository{db: db, batch: batch}
}

// UpsertLocations inserts or replaces locations by ID
func (r *GormLocationRepository) UpsertLocations(ctx context.Context, locations []catalog.Location) error {
	rows := make([]*models.LocationModel, len(locations))
	for i, l := range locations {
		rows[i] = models.LocationModelFromDomain(l)
	}
	return r.batch.Write(ctx, "locations", len(rows), func(ctx context.Context, start, end int) error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "synced_at", "updated_at"}),
			}).
			Create(rows[start:end]).Error
	})
}

// ListLocations returns every known location ordered by name
func (r *GormLocationRepository) ListLocations(ctx context.Context) ([]catalog.Location, error) {
	var rows []models.LocationModel
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.LocationModel).ToDomain), nil
}

var _ catalog.LocationRepository = (*GormLocationRepository)(nil)
