package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stockwise/backend/internal/domain/catalog"
	"github.com/stockwise/backend/internal/infrastructure/persistence/models"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db       *gorm.DB
	batch    *BatchWriter
	pageSize int
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB, batch *BatchWriter, pageSize int) *GormProductRepository {
	return &GormProductRepository{db: db, batch: batch, pageSize: pageSize}
}

// FindByExternalIDs returns products whose external ID is in externalIDs
func (r *GormProductRepository) FindByExternalIDs(ctx context.Context, externalIDs []string) ([]catalog.Product, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("external_id IN ?", externalIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.ProductModel).ToDomain), nil
}

// FindByIDs returns products by internal ID
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.ProductModel).ToDomain), nil
}

// FindCategorizedByNames returns categorized products whose lower-cased name
// is in names, most recently synced first. names must come from
// catalog.NormalizeName; stored names are whitespace-cleaned on write.
func (r *GormProductRepository) FindCategorizedByNames(ctx context.Context, names []string) ([]catalog.Product, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var rows []models.ProductModel
	err := r.db.WithContext(ctx).
		Where("category IS NOT NULL AND category <> ''").
		Where("LOWER(name) IN ?", names).
		Order("synced_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.ProductModel).ToDomain), nil
}

// ListActive returns all products not marked deleted
func (r *GormProductRepository) ListActive(ctx context.Context) ([]catalog.Product, error) {
	return listPaged(ctx, r.db, r.pageSize, "id ASC",
		func(q *gorm.DB) *gorm.DB { return q.Where("is_deleted = ?", false) },
		(*models.ProductModel).ToDomain,
	)
}

// UpsertProducts inserts or replaces products keyed by external ID. The
// stored ID of an existing row is kept.
func (r *GormProductRepository) UpsertProducts(ctx context.Context, products []catalog.Product) error {
	rows := productRows(products)
	return r.batch.Write(ctx, "products", len(rows), func(ctx context.Context, start, end int) error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "external_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "category", "sku", "is_deleted", "synced_at", "updated_at",
				}),
			}).
			Create(rows[start:end]).Error
	})
}

// InsertFallbacks inserts placeholder products, skipping external IDs that
// already have a row
func (r *GormProductRepository) InsertFallbacks(ctx context.Context, products []catalog.Product) error {
	rows := productRows(products)
	return r.batch.Write(ctx, "products", len(rows), func(ctx context.Context, start, end int) error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "external_id"}},
				DoNothing: true,
			}).
			Create(rows[start:end]).Error
	})
}

func productRows(products []catalog.Product) []*models.ProductModel {
	rows := make([]*models.ProductModel, len(products))
	for i, p := range products {
		rows[i] = models.ProductModelFromDomain(p)
	}
	return rows
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
