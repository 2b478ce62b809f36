package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stockwise/backend/internal/domain/inventory"
	"github.com/stockwise/backend/internal/infrastructure/persistence/models"
)

// GormInventoryRepository implements inventory.Repository using GORM
type GormInventoryRepository struct {
	db       *gorm.DB
	batch    *BatchWriter
	pageSize int
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB, batch *BatchWriter, pageSize int) *GormInventoryRepository {
	return &GormInventoryRepository{db: db, batch: batch, pageSize: pageSize}
}

// Upsert inserts or replaces records by (location, product, variation)
func (r *GormInventoryRepository) Upsert(ctx context.Context, records []inventory.Record) error {
	rows := make([]*models.InventoryModel, len(records))
	for i, rec := range records {
		rows[i] = models.InventoryModelFromDomain(rec)
	}
	return r.batch.Write(ctx, "inventory", len(rows), func(ctx context.Context, start, end int) error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "location_id"}, {Name: "product_id"}, {Name: "variation_id"},
				},
				DoUpdates: clause.AssignmentColumns([]string{"quantity", "counted_at", "updated_at"}),
			}).
			Create(rows[start:end]).Error
	})
}

// ListAll returns every stored record
func (r *GormInventoryRepository) ListAll(ctx context.Context) ([]inventory.Record, error) {
	return listPaged(ctx, r.db, r.pageSize, "id ASC", nil, (*models.InventoryModel).ToDomain)
}

var _ inventory.Repository = (*GormInventoryRepository)(nil)

// GormSalesRepository implements inventory.SalesRepository using GORM
type GormSalesRepository struct {
	db       *gorm.DB
	batch    *BatchWriter
	pageSize int
}

// NewGormSalesRepository creates a new GormSalesRepository
func NewGormSalesRepository(db *gorm.DB, batch *BatchWriter, pageSize int) *GormSalesRepository {
	return &GormSalesRepository{db: db, batch: batch, pageSize: pageSize}
}

// ReplaceWindow deletes stored events in [from, to) and inserts events in a
// single transaction
func (r *GormSalesRepository) ReplaceWindow(ctx context.Context, from, to time.Time, events []inventory.SaleEvent) error {
	rows := make([]*models.SaleModel, len(events))
	for i, e := range events {
		rows[i] = models.SaleModelFromDomain(e)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_date >= ? AND sale_date < ?", from, to).
			Delete(&models.SaleModel{}).Error; err != nil {
			return fmt.Errorf("clear sales window: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, r.batch.Config().ChunkSize).Error; err != nil {
			return fmt.Errorf("insert sales: %w", err)
		}
		return nil
	})
}

// ListSince returns events with SaleDate >= since
func (r *GormSalesRepository) ListSince(ctx context.Context, since time.Time) ([]inventory.SaleEvent, error) {
	return listPaged(ctx, r.db, r.pageSize, "sale_date ASC, id ASC",
		func(q *gorm.DB) *gorm.DB { return q.Where("sale_date >= ?", since) },
		(*models.SaleModel).ToDomain,
	)
}

var _ inventory.SalesRepository = (*GormSalesRepository)(nil)
