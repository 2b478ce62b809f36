package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/stockwise/backend/internal/infrastructure/fetch"
)

// Repositories groups the GORM repositories that share one connection,
// batch writer and read page size
type Repositories struct {
	Locations        *GormLocationRepository
	Products         *GormProductRepository
	Variations       *GormVariationRepository
	Inventory        *GormInventoryRepository
	Sales            *GormSalesRepository
	IdentityMappings *GormIdentityMappingRepository
}

// NewRepositories wires every repository against db
func NewRepositories(db *gorm.DB, batch *BatchWriter, pageSize int) *Repositories {
	return &Repositories{
		Locations:        NewGormLocationRepository(db, batch),
		Products:         NewGormProductRepository(db, batch, pageSize),
		Variations:       NewGormVariationRepository(db, batch),
		Inventory:        NewGormInventoryRepository(db, batch, pageSize),
		Sales:            NewGormSalesRepository(db, batch, pageSize),
		IdentityMappings: NewGormIdentityMappingRepository(db, batch),
	}
}

// listPaged reads every row matching scope through offset paging ordered by
// order, converting each model with toDomain
func listPaged[M any, D any](
	ctx context.Context,
	db *gorm.DB,
	pageSize int,
	order string,
	scope func(*gorm.DB) *gorm.DB,
	toDomain func(*M) D,
) ([]D, error) {
	return fetch.AllRows(ctx, pageSize, func(ctx context.Context, offset, limit int) ([]D, error) {
		var rows []M
		q := db.WithContext(ctx)
		if scope != nil {
			q = scope(q)
		}
		if err := q.Order(order).Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]D, len(rows))
		for i := range rows {
			out[i] = toDomain(&rows[i])
		}
		return out, nil
	})
}

func toDomainSlice[M any, D any](rows []M, toDomain func(*M) D) []D {
	out := make([]D, len(rows))
	for i := range rows {
		out[i] = toDomain(&rows[i])
	}
	return out
}
