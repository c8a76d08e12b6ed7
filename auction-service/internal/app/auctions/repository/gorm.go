package repository

import (
	"context"
	"errors"
	"fmt"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/pkg/metrics"

	"gorm.io/gorm"
)

type txKey struct{}

// conn returns the transaction stored in ctx, or db itself.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// translateError maps gorm errors to repository errors. The *gorm.DB must be
// opened with TranslateError so that constraint violations are recognised.
func translateError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKey
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// AutoMigrate creates or updates the auction schema, including the cascading
// foreign keys and the (user, auction) unique indexes.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Category{},
		&entity.Auction{},
		&entity.Bid{},
		&entity.Rating{},
		&entity.Comment{},
	)
}

const metricsTimerKey = "metrics:db_timer"

// RegisterMetrics reports every gorm statement to db_query_duration_seconds
// and db_errors_total.
func RegisterMetrics(db *gorm.DB, service string) error {
	start := func(op metrics.DbOperation) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			tx.InstanceSet(metricsTimerKey, metrics.NewDbTimer(service, op, tx.Statement.Table))
		}
	}
	observe := func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(metricsTimerKey)
		if !ok {
			return
		}
		timer, ok := v.(*metrics.DbTimer)
		if !ok {
			return
		}
		err := tx.Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = nil
		}
		timer.ObserveDuration(err)
	}

	cb := db.Callback()
	steps := []error{
		cb.Create().Before("gorm:create").Register("metrics:before_create", start(metrics.DbOpInsert)),
		cb.Create().After("gorm:create").Register("metrics:after_create", observe),
		cb.Query().Before("gorm:query").Register("metrics:before_query", start(metrics.DbOpSelect)),
		cb.Query().After("gorm:query").Register("metrics:after_query", observe),
		cb.Update().Before("gorm:update").Register("metrics:before_update", start(metrics.DbOpUpdate)),
		cb.Update().After("gorm:update").Register("metrics:after_update", observe),
		cb.Delete().Before("gorm:delete").Register("metrics:before_delete", start(metrics.DbOpDelete)),
		cb.Delete().After("gorm:delete").Register("metrics:after_delete", observe),
		cb.Row().Before("gorm:row").Register("metrics:before_row", start(metrics.DbOpSelect)),
		cb.Row().After("gorm:row").Register("metrics:after_row", observe),
	}
	return errors.Join(steps...)
}
