package repositories

import (
	"context"

	"gorm.io/gorm"
)

type txReposGorm struct {
	carts    CartRepository
	catalog  CatalogRepository
	orders   OrderRepository
	payments PaymentRepository
}

func (r *txReposGorm) Carts() CartRepository       { return r.carts }
func (r *txReposGorm) Catalog() CatalogRepository  { return r.catalog }
func (r *txReposGorm) Orders() OrderRepository     { return r.orders }
func (r *txReposGorm) Payments() PaymentRepository { return r.payments }

// GORMTxManager is a GORM implementation of TransactionManager.
type GORMTxManager struct {
	db *gorm.DB
}

// NewGORMTxManager creates a new instance of GORMTxManager.
func NewGORMTxManager(db *gorm.DB) *GORMTxManager {
	return &GORMTxManager{db: db}
}

// WithinTx rebuilds every repository on the transaction handle before calling fn.
func (tm *GORMTxManager) WithinTx(ctx context.Context, fn func(r TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txReposGorm{
			carts:    NewGORMCartRepository(tx),
			catalog:  NewGORMCatalogRepository(tx),
			orders:   NewGORMOrderRepository(tx),
			payments: NewGORMPaymentRepository(tx),
		})
	})
}
