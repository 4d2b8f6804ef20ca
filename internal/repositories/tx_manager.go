package repositories

import "context"

// TxRepos exposes repositories bound to a single database transaction.
type TxRepos interface {
	Carts() CartRepository
	Catalog() CatalogRepository
	Orders() OrderRepository
	Payments() PaymentRepository
}

// TransactionManager runs fn inside a transaction. It commits when fn returns nil and
// rolls back otherwise.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
