package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database. A single connection serializes
// transactions the way row locks do on PostgreSQL.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Service{}, &models.ServicePackage{}, &models.ServiceAddon{},
		&models.Cart{}, &models.CartLine{},
		&models.Order{}, &models.OrderLine{},
		&models.Payment{},
	))
	return db
}

type testCatalog struct {
	Service      models.Service
	Package      models.ServicePackage
	Addon        models.ServiceAddon
	PlainService models.Service // no base price
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

func seedCatalog(t *testing.T, db *gorm.DB) testCatalog {
	t.Helper()

	base := price("300.00")
	c := testCatalog{
		Service:      models.Service{ID: uuid.New().String(), Name: "Griha Pravesh", BasePrice: &base},
		PlainService: models.Service{ID: uuid.New().String(), Name: "Consultation"},
	}
	c.Package = models.ServicePackage{ID: uuid.New().String(), ServiceID: c.Service.ID, Name: "Premium", Price: price("1000.00")}
	c.Addon = models.ServiceAddon{ID: uuid.New().String(), ServiceID: c.Service.ID, Name: "Flowers", Price: price("250.50")}

	require.NoError(t, db.Create(&c.Service).Error)
	require.NoError(t, db.Create(&c.PlainService).Error)
	require.NoError(t, db.Create(&c.Package).Error)
	require.NoError(t, db.Create(&c.Addon).Error)
	return c
}

type testStore struct {
	db        *gorm.DB
	carts     *repositories.GORMCartRepository
	catalog   *repositories.GORMCatalogRepository
	orders    *repositories.GORMOrderRepository
	payments  *repositories.GORMPaymentRepository
	txManager *repositories.GORMTxManager
	resolver  *services.PricingResolver
}

func newTestStore(t *testing.T) testStore {
	db := newTestDB(t)
	return testStore{
		db:        db,
		carts:     repositories.NewGORMCartRepository(db),
		catalog:   repositories.NewGORMCatalogRepository(db),
		orders:    repositories.NewGORMOrderRepository(db),
		payments:  repositories.NewGORMPaymentRepository(db),
		txManager: repositories.NewGORMTxManager(db),
		resolver:  services.NewPricingResolver(),
	}
}

func (s testStore) cartService() *services.CartService {
	return services.NewCartService(s.carts, s.catalog, s.resolver)
}

func (s testStore) orderService(txManager repositories.TransactionManager, publisher services.EventPublisher) *services.OrderService {
	if txManager == nil {
		txManager = s.txManager
	}
	return services.NewOrderService(s.orders, s.payments, txManager, s.resolver, publisher, zap.NewNop())
}

func (s testStore) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, routingKey)
	return nil
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}
