// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Akshat090803/ecommerce-final-project/internal/domain/catalog"
	"github.com/Akshat090803/ecommerce-final-project/internal/domain/order"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger logrus.FieldLogger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// models lists the tables in dependency order
func models() []interface{} {
	return append([]interface{}{&catalog.Product{}}, order.Models()...)
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations(ctx context.Context) error {
	m.logger.Info("🔄 Running database auto-migrations...")

	for _, model := range models() {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.WithContext(ctx).AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	m.logger.Info("✅ Database auto-migrations completed")
	return nil
}

var indexes = []string{
	// Product indexes
	"CREATE INDEX IF NOT EXISTS idx_products_category_created ON products(category, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_products_lower_name ON products(LOWER(name))",

	// Order indexes
	"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_orders_payment_id ON orders(payment_id)",

	// Order items indexes
	"CREATE INDEX IF NOT EXISTS idx_order_items_order_position ON order_items(order_id, position)",
}

// CreateIndexes creates the indexes AutoMigrate cannot express.
// A failed index is logged and skipped.
func (m *Migration) CreateIndexes(ctx context.Context) (created int) {
	m.logger.Info("🔄 Creating additional database indexes...")

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.WithContext(ctx).Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("⚠️ Failed to create index")
			failed++
			continue
		}
		created++
	}

	m.logger.Infof("✅ Created %d indexes successfully (%d failed)", created, failed)
	return created
}

// devProducts have fixed ids so reseeding is idempotent
var devProducts = []catalog.Product{
	{
		ID:          "8f1c2a34-5b6d-4e7f-8a9b-0c1d2e3f4a51",
		Name:        "Premium Gaming Laptop",
		Description: "High-performance gaming laptop with dedicated graphics.",
		Price:       decimal.RequireFromString("1999.99"),
		Image:       "/images/products/gaming-laptop.jpg",
		Category:    "electronics",
		Rating:      4.7,
		Stock:       25,
	},
	{
		ID:          "8f1c2a34-5b6d-4e7f-8a9b-0c1d2e3f4a52",
		Name:        "Wireless Gaming Mouse",
		Description: "Ergonomic wireless mouse with a high-precision sensor.",
		Price:       decimal.RequireFromString("79.99"),
		Image:       "/images/products/gaming-mouse.jpg",
		Category:    "electronics",
		Rating:      4.4,
		Stock:       50,
	},
	{
		ID:          "8f1c2a34-5b6d-4e7f-8a9b-0c1d2e3f4a53",
		Name:        "Bluetooth Noise-Cancelling Headphones",
		Description: "Wireless headphones with active noise cancellation.",
		Price:       decimal.RequireFromString("159.99"),
		Image:       "/images/products/headphones.jpg",
		Category:    "audio",
		Rating:      4.6,
		Stock:       30,
	},
	{
		ID:          "8f1c2a34-5b6d-4e7f-8a9b-0c1d2e3f4a54",
		Name:        "Organic Cotton T-Shirt",
		Description: "Soft crew-neck t-shirt made from organic cotton.",
		Price:       decimal.RequireFromString("24.50"),
		Image:       "/images/products/tshirt.jpg",
		Category:    "clothing",
		Rating:      4.1,
		Stock:       120,
	},
}

// SeedDevelopmentData inserts the sample catalog. Existing products are left alone.
func (m *Migration) SeedDevelopmentData(ctx context.Context) error {
	m.logger.Info("🌱 Seeding development catalog...")

	for _, p := range devProducts {
		var count int64
		if err := m.db.WithContext(ctx).Model(&catalog.Product{}).Where("id = ?", p.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check product %s: %w", p.ID, err)
		}
		if count > 0 {
			m.logger.Debugf("⏭️ Product already exists: %s", p.Name)
			continue
		}

		prod := p
		if err := m.db.WithContext(ctx).Create(&prod).Error; err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.Name, err)
		}
		m.logger.Infof("✅ Created product: %s", p.Name)
	}

	return nil
}

// TableInfo returns row counts of the public tables
func (m *Migration) TableInfo(ctx context.Context) (map[string]int64, error) {
	var tables []string
	if err := m.db.WithContext(ctx).Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return nil, err
	}

	info := make(map[string]int64, len(tables))
	for _, table := range tables {
		var count int64
		if err := m.db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		info[table] = count
		m.logger.WithField("records", count).Infof("📊 %s", table)
	}
	return info, nil
}
