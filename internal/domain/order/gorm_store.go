// internal/domain/order/gorm_store.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRecord struct {
	ID          string            `gorm:"primaryKey;type:uuid"`
	UserID      string            `gorm:"type:uuid;not null;index"`
	TotalAmount decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	Status      string            `gorm:"size:20;not null"`
	PaymentID   string            `gorm:"size:100;not null"`
	CreatedAt   time.Time         `gorm:"index"`
	Items       []orderItemRecord `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (orderRecord) TableName() string {
	return "orders"
}

type orderItemRecord struct {
	ID        string          `gorm:"primaryKey;type:uuid"`
	OrderID   string          `gorm:"type:uuid;not null;index"`
	ProductID string          `gorm:"type:uuid;not null;index"`
	Position  int             `gorm:"not null"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time
	Product   *productRef `gorm:"foreignKey:ProductID"`
}

func (orderItemRecord) TableName() string {
	return "order_items"
}

// productRef reads the product name for order history.
type productRef struct {
	ID   string
	Name string
}

func (productRef) TableName() string {
	return "products"
}

// Models returns the gorm models owned by this package, for migrations.
func Models() []interface{} {
	return []interface{}{&orderRecord{}, &orderItemRecord{}}
}

// GormStore stores orders in postgres
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new gorm order store
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InsertOrder(ctx context.Context, header Header) (string, error) {
	rec := newOrderRecord(header)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}
	return rec.ID, nil
}

func (s *GormStore) InsertOrderLines(ctx context.Context, lines []Line) error {
	if len(lines) == 0 {
		return ErrNoLines
	}

	items := newItemRecords(lines)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	return nil
}

func (s *GormStore) InsertOrderWithLines(ctx context.Context, header Header, lines []Line) (string, error) {
	if len(lines) == 0 {
		return "", ErrNoLines
	}

	rec := newOrderRecord(header)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		owned := make([]Line, len(lines))
		for i, l := range lines {
			l.OrderID = rec.ID
			owned[i] = l
		}
		items := newItemRecords(owned)
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (s *GormStore) ListOrdersForOwner(ctx context.Context, ownerID string) ([]Order, error) {
	var records []orderRecord
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Items.Product").
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return toOrders(records), nil
}

func (s *GormStore) FindOrphanedHeaders(ctx context.Context, createdBefore time.Time) ([]Order, error) {
	var records []orderRecord
	err := s.db.WithContext(ctx).
		Where("created_at < ?", createdBefore).
		Where("NOT EXISTS (SELECT 1 FROM order_items WHERE order_items.order_id = orders.id)").
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find orphaned orders: %w", err)
	}

	return toOrders(records), nil
}

// GetOrder loads one order with its lines
func (s *GormStore) GetOrder(ctx context.Context, id string) (Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Order{}, ErrUnknownOrder
	}

	var rec orderRecord
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Items.Product").
		Where("id = ?", id).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, ErrUnknownOrder
		}
		return Order{}, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return toOrder(rec), nil
}

func newOrderRecord(h Header) orderRecord {
	status := h.Status
	if status == "" {
		status = StatusPending
	}
	return orderRecord{
		ID:          uuid.NewString(),
		UserID:      h.OwnerID,
		TotalAmount: h.TotalAmount,
		Status:      string(status),
		PaymentID:   h.PaymentRef,
	}
}

func newItemRecords(lines []Line) []orderItemRecord {
	items := make([]orderItemRecord, len(lines))
	for i, l := range lines {
		items[i] = orderItemRecord{
			ID:        uuid.NewString(),
			OrderID:   l.OrderID,
			ProductID: l.ProductID,
			Position:  i,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice,
		}
	}
	return items
}

func toOrders(records []orderRecord) []Order {
	orders := make([]Order, len(records))
	for i, rec := range records {
		orders[i] = toOrder(rec)
	}
	return orders
}

func toOrder(rec orderRecord) Order {
	o := Order{
		ID:          rec.ID,
		OwnerID:     rec.UserID,
		TotalAmount: rec.TotalAmount,
		Status:      Status(rec.Status),
		PaymentRef:  rec.PaymentID,
		CreatedAt:   rec.CreatedAt,
		Lines:       make([]Line, len(rec.Items)),
	}
	for i, item := range rec.Items {
		o.Lines[i] = Line{
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		}
		if item.Product != nil {
			o.Lines[i].ProductName = item.Product.Name
		}
	}
	return o
}
