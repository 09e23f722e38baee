package gormpersistence_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/infra/setup"
)

// newTestDB 为每个测试打开一个独立的内存 SQLite 数据库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := setup.InitDB(fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared&_foreign_keys=on", name), nil)
	require.NoError(t, err)
	require.NoError(t, setup.MigrateDB(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, productType, barcode string) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: name, Type: productType}
	if barcode != "" {
		p.Barcode = &barcode
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedRecord(t *testing.T, db *gorm.DB, product *domain.Product, recordedAt time.Time, weight *float64, quantity *int) *domain.DamageRecord {
	t.Helper()
	r := &domain.DamageRecord{ProductID: product.ID, Weight: weight, Quantity: quantity, RecordedAt: recordedAt}
	require.NoError(t, db.Omit("Product").Create(r).Error)
	return r
}

func at(day, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.Local)
}

func ptr[T any](v T) *T { return &v }

var ctx = context.Background()
