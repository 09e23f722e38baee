package repository

import (
	"context"
	"time"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
)

// DamageRepository 定义了损耗记录的存储、查询和统计操作。
// 返回的记录总是预加载了所属商品。
type DamageRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.DamageRecord, error)

	Create(ctx context.Context, record *domain.DamageRecord) error

	// Update 在一个事务中写入所属商品 (record.Product) 的名称和条码，
	// 以及记录的重量、数量、备注和登记时间。条码冲突时返回 ErrDuplicateEntry。
	Update(ctx context.Context, record *domain.DamageRecord) error

	Delete(ctx context.Context, id uint) error

	// List 按登记时间倒序返回符合条件的记录。limit <= 0 表示不分页。
	List(ctx context.Context, filter domain.RecordFilter, offset, limit int) ([]domain.DamageRecord, int64, error)

	// Recent 返回最近的 limit 条记录。
	Recent(ctx context.Context, limit int) ([]domain.DamageRecord, error)

	// Count 统计 [from, to) 区间内的记录数，nil 表示不限。
	Count(ctx context.Context, from, to *time.Time) (int64, error)

	// RecordedSince 返回 since 之后所有记录的登记时间。
	RecordedSince(ctx context.Context, since time.Time) ([]time.Time, error)

	TopProducts(ctx context.Context, limit int) ([]domain.ProductTotals, error)

	TotalsByType(ctx context.Context) ([]domain.TypeTotals, error)

	// DeleteOlderThan 删除登记时间早于 cutoff 的记录，返回删除数。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteAll 在一个事务中删除全部记录和全部商品，返回删除的记录数。
	DeleteAll(ctx context.Context) (int64, error)
}
