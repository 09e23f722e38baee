package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/repository"
)

const recordOrder = "damage_records.recorded_at DESC, damage_records.id DESC"

// GormDamageRepository 是 DamageRepository 接口的 GORM 实现
type GormDamageRepository struct {
	db *gorm.DB
}

// NewGormDamageRepository 创建 GormDamageRepository 实例
func NewGormDamageRepository(db *gorm.DB) *GormDamageRepository {
	if db == nil {
		panic("database connection cannot be nil for GormDamageRepository")
	}
	return &GormDamageRepository{db: db}
}

// FindByID 实现根据 ID 查找记录，同时预加载所属商品
func (r *GormDamageRepository) FindByID(ctx context.Context, id uint) (*domain.DamageRecord, error) {
	var record domain.DamageRecord
	err := r.db.WithContext(ctx).Preload("Product").First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRecordNotFound
		}
		return nil, fmt.Errorf("gorm: find damage record %d: %w", id, err)
	}
	return &record, nil
}

// Create 实现创建一条损耗记录
func (r *GormDamageRepository) Create(ctx context.Context, record *domain.DamageRecord) error {
	// 商品已经存在，这里只插入记录本身
	err := r.db.WithContext(ctx).Omit("Product").Create(record).Error
	if err != nil {
		return fmt.Errorf("gorm: create damage record (product %d): %w", record.ProductID, err)
	}
	return nil
}

// Update 在一个事务中更新商品的名称、条码和记录本身，任一步失败都会回滚
func (r *GormDamageRepository) Update(ctx context.Context, record *domain.DamageRecord) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product := record.Product
		if err := tx.Model(&product).Select("name", "barcode").Updates(&product).Error; err != nil {
			return err
		}
		return tx.Model(record).
			Select("weight", "quantity", "notes", "recorded_at").
			Updates(record).Error
	})
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: update damage record %d: %w", record.ID, err)
	}
	return nil
}

// Delete 实现按 ID 删除记录，记录不存在时返回 ErrRecordNotFound
func (r *GormDamageRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.DamageRecord{}, id)
	if result.Error != nil {
		return fmt.Errorf("gorm: delete damage record %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrRecordNotFound
	}
	return nil
}

// filtered 每次返回一个新的查询链，Count 和 Find 不能共用同一个 Statement。
func (r *GormDamageRepository) filtered(ctx context.Context, f domain.RecordFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&domain.DamageRecord{}).
		Joins("JOIN products ON products.id = damage_records.product_id")
	if f.Type != "" {
		query = query.Where("products.type = ?", f.Type)
	}
	if f.From != nil {
		query = query.Where("damage_records.recorded_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("damage_records.recorded_at <= ?", *f.To)
	}
	if f.ProductName != "" {
		query = query.Where("LOWER(products.name) LIKE ?", likePattern(f.ProductName))
	}
	return query
}

// List 实现按筛选条件分页查询记录，返回当前页和总数
func (r *GormDamageRepository) List(ctx context.Context, filter domain.RecordFilter, offset, limit int) ([]domain.DamageRecord, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("gorm: count damage records: %w", err)
	}

	query := r.filtered(ctx, filter).
		Select("damage_records.*").
		Preload("Product").
		Order(recordOrder)
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}

	records := []domain.DamageRecord{}
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("gorm: list damage records: %w", err)
	}
	return records, total, nil
}

// Recent 实现列出最近登记的记录
func (r *GormDamageRepository) Recent(ctx context.Context, limit int) ([]domain.DamageRecord, error) {
	records, _, err := r.List(ctx, domain.RecordFilter{}, 0, limit)
	return records, err
}

// Count 实现统计时间区间内的记录数，nil 表示不限制该端
func (r *GormDamageRepository) Count(ctx context.Context, from, to *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.DamageRecord{})
	if from != nil {
		query = query.Where("recorded_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("recorded_at < ?", *to)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("gorm: count damage records: %w", err)
	}
	return count, nil
}

// RecordedSince 实现返回 since 之后全部记录的登记时间
func (r *GormDamageRepository) RecordedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var stamps []time.Time
	err := r.db.WithContext(ctx).
		Model(&domain.DamageRecord{}).
		Where("recorded_at >= ?", since).
		Pluck("recorded_at", &stamps).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: pluck recorded_at since %s: %w", since.Format(time.RFC3339), err)
	}
	return stamps, nil
}

// TopProducts 实现按记录数倒序返回商品汇总
func (r *GormDamageRepository) TopProducts(ctx context.Context, limit int) ([]domain.ProductTotals, error) {
	var totals []domain.ProductTotals
	err := r.db.WithContext(ctx).
		Table("damage_records").
		Select(`products.id AS product_id, products.name AS name, products.type AS type,
			COUNT(damage_records.id) AS total_records,
			COALESCE(SUM(damage_records.weight), 0) AS total_weight,
			COALESCE(SUM(damage_records.quantity), 0) AS total_quantity`).
		Joins("JOIN products ON products.id = damage_records.product_id").
		Group("products.id, products.name, products.type").
		Order("total_records DESC").Order("products.name").
		Limit(limit).
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: top products: %w", err)
	}
	return totals, nil
}

// TotalsByType 实现按商品类型汇总记录
func (r *GormDamageRepository) TotalsByType(ctx context.Context) ([]domain.TypeTotals, error) {
	var totals []domain.TypeTotals
	err := r.db.WithContext(ctx).
		Table("damage_records").
		Select(`products.type AS type,
			COUNT(damage_records.id) AS total_records,
			COALESCE(SUM(damage_records.weight), 0) AS total_weight,
			COALESCE(SUM(damage_records.quantity), 0) AS total_quantity`).
		Joins("JOIN products ON products.id = damage_records.product_id").
		Group("products.type").
		Order("products.type").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: totals by type: %w", err)
	}
	return totals, nil
}

// DeleteOlderThan 实现删除 cutoff 之前的记录并返回删除条数
func (r *GormDamageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("recorded_at < ?", cutoff).Delete(&domain.DamageRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("gorm: delete records older than %s: %w", cutoff.Format(time.RFC3339), result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteAll 实现删除全部记录并返回删除条数
func (r *GormDamageRepository) DeleteAll(ctx context.Context) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		res := global.Delete(&domain.DamageRecord{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return global.Delete(&domain.Product{}).Error
	})
	if err != nil {
		return 0, fmt.Errorf("gorm: delete all records and products: %w", err)
	}
	return removed, nil
}
