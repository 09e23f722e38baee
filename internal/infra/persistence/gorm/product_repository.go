package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/repository"
)

// GormProductRepository 是 ProductRepository 接口的 GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository 创建 GormProductRepository 实例
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	if db == nil {
		panic("database connection cannot be nil for GormProductRepository")
	}
	return &GormProductRepository{db: db}
}

// FindByID 实现根据 ID 查找商品
func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}
		return nil, fmt.Errorf("gorm: find product by id %d: %w", id, err)
	}
	return &product, nil
}

// FindByNameAndType 实现按名称和类型查找商品，重名时返回 ID 最小的一个
func (r *GormProductRepository) FindByNameAndType(ctx context.Context, name, productType string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Where("name = ? AND type = ?", name, productType).
		Order("id").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}
		return nil, fmt.Errorf("gorm: find product by name '%s' (%s): %w", name, productType, err)
	}
	return &product, nil
}

// FindByBarcodeAndType 实现按条码和类型查找商品
func (r *GormProductRepository) FindByBarcodeAndType(ctx context.Context, barcode, productType string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Where("barcode = ? AND type = ?", barcode, productType).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}
		return nil, fmt.Errorf("gorm: find product by barcode '%s' (%s): %w", barcode, productType, err)
	}
	return &product, nil
}

// Create 实现创建商品，条码冲突时返回 ErrDuplicateEntry
func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create product '%s': %w", product.Name, err)
	}
	return nil
}

// Update 只写 name 和 barcode，nil 条码会被写成 NULL。
func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	err := r.db.WithContext(ctx).
		Model(product).
		Select("name", "barcode").
		Updates(product).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: update product %d: %w", product.ID, err)
	}
	return nil
}

// BarcodeTaken 实现检查条码是否已被 excludeID 以外的商品使用
func (r *GormProductRepository) BarcodeTaken(ctx context.Context, barcode string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("barcode = ? AND id <> ?", barcode, excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count products by barcode '%s': %w", barcode, err)
	}
	return count > 0, nil
}

// DeleteWithRecords 显式删除子记录，不依赖数据库的级联 (SQLite 默认不开启外键)。
func (r *GormProductRepository) DeleteWithRecords(ctx context.Context, id uint) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product domain.Product
		if err := tx.First(&product, id).Error; err != nil {
			return err
		}
		res := tx.Where("product_id = ?", id).Delete(&domain.DamageRecord{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return tx.Delete(&product).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, repository.ErrProductNotFound
		}
		return 0, fmt.Errorf("gorm: delete product %d: %w", id, err)
	}
	return removed, nil
}

// List 实现按筛选条件分页列出商品及其记录数
func (r *GormProductRepository) List(ctx context.Context, filter domain.ProductFilter, offset, limit int) ([]domain.ProductListing, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Product{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(barcode) LIKE ?)", pattern, pattern)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("gorm: count products: %w", err)
	}

	var products []domain.Product
	err := query.Session(&gorm.Session{}).
		Order("name").Order("id").
		Offset(offset).Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("gorm: list products: %w", err)
	}
	if len(products) == 0 {
		return []domain.ProductListing{}, total, nil
	}

	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	var counts []struct {
		ProductID uint
		Total     int64
	}
	err = r.db.WithContext(ctx).
		Model(&domain.DamageRecord{}).
		Select("product_id, COUNT(*) AS total").
		Where("product_id IN ?", ids).
		Group("product_id").
		Scan(&counts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("gorm: count records per product: %w", err)
	}
	byProduct := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byProduct[c.ProductID] = c.Total
	}

	listings := make([]domain.ProductListing, len(products))
	for i, p := range products {
		listings[i] = domain.ProductListing{Product: p, RecordCount: byProduct[p.ID]}
	}
	return listings, total, nil
}

// DistinctNames 实现返回按字母排序、去重后的商品名称
func (r *GormProductRepository) DistinctNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Distinct("name").
		Order("name").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: distinct product names: %w", err)
	}
	return names, nil
}

// Count 实现统计商品总数
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("gorm: count products: %w", err)
	}
	return count, nil
}

// likePattern 生成大小写不敏感的 LIKE 模式，调用方负责对列做 LOWER。
func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
