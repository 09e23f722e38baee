package repository

import (
	"context"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
)

// ProductRepository 定义了商品数据的存储和检索操作。
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Product, error)

	// FindByNameAndType 用于蔬果类商品的查找。
	FindByNameAndType(ctx context.Context, name, productType string) (*domain.Product, error)

	// FindByBarcodeAndType 用于内部商品的查找。
	FindByBarcodeAndType(ctx context.Context, barcode, productType string) (*domain.Product, error)

	// Create 插入新商品，条码冲突时返回 ErrDuplicateEntry。
	Create(ctx context.Context, product *domain.Product) error

	// Update 覆盖商品的名称和条码。
	Update(ctx context.Context, product *domain.Product) error

	// BarcodeTaken 报告条码是否被 excludeID 以外的商品占用。
	BarcodeTaken(ctx context.Context, barcode string, excludeID uint) (bool, error)

	// DeleteWithRecords 删除商品及其全部损耗记录，返回删除的记录数。
	DeleteWithRecords(ctx context.Context, id uint) (int64, error)

	// List 分页查询商品，并附带每个商品的记录数。
	List(ctx context.Context, filter domain.ProductFilter, offset, limit int) ([]domain.ProductListing, int64, error)

	// DistinctNames 返回去重并排序后的商品名称。
	DistinctNames(ctx context.Context) ([]string, error)

	Count(ctx context.Context) (int64, error)
}
