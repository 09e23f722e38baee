package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/repository"
)

// 批量清理动作
const (
	PurgeOlderThan30Days = "limpar_30_dias"
	PurgeEverything      = "limpar_tudo"
)

// RetentionWindow 是 limpar_30_dias 保留的时间范围。
const RetentionWindow = 30 * 24 * time.Hour

// RecordDateLayout 是编辑表单中 datetime-local 输入的格式。
const RecordDateLayout = "2006-01-02T15:04"

// CurationService 负责管理员对商品和记录的编辑、删除以及批量清理。
type CurationService struct {
	productRepo   repository.ProductRepository
	damageRepo    repository.DamageRepository
	purgePassword string
	now           func() time.Time
}

// NewCurationService 创建 CurationService 实例。purgePassword 为批量清理的确认密码。
func NewCurationService(productRepo repository.ProductRepository, damageRepo repository.DamageRepository, purgePassword string) *CurationService {
	if productRepo == nil || damageRepo == nil {
		panic("repositories cannot be nil for CurationService")
	}
	return &CurationService{
		productRepo:   productRepo,
		damageRepo:    damageRepo,
		purgePassword: purgePassword,
		now:           time.Now,
	}
}

// GetProduct 加载商品用于编辑页面。
func (s *CurationService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		logrus.WithError(err).WithField("product_id", id).Error("GetProduct: Repository error")
		return nil, ErrInternalServer
	}
	return product, nil
}

// GetRecord 加载记录 (含商品) 用于编辑页面。
func (s *CurationService) GetRecord(ctx context.Context, id uint) (*domain.DamageRecord, error) {
	record, err := s.damageRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		logrus.WithError(err).WithField("record_id", id).Error("GetRecord: Repository error")
		return nil, ErrInternalServer
	}
	return record, nil
}

// ProductEdit 是商品编辑表单的数据。
type ProductEdit struct {
	Name    string
	Barcode string
}

// EditProduct 修改商品名称；只有内部商品可以修改条码，且条码不能与其他商品重复。
func (s *CurationService) EditProduct(ctx context.Context, id uint, in ProductEdit) (*domain.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.prepareProductEdit(ctx, product, in)
	if err != nil {
		return product, err
	}
	if err := s.productRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return product, invalid(msgBarcodeTaken)
		}
		logrus.WithError(err).WithField("product_id", product.ID).Error("Failed to update product")
		return product, ErrInternalServer
	}
	*product = updated
	logrus.WithFields(logrus.Fields{"product_id": product.ID, "name": product.Name}).Info("Product updated")
	return product, nil
}

const msgBarcodeTaken = "Código de barras já existe em outro produto."

// prepareProductEdit 校验编辑内容并返回修改后的商品副本，不写库。
func (s *CurationService) prepareProductEdit(ctx context.Context, product *domain.Product, in ProductEdit) (domain.Product, error) {
	updated := *product
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return updated, invalid("Nome do produto é obrigatório.")
	}
	updated.Name = name

	if !product.IsInternal() {
		return updated, nil
	}
	newBarcode := strings.TrimSpace(in.Barcode)
	if newBarcode == product.BarcodeValue() {
		return updated, nil
	}
	if newBarcode == "" {
		updated.Barcode = nil
		return updated, nil
	}
	taken, err := s.productRepo.BarcodeTaken(ctx, newBarcode, product.ID)
	if err != nil {
		logrus.WithError(err).WithField("product_id", product.ID).Error("Failed to check barcode uniqueness")
		return updated, ErrInternalServer
	}
	if taken {
		return updated, invalid(msgBarcodeTaken)
	}
	updated.Barcode = &newBarcode
	return updated, nil
}

// RecordEdit 是记录编辑表单的数据。RecordedAt 为空表示不修改登记时间。
type RecordEdit struct {
	Name       string
	Barcode    string
	Weight     *float64
	Quantity   *int
	Notes      string
	RecordedAt string
}

// EditRecord 修改记录及其所属商品，两者要么都写入要么都不写入。
// 重量或数量按商品当前的类型写入，另一个字段清空；备注总是被覆盖。
func (s *CurationService) EditRecord(ctx context.Context, id uint, in RecordEdit) (*domain.DamageRecord, error) {
	record, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	logCtx := logrus.WithField("record_id", record.ID)

	if strings.TrimSpace(in.Name) == "" {
		return record, invalid("Nome do produto é obrigatório.")
	}
	recordedAt := record.RecordedAt
	if in.RecordedAt != "" {
		parsed, err := time.ParseInLocation(RecordDateLayout, in.RecordedAt, time.Local)
		if err != nil {
			return record, invalid("Formato de data inválido.")
		}
		recordedAt = parsed
	}

	product, err := s.prepareProductEdit(ctx, &record.Product, ProductEdit{Name: in.Name, Barcode: in.Barcode})
	if err != nil {
		return record, err
	}

	updated := *record
	updated.Product = product
	if product.IsProduce() {
		updated.Weight = in.Weight
		updated.Quantity = nil
	} else {
		updated.Quantity = in.Quantity
		updated.Weight = nil
	}
	updated.Notes = nil
	if in.Notes != "" {
		notes := in.Notes
		updated.Notes = &notes
	}
	updated.RecordedAt = recordedAt

	// 商品和记录在同一个事务中写入
	if err := s.damageRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return record, invalid(msgBarcodeTaken)
		}
		logCtx.WithError(err).Error("Failed to update damage record")
		return record, ErrInternalServer
	}
	logCtx.Info("Damage record updated")
	return &updated, nil
}

// DeleteProduct 删除商品及其全部记录，返回删除的记录数。
func (s *CurationService) DeleteProduct(ctx context.Context, id uint) (*domain.Product, int64, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	removed, err := s.productRepo.DeleteWithRecords(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, 0, ErrProductNotFound
		}
		logrus.WithError(err).WithField("product_id", id).Error("Failed to delete product")
		return nil, 0, ErrInternalServer
	}
	logrus.WithFields(logrus.Fields{"product_id": id, "records_removed": removed}).Info("Product deleted")
	return product, removed, nil
}

// DeleteRecord 只删除一条记录。
func (s *CurationService) DeleteRecord(ctx context.Context, id uint) (*domain.DamageRecord, error) {
	record, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.damageRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		logrus.WithError(err).WithField("record_id", id).Error("Failed to delete damage record")
		return nil, ErrInternalServer
	}
	logrus.WithField("record_id", id).Info("Damage record deleted")
	return record, nil
}

// Purge 执行批量清理，confirmation 必须等于配置的确认密码。返回删除的记录数。
func (s *CurationService) Purge(ctx context.Context, action, confirmation string) (int64, error) {
	logCtx := logrus.WithField("action", action)
	if s.purgePassword == "" || confirmation != s.purgePassword {
		logCtx.Warn("Purge rejected: wrong confirmation password")
		return 0, ErrPurgeDenied
	}

	var (
		removed int64
		err     error
	)
	switch action {
	case PurgeOlderThan30Days:
		removed, err = s.damageRepo.DeleteOlderThan(ctx, s.now().Add(-RetentionWindow))
	case PurgeEverything:
		removed, err = s.damageRepo.DeleteAll(ctx)
	default:
		return 0, invalid("Ação de limpeza inválida.")
	}
	if err != nil {
		logCtx.WithError(err).Error("Purge failed")
		return 0, ErrInternalServer
	}
	logCtx.WithField("records_removed", removed).Warn("Purge executed")
	return removed, nil
}
