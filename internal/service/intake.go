package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/repository"
)

// IntakeService 负责损耗登记：先查找或创建商品，再追加一条损耗记录。
// 两次写入不在同一个事务里，中途失败最多留下一个没有记录的商品。
type IntakeService struct {
	productRepo repository.ProductRepository
	damageRepo  repository.DamageRepository
	now         func() time.Time
}

// NewIntakeService 创建 IntakeService 实例。
func NewIntakeService(productRepo repository.ProductRepository, damageRepo repository.DamageRepository) *IntakeService {
	if productRepo == nil || damageRepo == nil {
		panic("repositories cannot be nil for IntakeService")
	}
	return &IntakeService{productRepo: productRepo, damageRepo: damageRepo, now: time.Now}
}

// ProduceIntake 是蔬果类登记的输入，Weight 单位为千克。
type ProduceIntake struct {
	Name   string
	Weight *float64
}

// InternalIntake 是内部商品登记的输入，Quantity 为 nil 时按 1 处理。
type InternalIntake struct {
	Barcode  string
	Name     string
	Quantity *int
}

// RegisterProduce 登记一条蔬果类损耗。
func (s *IntakeService) RegisterProduce(ctx context.Context, in ProduceIntake) (*domain.DamageRecord, error) {
	if in.Name == "" || in.Weight == nil || *in.Weight <= 0 {
		return nil, invalid("Por favor, preencha todos os campos obrigatórios.")
	}
	logCtx := logrus.WithFields(logrus.Fields{"product": in.Name, "weight": *in.Weight})

	product, err := s.findOrCreate(ctx, logCtx,
		func() (*domain.Product, error) {
			return s.productRepo.FindByNameAndType(ctx, in.Name, domain.ProductTypeProduce)
		},
		&domain.Product{Name: in.Name, Type: domain.ProductTypeProduce},
	)
	if err != nil {
		return nil, err
	}

	weight := *in.Weight
	record := &domain.DamageRecord{
		ProductID:  product.ID,
		Weight:     &weight,
		RecordedAt: s.now(),
	}
	if err := s.damageRepo.Create(ctx, record); err != nil {
		logCtx.WithError(err).Error("Failed to save produce damage record")
		return nil, ErrInternalServer
	}
	record.Product = *product

	logCtx.WithFields(logrus.Fields{"record_id": record.ID, "product_id": product.ID}).Info("Produce damage registered")
	return record, nil
}

// RegisterInternal 登记一条内部商品损耗。
// 条码已存在但名称不同时，以本次提交的名称为准。
func (s *IntakeService) RegisterInternal(ctx context.Context, in InternalIntake) (*domain.DamageRecord, error) {
	if in.Barcode == "" || in.Name == "" {
		return nil, invalid("Por favor, preencha todos os campos obrigatórios.")
	}
	quantity := 1
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	if quantity < 1 {
		return nil, invalid("A quantidade deve ser maior que zero.")
	}
	logCtx := logrus.WithFields(logrus.Fields{"product": in.Name, "barcode": in.Barcode, "quantity": quantity})

	barcode := in.Barcode
	product, err := s.findOrCreate(ctx, logCtx,
		func() (*domain.Product, error) {
			return s.productRepo.FindByBarcodeAndType(ctx, in.Barcode, domain.ProductTypeInternal)
		},
		&domain.Product{Name: in.Name, Barcode: &barcode, Type: domain.ProductTypeInternal},
	)
	if err != nil {
		return nil, err
	}

	if product.Name != in.Name {
		logCtx.WithField("old_name", product.Name).Info("Renaming internal product")
		product.Name = in.Name
		if err := s.productRepo.Update(ctx, product); err != nil {
			logCtx.WithError(err).Error("Failed to rename internal product")
			return nil, ErrInternalServer
		}
	}

	record := &domain.DamageRecord{
		ProductID:  product.ID,
		Quantity:   &quantity,
		RecordedAt: s.now(),
	}
	if err := s.damageRepo.Create(ctx, record); err != nil {
		logCtx.WithError(err).Error("Failed to save internal damage record")
		return nil, ErrInternalServer
	}
	record.Product = *product

	logCtx.WithFields(logrus.Fields{"record_id": record.ID, "product_id": product.ID}).Info("Internal damage registered")
	return record, nil
}

// findOrCreate 按自然键查找商品，不存在时创建。
// 并发登记同一个新条码时，唯一约束会让后到的插入失败，此时重新查找一次并复用先插入的商品。
func (s *IntakeService) findOrCreate(ctx context.Context, logCtx *logrus.Entry, find func() (*domain.Product, error), candidate *domain.Product) (*domain.Product, error) {
	product, err := find()
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, repository.ErrProductNotFound) {
		logCtx.WithError(err).Error("Failed to look up product")
		return nil, ErrInternalServer
	}

	err = s.productRepo.Create(ctx, candidate)
	if err == nil {
		logCtx.WithField("product_id", candidate.ID).Info("Product created on first sighting")
		return candidate, nil
	}
	if !errors.Is(err, repository.ErrDuplicateEntry) {
		logCtx.WithError(err).Error("Failed to create product")
		return nil, ErrInternalServer
	}

	logCtx.Warn("Product was created concurrently, retrying lookup")
	product, err = find()
	if err != nil {
		logCtx.WithError(err).Error("Product conflict could not be resolved")
		return nil, invalid("Código de barras já existe em outro produto.")
	}
	return product, nil
}
