package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
)

// ProductRepository is a mock type for the repository.ProductRepository type
type ProductRepository struct {
	mock.Mock
}

func (_m *ProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	ret := _m.Called(ctx, id)
	var r0 *domain.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Product)
	}
	return r0, ret.Error(1)
}

func (_m *ProductRepository) FindByNameAndType(ctx context.Context, name, productType string) (*domain.Product, error) {
	ret := _m.Called(ctx, name, productType)
	var r0 *domain.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Product)
	}
	return r0, ret.Error(1)
}

func (_m *ProductRepository) FindByBarcodeAndType(ctx context.Context, barcode, productType string) (*domain.Product, error) {
	ret := _m.Called(ctx, barcode, productType)
	var r0 *domain.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Product)
	}
	return r0, ret.Error(1)
}

func (_m *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ret := _m.Called(ctx, product)
	return ret.Error(0)
}

func (_m *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ret := _m.Called(ctx, product)
	return ret.Error(0)
}

func (_m *ProductRepository) BarcodeTaken(ctx context.Context, barcode string, excludeID uint) (bool, error) {
	ret := _m.Called(ctx, barcode, excludeID)
	return ret.Bool(0), ret.Error(1)
}

func (_m *ProductRepository) DeleteWithRecords(ctx context.Context, id uint) (int64, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *ProductRepository) List(ctx context.Context, filter domain.ProductFilter, offset, limit int) ([]domain.ProductListing, int64, error) {
	ret := _m.Called(ctx, filter, offset, limit)
	var r0 []domain.ProductListing
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.ProductListing)
	}
	return r0, ret.Get(1).(int64), ret.Error(2)
}

func (_m *ProductRepository) DistinctNames(ctx context.Context) ([]string, error) {
	ret := _m.Called(ctx)
	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0, ret.Error(1)
}

func (_m *ProductRepository) Count(ctx context.Context) (int64, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(int64), ret.Error(1)
}
