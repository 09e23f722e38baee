package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
)

// DamageRepository is a mock type for the repository.DamageRepository type
type DamageRepository struct {
	mock.Mock
}

func (_m *DamageRepository) FindByID(ctx context.Context, id uint) (*domain.DamageRecord, error) {
	ret := _m.Called(ctx, id)
	var r0 *domain.DamageRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.DamageRecord)
	}
	return r0, ret.Error(1)
}

func (_m *DamageRepository) Create(ctx context.Context, record *domain.DamageRecord) error {
	ret := _m.Called(ctx, record)
	return ret.Error(0)
}

func (_m *DamageRepository) Update(ctx context.Context, record *domain.DamageRecord) error {
	ret := _m.Called(ctx, record)
	return ret.Error(0)
}

func (_m *DamageRepository) Delete(ctx context.Context, id uint) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *DamageRepository) List(ctx context.Context, filter domain.RecordFilter, offset, limit int) ([]domain.DamageRecord, int64, error) {
	ret := _m.Called(ctx, filter, offset, limit)
	var r0 []domain.DamageRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.DamageRecord)
	}
	return r0, ret.Get(1).(int64), ret.Error(2)
}

func (_m *DamageRepository) Recent(ctx context.Context, limit int) ([]domain.DamageRecord, error) {
	ret := _m.Called(ctx, limit)
	var r0 []domain.DamageRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.DamageRecord)
	}
	return r0, ret.Error(1)
}

func (_m *DamageRepository) Count(ctx context.Context, from, to *time.Time) (int64, error) {
	ret := _m.Called(ctx, from, to)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *DamageRepository) RecordedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	ret := _m.Called(ctx, since)
	var r0 []time.Time
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]time.Time)
	}
	return r0, ret.Error(1)
}

func (_m *DamageRepository) TopProducts(ctx context.Context, limit int) ([]domain.ProductTotals, error) {
	ret := _m.Called(ctx, limit)
	var r0 []domain.ProductTotals
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.ProductTotals)
	}
	return r0, ret.Error(1)
}

func (_m *DamageRepository) TotalsByType(ctx context.Context) ([]domain.TypeTotals, error) {
	ret := _m.Called(ctx)
	var r0 []domain.TypeTotals
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.TypeTotals)
	}
	return r0, ret.Error(1)
}

func (_m *DamageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ret := _m.Called(ctx, cutoff)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *DamageRepository) DeleteAll(ctx context.Context) (int64, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(int64), ret.Error(1)
}
