// Package mocks 提供存储库接口的 testify mock 实现，供 service 层单元测试使用。
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
)

// UserRepository is a mock type for the repository.UserRepository type
type UserRepository struct {
	mock.Mock
}

func (_m *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ret := _m.Called(ctx, username)
	var r0 *domain.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.User)
	}
	return r0, ret.Error(1)
}

func (_m *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ret := _m.Called(ctx, email)
	var r0 *domain.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.User)
	}
	return r0, ret.Error(1)
}

func (_m *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	ret := _m.Called(ctx, id)
	var r0 *domain.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.User)
	}
	return r0, ret.Error(1)
}

func (_m *UserRepository) Save(ctx context.Context, user *domain.User) error {
	ret := _m.Called(ctx, user)
	return ret.Error(0)
}

func (_m *UserRepository) AdminExists(ctx context.Context) (bool, error) {
	ret := _m.Called(ctx)
	return ret.Bool(0), ret.Error(1)
}

func (_m *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	ret := _m.Called(ctx)
	var r0 []domain.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.User)
	}
	return r0, ret.Error(1)
}
