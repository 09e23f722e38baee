package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/repository"
)

// UserService 负责管理员对账号的管理。
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService 创建 UserService 实例。
func NewUserService(userRepo repository.UserRepository) *UserService {
	if userRepo == nil {
		panic("UserRepository cannot be nil for UserService")
	}
	return &UserService{userRepo: userRepo}
}

// ListUsers 返回全部账号，最新注册的在前。
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		logrus.WithError(err).Error("ListUsers: Repository error")
		return nil, ErrInternalServer
	}
	return users, nil
}

// ToggleAdmin 切换目标账号的管理员标记。管理员不能修改自己的标记。
func (s *UserService) ToggleAdmin(ctx context.Context, actor *domain.User, targetID uint) (*domain.User, error) {
	if actor == nil || !actor.IsAdmin {
		return nil, ErrForbidden
	}
	logCtx := logrus.WithFields(logrus.Fields{"actor_id": actor.ID, "target_id": targetID})
	if actor.ID == targetID {
		logCtx.Warn("Admin tried to change own admin flag")
		return nil, ErrSelfDemotion
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logCtx.WithError(err).Error("ToggleAdmin: Repository error")
		return nil, ErrInternalServer
	}

	target.IsAdmin = !target.IsAdmin
	if err := s.userRepo.Save(ctx, target); err != nil {
		logCtx.WithError(err).Error("Failed to save admin flag")
		return nil, ErrInternalServer
	}
	logCtx.WithField("is_admin", target.IsAdmin).Info("Admin flag toggled")
	return target, nil
}
