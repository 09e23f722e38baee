package repository

import (
	"context"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
)

// UserRepository 定义了用户数据的存储和检索操作。
type UserRepository interface {
	// FindByUsername 根据用户名查找用户，不存在时返回 ErrUserNotFound。
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByEmail 根据邮箱查找用户，不存在时返回 ErrUserNotFound。
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindByID 根据用户 ID 查找用户，不存在时返回 ErrUserNotFound。
	FindByID(ctx context.Context, id uint) (*domain.User, error)

	// Save 保存用户信息。ID 为零时创建，否则更新。
	// 违反唯一约束时返回 ErrDuplicateEntry。
	Save(ctx context.Context, user *domain.User) error

	// AdminExists 报告是否已经存在管理员账号。
	AdminExists(ctx context.Context) (bool, error)

	// List 按 ID 倒序返回全部用户。
	List(ctx context.Context) ([]domain.User, error)
}
