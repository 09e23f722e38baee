package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
	gormpersistence "github.com/MarcosViniicius/projeto-avaria-usointerno/internal/infra/persistence/gorm"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/infra/setup"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/repository"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/service"
)

// SeedOptions 是初始化脚本创建的默认管理员
type SeedOptions struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// SeedResult 汇总初始化之后各表的行数
type SeedResult struct {
	AdminCreated bool
	Users        int64
	Products     int64
	Records      int64
}

func sampleProducts() []domain.Product {
	barcode := func(s string) *string { return &s }
	return []domain.Product{
		{Name: "Arroz 5kg", Type: domain.ProductTypeInternal, Barcode: barcode("7891234567890")},
		{Name: "Feijão 1kg", Type: domain.ProductTypeInternal, Barcode: barcode("7891234567891")},
		{Name: "Açúcar 1kg", Type: domain.ProductTypeInternal, Barcode: barcode("7891234567892")},
		{Name: "Óleo de Soja 900ml", Type: domain.ProductTypeInternal, Barcode: barcode("7891234567893")},
		{Name: "Maçã", Type: domain.ProductTypeProduce},
		{Name: "Banana", Type: domain.ProductTypeProduce},
		{Name: "Laranja", Type: domain.ProductTypeProduce},
		{Name: "Tomate", Type: domain.ProductTypeProduce},
	}
}

// Seed 迁移数据库；默认管理员不存在时创建它和示例商品。重复执行不会产生重复数据。
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) (*SeedResult, error) {
	if err := setup.MigrateDB(db); err != nil {
		return nil, err
	}
	users := gormpersistence.NewGormUserRepository(db)
	result := &SeedResult{}

	_, err := users.FindByUsername(ctx, opts.AdminUsername)
	switch {
	case err == nil:
		logrus.WithField("username", opts.AdminUsername).Info("Admin user already exists, skipping seed")
	case errors.Is(err, repository.ErrUserNotFound):
		if err := seedAdminAndProducts(ctx, db, opts); err != nil {
			return nil, err
		}
		result.AdminCreated = true
	default:
		return nil, fmt.Errorf("failed to look up admin user: %w", err)
	}

	for _, count := range []struct {
		model any
		dst   *int64
	}{
		{&domain.User{}, &result.Users},
		{&domain.Product{}, &result.Products},
		{&domain.DamageRecord{}, &result.Records},
	} {
		if err := db.WithContext(ctx).Model(count.model).Count(count.dst).Error; err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}
	return result, nil
}

func seedAdminAndProducts(ctx context.Context, db *gorm.DB, opts SeedOptions) error {
	hashed, err := service.HashPassword(opts.AdminPassword)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin := &domain.User{
			Username: opts.AdminUsername,
			Email:    opts.AdminEmail,
			Password: hashed,
			IsAdmin:  true,
		}
		if err := gormpersistence.NewGormUserRepository(tx).Save(ctx, admin); err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		products := gormpersistence.NewGormProductRepository(tx)
		for _, p := range sampleProducts() {
			p := p
			var err error
			if p.IsInternal() {
				_, err = products.FindByBarcodeAndType(ctx, p.BarcodeValue(), p.Type)
			} else {
				_, err = products.FindByNameAndType(ctx, p.Name, p.Type)
			}
			if err == nil {
				logrus.WithField("product", p.Name).Info("Sample product already exists, skipping")
				continue
			}
			if !errors.Is(err, repository.ErrProductNotFound) {
				return fmt.Errorf("failed to look up sample product %q: %w", p.Name, err)
			}
			if err := products.Create(ctx, &p); err != nil {
				return fmt.Errorf("failed to create sample product %q: %w", p.Name, err)
			}
		}
		logrus.WithField("username", admin.Username).Info("Admin user and sample products created")
		return nil
	})
}
