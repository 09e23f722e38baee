package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/repository"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/repository/mocks"
)

const testPurgePassword = "admin123"

func newCuration() (*CurationService, *mocks.ProductRepository, *mocks.DamageRepository) {
	products := new(mocks.ProductRepository)
	damages := new(mocks.DamageRepository)
	return NewCurationService(products, damages, testPurgePassword), products, damages
}

func ptr[T any](v T) *T { return &v }

func TestCurationService_EditProduct_BarcodeTaken(t *testing.T) {
	svc, products, _ := newCuration()
	ctx := context.Background()

	products.On("FindByID", ctx, uint(2)).Return(&domain.Product{ID: 2, Name: "Sabão", Barcode: ptr("111"), Type: domain.ProductTypeInternal}, nil).Once()
	products.On("BarcodeTaken", ctx, "222", uint(2)).Return(true, nil).Once()

	_, err := svc.EditProduct(ctx, 2, ProductEdit{Name: "Sabão", Barcode: "222"})

	require.Error(t, err)
	assert.Equal(t, "Código de barras já existe em outro produto.", err.Error())
	products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCurationService_EditProduct_ClearsBarcode(t *testing.T) {
	svc, products, _ := newCuration()
	ctx := context.Background()

	products.On("FindByID", ctx, uint(2)).Return(&domain.Product{ID: 2, Name: "Sabão", Barcode: ptr("111"), Type: domain.ProductTypeInternal}, nil).Once()
	products.On("Update", ctx, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Sabão líquido" && p.Barcode == nil
	})).Return(nil).Once()

	product, err := svc.EditProduct(ctx, 2, ProductEdit{Name: "Sabão líquido", Barcode: "  "})

	require.NoError(t, err)
	assert.Nil(t, product.Barcode)
	products.AssertNotCalled(t, "BarcodeTaken", mock.Anything, mock.Anything, mock.Anything)
}

func TestCurationService_EditProduct_ProduceIgnoresBarcode(t *testing.T) {
	svc, products, _ := newCuration()
	ctx := context.Background()

	products.On("FindByID", ctx, uint(3)).Return(&domain.Product{ID: 3, Name: "Banana", Type: domain.ProductTypeProduce}, nil).Once()
	products.On("Update", ctx, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Banana prata" && p.Barcode == nil
	})).Return(nil).Once()

	_, err := svc.EditProduct(ctx, 3, ProductEdit{Name: "Banana prata", Barcode: "999"})

	require.NoError(t, err)
	products.AssertExpectations(t)
}

func TestCurationService_EditProduct_EmptyName(t *testing.T) {
	svc, products, _ := newCuration()
	ctx := context.Background()
	products.On("FindByID", ctx, uint(3)).Return(&domain.Product{ID: 3, Name: "Banana", Type: domain.ProductTypeProduce}, nil).Once()

	_, err := svc.EditProduct(ctx, 3, ProductEdit{Name: ""})

	assert.True(t, IsValidation(err))
}

func TestCurationService_EditProduct_NotFound(t *testing.T) {
	svc, products, _ := newCuration()
	ctx := context.Background()
	products.On("FindByID", ctx, uint(404)).Return(nil, repository.ErrProductNotFound).Once()

	_, err := svc.EditProduct(ctx, 404, ProductEdit{Name: "X"})

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCurationService_EditRecord_Produce(t *testing.T) {
	svc, products, damages := newCuration()
	ctx := context.Background()

	record := &domain.DamageRecord{
		ID: 5, ProductID: 3, Weight: ptr(1.0), Notes: ptr("velho"),
		RecordedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local),
		Product:    domain.Product{ID: 3, Name: "Banana", Type: domain.ProductTypeProduce},
	}
	damages.On("FindByID", ctx, uint(5)).Return(record, nil).Once()
	damages.On("Update", ctx, mock.MatchedBy(func(r *domain.DamageRecord) bool {
		return *r.Weight == 2.5 && r.Quantity == nil && r.Notes == nil && r.Product.Name == "Banana" &&
			r.RecordedAt.Equal(time.Date(2024, 3, 2, 14, 30, 0, 0, time.Local))
	})).Return(nil).Once()

	updated, err := svc.EditRecord(ctx, 5, RecordEdit{
		Name: "Banana", Weight: ptr(2.5), Quantity: ptr(4), RecordedAt: "2024-03-02T14:30",
	})

	require.NoError(t, err)
	assert.Equal(t, 2.5, *updated.Weight)
	damages.AssertExpectations(t)
	// 商品随记录一起写入，不单独更新
	products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func internalRecord() *domain.DamageRecord {
	return &domain.DamageRecord{
		ID: 6, ProductID: 4, Quantity: ptr(1),
		RecordedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local),
		Product:    domain.Product{ID: 4, Name: "Sabonete", Barcode: ptr("111"), Type: domain.ProductTypeInternal},
	}
}

func TestCurationService_EditRecord_Internal(t *testing.T) {
	svc, products, damages := newCuration()
	ctx := context.Background()

	damages.On("FindByID", ctx, uint(6)).Return(internalRecord(), nil).Once()
	products.On("BarcodeTaken", ctx, "333", uint(4)).Return(false, nil).Once()
	damages.On("Update", ctx, mock.MatchedBy(func(r *domain.DamageRecord) bool {
		return r.Weight == nil && r.Quantity != nil && *r.Quantity == 3 &&
			r.Product.Name == "Sabonete Líquido" && r.Product.BarcodeValue() == "333" &&
			*r.Notes == "embalagem rasgada"
	})).Return(nil).Once()

	updated, err := svc.EditRecord(ctx, 6, RecordEdit{
		Name: "Sabonete Líquido", Barcode: "333", Weight: ptr(2.5), Quantity: ptr(3), Notes: "embalagem rasgada",
	})

	require.NoError(t, err)
	assert.Nil(t, updated.Weight)
	assert.Equal(t, 3, *updated.Quantity)
	assert.Equal(t, "333", updated.Product.BarcodeValue())
	assert.True(t, updated.RecordedAt.Equal(internalRecord().RecordedAt), "empty date keeps recorded_at")
	damages.AssertExpectations(t)
	products.AssertExpectations(t)
}

func TestCurationService_EditRecord_BarcodeTaken(t *testing.T) {
	svc, products, damages := newCuration()
	ctx := context.Background()

	damages.On("FindByID", ctx, uint(6)).Return(internalRecord(), nil).Once()
	products.On("BarcodeTaken", ctx, "222", uint(4)).Return(true, nil).Once()

	record, err := svc.EditRecord(ctx, 6, RecordEdit{Name: "Sabonete", Barcode: "222", Quantity: ptr(2)})

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Código de barras já existe em outro produto.", err.Error())
	assert.Equal(t, "111", record.Product.BarcodeValue(), "returned record is unchanged")
	damages.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCurationService_EditRecord_DuplicateOnSave(t *testing.T) {
	svc, products, damages := newCuration()
	ctx := context.Background()

	damages.On("FindByID", ctx, uint(6)).Return(internalRecord(), nil).Once()
	products.On("BarcodeTaken", ctx, "222", uint(4)).Return(false, nil).Once()
	damages.On("Update", ctx, mock.AnythingOfType("*domain.DamageRecord")).Return(repository.ErrDuplicateEntry).Once()

	_, err := svc.EditRecord(ctx, 6, RecordEdit{Name: "Sabonete", Barcode: "222", Quantity: ptr(2)})

	assert.True(t, IsValidation(err))
}

func TestCurationService_EditRecord_UpdateFails(t *testing.T) {
	svc, _, damages := newCuration()
	ctx := context.Background()

	damages.On("FindByID", ctx, uint(6)).Return(internalRecord(), nil).Once()
	damages.On("Update", ctx, mock.AnythingOfType("*domain.DamageRecord")).Return(errors.New("disk full")).Once()

	record, err := svc.EditRecord(ctx, 6, RecordEdit{Name: "Sabonete Novo", Barcode: "111", Quantity: ptr(2)})

	assert.ErrorIs(t, err, ErrInternalServer)
	assert.Equal(t, "Sabonete", record.Product.Name)
}

func TestCurationService_EditRecord_BadDateChangesNothing(t *testing.T) {
	svc, products, damages := newCuration()
	ctx := context.Background()

	damages.On("FindByID", ctx, uint(5)).Return(&domain.DamageRecord{
		ID: 5, Product: domain.Product{ID: 3, Name: "Banana", Type: domain.ProductTypeProduce},
	}, nil).Once()

	_, err := svc.EditRecord(ctx, 5, RecordEdit{Name: "Banana", RecordedAt: "02/03/2024"})

	require.Error(t, err)
	assert.Equal(t, "Formato de data inválido.", err.Error())
	products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	damages.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCurationService_DeleteProduct(t *testing.T) {
	svc, products, _ := newCuration()
	ctx := context.Background()

	products.On("FindByID", ctx, uint(3)).Return(&domain.Product{ID: 3, Name: "Banana"}, nil).Once()
	products.On("DeleteWithRecords", ctx, uint(3)).Return(int64(4), nil).Once()

	product, removed, err := svc.DeleteProduct(ctx, 3)

	require.NoError(t, err)
	assert.Equal(t, "Banana", product.Name)
	assert.Equal(t, int64(4), removed)
}

func TestCurationService_DeleteRecord_NotFound(t *testing.T) {
	svc, _, damages := newCuration()
	ctx := context.Background()
	damages.On("FindByID", ctx, uint(8)).Return(nil, repository.ErrRecordNotFound).Once()

	_, err := svc.DeleteRecord(ctx, 8)

	assert.ErrorIs(t, err, ErrRecordNotFound)
	damages.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCurationService_Purge(t *testing.T) {
	t.Run("wrong password deletes nothing", func(t *testing.T) {
		svc, _, damages := newCuration()

		_, err := svc.Purge(context.Background(), PurgeEverything, "errada")

		assert.ErrorIs(t, err, ErrPurgeDenied)
		damages.AssertNotCalled(t, "DeleteAll", mock.Anything)
	})

	t.Run("older than 30 days", func(t *testing.T) {
		svc, _, damages := newCuration()
		now := time.Date(2024, 4, 30, 12, 0, 0, 0, time.Local)
		svc.now = func() time.Time { return now }
		ctx := context.Background()

		damages.On("DeleteOlderThan", ctx, now.Add(-RetentionWindow)).Return(int64(7), nil).Once()

		removed, err := svc.Purge(ctx, PurgeOlderThan30Days, testPurgePassword)

		require.NoError(t, err)
		assert.Equal(t, int64(7), removed)
	})

	t.Run("everything", func(t *testing.T) {
		svc, _, damages := newCuration()
		ctx := context.Background()
		damages.On("DeleteAll", ctx).Return(int64(11), nil).Once()

		removed, err := svc.Purge(ctx, PurgeEverything, testPurgePassword)

		require.NoError(t, err)
		assert.Equal(t, int64(11), removed)
	})

	t.Run("unknown action", func(t *testing.T) {
		svc, _, _ := newCuration()

		_, err := svc.Purge(context.Background(), "limpar_ontem", testPurgePassword)

		assert.True(t, IsValidation(err))
	})

	t.Run("repository failure", func(t *testing.T) {
		svc, _, damages := newCuration()
		ctx := context.Background()
		damages.On("DeleteAll", ctx).Return(int64(0), errors.New("locked")).Once()

		_, err := svc.Purge(ctx, PurgeEverything, testPurgePassword)

		assert.ErrorIs(t, err, ErrInternalServer)
	})
}

func TestUserService_ToggleAdmin(t *testing.T) {
	admin := &domain.User{ID: 1, Username: "alice", IsAdmin: true}

	t.Run("self", func(t *testing.T) {
		users := new(mocks.UserRepository)
		svc := NewUserService(users)

		_, err := svc.ToggleAdmin(context.Background(), admin, 1)

		assert.ErrorIs(t, err, ErrSelfDemotion)
		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("non admin actor", func(t *testing.T) {
		svc := NewUserService(new(mocks.UserRepository))

		_, err := svc.ToggleAdmin(context.Background(), &domain.User{ID: 2}, 1)

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("promote", func(t *testing.T) {
		users := new(mocks.UserRepository)
		svc := NewUserService(users)
		ctx := context.Background()
		users.On("FindByID", ctx, uint(2)).Return(&domain.User{ID: 2, Username: "bob"}, nil).Once()
		users.On("Save", ctx, mock.MatchedBy(func(u *domain.User) bool { return u.IsAdmin })).Return(nil).Once()

		target, err := svc.ToggleAdmin(ctx, admin, 2)

		require.NoError(t, err)
		assert.True(t, target.IsAdmin)
		users.AssertExpectations(t)
	})
}
