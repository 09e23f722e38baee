package gormpersistence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
	gormpersistence "github.com/MarcosViniicius/projeto-avaria-usointerno/internal/infra/persistence/gorm"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/repository"
)

func TestGormProductRepository_CreateAndFind(t *testing.T) {
	repo := gormpersistence.NewGormProductRepository(newTestDB(t))

	banana := &domain.Product{Name: "Banana", Type: domain.ProductTypeProduce}
	require.NoError(t, repo.Create(ctx, banana))
	// 没有条码的商品可以有多个
	require.NoError(t, repo.Create(ctx, &domain.Product{Name: "Maçã", Type: domain.ProductTypeProduce}))
	soap := &domain.Product{Name: "Sabonete", Type: domain.ProductTypeInternal, Barcode: ptr("789100")}
	require.NoError(t, repo.Create(ctx, soap))

	found, err := repo.FindByNameAndType(ctx, "Banana", domain.ProductTypeProduce)
	require.NoError(t, err)
	assert.Equal(t, banana.ID, found.ID)

	_, err = repo.FindByNameAndType(ctx, "Banana", domain.ProductTypeInternal)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	found, err = repo.FindByBarcodeAndType(ctx, "789100", domain.ProductTypeInternal)
	require.NoError(t, err)
	assert.Equal(t, soap.ID, found.ID)

	_, err = repo.FindByBarcodeAndType(ctx, "789100", domain.ProductTypeProduce)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	err = repo.Create(ctx, &domain.Product{Name: "Outro", Type: domain.ProductTypeInternal, Barcode: ptr("789100")})
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestGormProductRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := gormpersistence.NewGormProductRepository(db)
	soap := seedProduct(t, db, "Sabonete", domain.ProductTypeInternal, "111")
	seedProduct(t, db, "Detergente", domain.ProductTypeInternal, "222")

	taken, err := repo.BarcodeTaken(ctx, "222", soap.ID)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = repo.BarcodeTaken(ctx, "111", soap.ID)
	require.NoError(t, err)
	assert.False(t, taken, "own barcode is not taken")

	soap.Barcode = ptr("222")
	assert.ErrorIs(t, repo.Update(ctx, soap), repository.ErrDuplicateEntry)

	soap.Name = "Sabonete Líquido"
	soap.Barcode = nil
	require.NoError(t, repo.Update(ctx, soap))

	reloaded, err := repo.FindByID(ctx, soap.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sabonete Líquido", reloaded.Name)
	assert.Nil(t, reloaded.Barcode)
	assert.Equal(t, domain.ProductTypeInternal, reloaded.Type)
}

func TestGormProductRepository_DeleteWithRecords(t *testing.T) {
	db := newTestDB(t)
	repo := gormpersistence.NewGormProductRepository(db)
	banana := seedProduct(t, db, "Banana", domain.ProductTypeProduce, "")
	apple := seedProduct(t, db, "Maçã", domain.ProductTypeProduce, "")
	seedRecord(t, db, banana, at(1, 10), ptr(1.5), nil)
	seedRecord(t, db, banana, at(2, 10), ptr(2.0), nil)
	seedRecord(t, db, apple, at(2, 11), ptr(0.5), nil)

	removed, err := repo.DeleteWithRecords(ctx, banana.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	_, err = repo.FindByID(ctx, banana.ID)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	var remaining int64
	require.NoError(t, db.Model(&domain.DamageRecord{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)

	_, err = repo.DeleteWithRecords(ctx, banana.ID)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestGormProductRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := gormpersistence.NewGormProductRepository(db)
	banana := seedProduct(t, db, "Banana", domain.ProductTypeProduce, "")
	seedProduct(t, db, "Abacaxi", domain.ProductTypeProduce, "")
	soap := seedProduct(t, db, "Sabonete", domain.ProductTypeInternal, "789ABC")
	seedRecord(t, db, banana, at(1, 10), ptr(1.0), nil)
	seedRecord(t, db, banana, at(1, 11), ptr(1.0), nil)
	seedRecord(t, db, soap, at(1, 12), nil, ptr(3))

	t.Run("all ordered by name with counts", func(t *testing.T) {
		items, total, err := repo.List(ctx, domain.ProductFilter{}, 0, 30)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		require.Len(t, items, 3)
		assert.Equal(t, "Abacaxi", items[0].Name)
		assert.EqualValues(t, 0, items[0].RecordCount)
		assert.Equal(t, "Banana", items[1].Name)
		assert.EqualValues(t, 2, items[1].RecordCount)
		assert.EqualValues(t, 1, items[2].RecordCount)
	})

	t.Run("by type", func(t *testing.T) {
		items, total, err := repo.List(ctx, domain.ProductFilter{Type: domain.ProductTypeInternal}, 0, 30)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, items, 1)
		assert.Equal(t, soap.ID, items[0].ID)
	})

	t.Run("search matches barcode case-insensitively", func(t *testing.T) {
		items, total, err := repo.List(ctx, domain.ProductFilter{Search: "abc"}, 0, 30)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, items, 1)
		assert.Equal(t, "Sabonete", items[0].Name)
	})

	t.Run("search matches name", func(t *testing.T) {
		_, total, err := repo.List(ctx, domain.ProductFilter{Search: "BAN"}, 0, 30)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("page past the end", func(t *testing.T) {
		items, total, err := repo.List(ctx, domain.ProductFilter{}, 30, 30)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Empty(t, items)
	})

	names, err := repo.DistinctNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Abacaxi", "Banana", "Sabonete"}, names)
}
