package holdings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kitroom/kitroom-backend/pkg/db/models"
	"github.com/kitroom/kitroom-backend/pkg/enums"
)

func setupHoldingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:holdings_repo_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.HeldItem{}))
	return db
}

func TestListByMemberReturnsStableOrder(t *testing.T) {
	db := setupHoldingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	memberID := uuid.New()

	seed := []models.HeldItem{
		{MemberID: memberID, Category: enums.CategoryNo4Uniform, Type: "No 4 Trousers", Size: "34"},
		{MemberID: memberID, Category: enums.CategoryNo3Uniform, Type: "Boots", Size: "UK 9"},
		{MemberID: memberID, Category: enums.CategoryNo3Uniform, Type: "Boots", Size: "UK 10"},
		{MemberID: uuid.New(), Category: enums.CategoryNo3Uniform, Type: "Beret", Size: "6 3/4"},
	}
	for i := range seed {
		require.NoError(t, repo.Save(ctx, &seed[i]))
	}

	items, err := repo.ListByMember(ctx, memberID)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, enums.CategoryNo3Uniform, items[0].Category)
	assert.Equal(t, "UK 10", items[0].Size)
	assert.Equal(t, "UK 9", items[1].Size)
	assert.Equal(t, enums.CategoryNo4Uniform, items[2].Category)
}

func TestSaveCreatesThenUpdates(t *testing.T) {
	db := setupHoldingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := &models.HeldItem{
		MemberID: uuid.New(),
		Category: enums.CategoryShirt,
		Type:     "Digital Shirt",
		Size:     "M",
		Status:   enums.HeldItemStatusAvailable,
	}
	require.NoError(t, repo.Save(ctx, item))
	require.NotEqual(t, uuid.Nil, item.ID)

	item.Status = enums.HeldItemStatusMissing
	item.MissingCount = 1
	require.NoError(t, repo.Save(ctx, item))

	items, err := repo.ListByMember(ctx, item.MemberID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, enums.HeldItemStatusMissing, items[0].Status)
	assert.Equal(t, 1, items[0].MissingCount)
}

func TestDeleteRemovesRow(t *testing.T) {
	db := setupHoldingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := &models.HeldItem{
		MemberID: uuid.New(),
		Category: enums.CategoryNo3Uniform,
		Type:     "Beret",
		Size:     "6 3/4",
	}
	require.NoError(t, repo.Save(ctx, item))
	require.NoError(t, repo.Delete(ctx, item.ID))

	items, err := repo.ListByMember(ctx, item.MemberID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
