package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rinkpass/backend/internal/infrastructure/persistence/models"
)

func setupMemberTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.MemberModel{}))
	return db
}

func newTestMember(t *testing.T, email string) *membership.Member {
	t.Helper()
	member, err := membership.NewMember("Jamie", "Okafor", email, "0400000001",
		time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC),
		membership.EmergencyContact{Name: "Sam Okafor", Phone: "0400000009"})
	require.NoError(t, err)
	return member
}

func TestGormMemberRepository_SaveAndFindByID(t *testing.T) {
	db := setupMemberTestDB(t)
	repo := NewGormMemberRepository(db)
	ctx := context.Background()

	member := newTestMember(t, "jamie@example.com")
	require.NoError(t, repo.Save(ctx, member))

	found, err := repo.FindByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, found.ID)
	assert.Equal(t, "Jamie Okafor", found.FullName())
	assert.Equal(t, membership.MemberStatusActive, found.Status)
	assert.Equal(t, "Sam Okafor", found.EmergencyContact.Name)
	assert.WithinDuration(t, member.DateOfBirth, found.DateOfBirth, time.Second)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormMemberRepository_SaveUpdatesExisting(t *testing.T) {
	db := setupMemberTestDB(t)
	repo := NewGormMemberRepository(db)
	ctx := context.Background()

	member := newTestMember(t, "jamie@example.com")
	require.NoError(t, repo.Save(ctx, member))

	require.NoError(t, member.Deactivate())
	require.NoError(t, repo.Save(ctx, member))

	found, err := repo.FindByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, membership.MemberStatusInactive, found.Status)

	var count int64
	require.NoError(t, db.Model(&models.MemberModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormMemberRepository_FindByEmail(t *testing.T) {
	db := setupMemberTestDB(t)
	repo := NewGormMemberRepository(db)
	ctx := context.Background()

	member := newTestMember(t, "jamie@example.com")
	require.NoError(t, repo.Save(ctx, member))

	// Lookup is case-insensitive on the caller's side
	found, err := repo.FindByEmail(ctx, "Jamie@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, member.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByEmail(ctx, "")
	assert.Error(t, err)
}

func TestGormMemberRepository_ExistsByEmail(t *testing.T) {
	db := setupMemberTestDB(t)
	repo := NewGormMemberRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestMember(t, "jamie@example.com")))

	exists, err := repo.ExistsByEmail(ctx, "jamie@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormMemberRepository_FindAllFiltersByStatus(t *testing.T) {
	db := setupMemberTestDB(t)
	repo := NewGormMemberRepository(db)
	ctx := context.Background()

	active := newTestMember(t, "active@example.com")
	require.NoError(t, repo.Save(ctx, active))

	inactive := newTestMember(t, "inactive@example.com")
	require.NoError(t, inactive.Deactivate())
	require.NoError(t, repo.Save(ctx, inactive))

	status := membership.MemberStatusActive
	members, total, err := repo.FindAll(ctx, membership.MemberFilter{
		Filter: shared.Filter{Page: 1, PageSize: 20},
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, members, 1)
	assert.Equal(t, active.ID, members[0].ID)

	members, total, err = repo.FindAll(ctx, membership.MemberFilter{
		Filter: shared.Filter{Page: 1, PageSize: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, members, 2)
}

func TestGormMemberRepository_Delete(t *testing.T) {
	db := setupMemberTestDB(t)
	repo := NewGormMemberRepository(db)
	ctx := context.Background()

	member := newTestMember(t, "jamie@example.com")
	require.NoError(t, repo.Save(ctx, member))

	require.NoError(t, repo.Delete(ctx, member.ID))

	_, err := repo.FindByID(ctx, member.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, member.ID), shared.ErrNotFound)
}
