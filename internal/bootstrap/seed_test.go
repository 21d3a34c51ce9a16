package bootstrap_test

import (
	"context"
	"testing"

	"anoa.com/blogspace/internal/bootstrap"
	"anoa.com/blogspace/internal/entity"
	"anoa.com/blogspace/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedAdminUser(t *testing.T) {
	db := testutils.SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, bootstrap.SeedAdminUser(ctx, db, "admin@example.test", "admin-pass"))
	require.NoError(t, bootstrap.SeedAdminUser(ctx, db, "admin@example.test", "other-pass"))

	var admins []entity.User
	require.NoError(t, db.Where("role = ?", entity.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin", admins[0].Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admins[0].PasswordHash), []byte("admin-pass")))
}
