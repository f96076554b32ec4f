package database

import (
	"testing"

	"github.com/habithome/habithome-api/internal/config"
	"github.com/habithome/habithome-api/internal/logging"
	"github.com/habithome/habithome-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectAndMigrate(t *testing.T) {
	cfg := &config.Config{DatabaseURL: "file:database_test?mode=memory&cache=shared"}
	db, err := Connect(cfg, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, m := range []any{&models.User{}, &models.Family{}, &models.FamilyMember{}, &models.Task{}, &models.PointRecord{}, &models.Activity{}, &models.Notification{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&models.FamilyMember{}, "idx_family_user"))
}
