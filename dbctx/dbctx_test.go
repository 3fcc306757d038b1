package dbctx

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestOnCommit_WithoutTransactionRunsNow(t *testing.T) {
	ran := false
	New(context.Background()).OnCommit(func() { ran = true })
	assert.True(t, ran)
}

func TestOnCommit_RawTransactionDrops(t *testing.T) {
	db := setupDB(t)
	ran := false
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		New(context.Background()).WithTx(tx).OnCommit(func() { ran = true })
		return nil
	}))
	assert.False(t, ran)
}

func TestTransaction_CallbacksFollowOutcome(t *testing.T) {
	db := setupDB(t)
	var order []string

	err := Transaction(db, New(context.Background()), func(c Context) error {
		c.OnCommit(func() { order = append(order, "outer") })

		require.Error(t, Transaction(db, c, func(c Context) error {
			c.OnCommit(func() { order = append(order, "rolled back") })
			return errors.New("undo")
		}))
		require.NoError(t, Transaction(db, c, func(c Context) error {
			c.OnCommit(func() { order = append(order, "released") })
			return nil
		}))

		assert.Empty(t, order)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "released"}, order)

	order = nil
	err = Transaction(db, New(context.Background()), func(c Context) error {
		c.OnCommit(func() { order = append(order, "never") })
		return errors.New("abort")
	})
	require.Error(t, err)
	assert.Empty(t, order)
}
