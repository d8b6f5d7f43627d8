package txhook_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/clubnotify/pkg/txhook"
)

func TestAfterCommit(t *testing.T) {
	t.Run("runs immediately without scope", func(t *testing.T) {
		ran := false
		txhook.AfterCommit(context.Background(), func(context.Context) { ran = true })
		assert.True(t, ran)
	})

	t.Run("defers until commit", func(t *testing.T) {
		ctx, scope, owner := txhook.Begin(context.Background())
		require.True(t, owner)

		var order []int
		txhook.AfterCommit(ctx, func(context.Context) { order = append(order, 1) })
		txhook.AfterCommit(ctx, func(context.Context) { order = append(order, 2) })
		assert.Empty(t, order)
		assert.Equal(t, 2, scope.Len())

		scope.Commit(context.Background())
		assert.Equal(t, []int{1, 2}, order)

		scope.Commit(context.Background())
		assert.Equal(t, []int{1, 2}, order, "second commit must not rerun hooks")
	})

	t.Run("discard drops hooks", func(t *testing.T) {
		ctx, scope, _ := txhook.Begin(context.Background())
		ran := false
		txhook.AfterCommit(ctx, func(context.Context) { ran = true })
		scope.Discard()
		scope.Commit(context.Background())
		assert.False(t, ran)
		assert.False(t, txhook.InScope(ctx))
	})

	t.Run("nested begin reuses outer scope", func(t *testing.T) {
		ctx, outer, owner := txhook.Begin(context.Background())
		require.True(t, owner)
		inner, scope, innerOwner := txhook.Begin(ctx)
		assert.False(t, innerOwner)
		assert.Same(t, outer, scope)
		assert.True(t, txhook.InScope(inner))
	})

	t.Run("hooks registered after commit run immediately", func(t *testing.T) {
		ctx, scope, _ := txhook.Begin(context.Background())
		scope.Commit(ctx)
		ran := false
		txhook.AfterCommit(ctx, func(context.Context) { ran = true })
		assert.True(t, ran)
	})
}

func TestDetach(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ctx, _, _ = txhook.Begin(ctx)
	cancel()

	detached := txhook.Detach(ctx)
	assert.NoError(t, detached.Err())
	assert.False(t, txhook.InScope(detached))

	ran := false
	txhook.AfterCommit(detached, func(context.Context) { ran = true })
	assert.True(t, ran)
}

func TestLocalTransactor(t *testing.T) {
	var tx txhook.Transactor = txhook.LocalTransactor{}

	t.Run("commit runs hooks after fn returns", func(t *testing.T) {
		var events []string
		err := tx.WithTx(context.Background(), func(ctx context.Context) error {
			txhook.AfterCommit(ctx, func(context.Context) { events = append(events, "hook") })
			events = append(events, "body")
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"body", "hook"}, events)
	})

	t.Run("error discards hooks", func(t *testing.T) {
		boom := errors.New("boom")
		ran := false
		err := tx.WithTx(context.Background(), func(ctx context.Context) error {
			txhook.AfterCommit(ctx, func(context.Context) { ran = true })
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.False(t, ran)
	})

	t.Run("nested units commit with the outermost", func(t *testing.T) {
		ran := false
		err := tx.WithTx(context.Background(), func(ctx context.Context) error {
			err := tx.WithTx(ctx, func(ctx context.Context) error {
				txhook.AfterCommit(ctx, func(context.Context) { ran = true })
				return nil
			})
			assert.False(t, ran, "inner unit must not flush")
			return err
		})
		require.NoError(t, err)
		assert.True(t, ran)
	})
}
