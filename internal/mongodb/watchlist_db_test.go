package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWatchLater(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	added, err := db.AddWatchLater(ctx, "u1", MovieStubDb{Id: 1, Title: "One"})
	require.NoError(t, err)
	require.True(t, added)

	added, err = db.AddWatchLater(ctx, "u1", MovieStubDb{Id: 1, Title: "One"})
	require.NoError(t, err)
	require.False(t, added)

	removed, err := db.RemoveWatchLater(ctx, "u1", 2)
	require.NoError(t, err)
	require.False(t, removed)

	items, err := db.GetWatchLater(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = db.GetWatchLater(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, items)
}
