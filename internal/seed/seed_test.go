package seed

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/internal/repository/sqlite"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "seed.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })

	now := time.Date(2025, time.August, 21, 9, 0, 0, 0, time.UTC)
	loaded, err := Load(ctx, store, now, nil)
	require.NoError(t, err)
	assert.True(t, loaded)

	list, err := store.ListActiveTools(ctx)
	require.NoError(t, err)
	require.Len(t, list, 6)

	byTool := make(map[string]models.Tool, len(list))
	for _, tool := range list {
		byTool[tool.ToolID] = tool
	}
	assert.Equal(t, models.ConditionReplace, byTool["FER-A1"].Condition)
	assert.Equal(t, models.ConditionOK, byTool["FER-A2"].Condition)
	assert.Equal(t, models.ConditionWarn, byTool["FER-B1"].Condition)
	assert.Equal(t, models.ConditionReplace, byTool["FER-D1"].Condition)
	require.Len(t, byTool["FER-E1"].ProductionHistory, 1)
	assert.Equal(t, models.ProductionEntry{Pieces: 95000, Date: models.DateOf(now)}, byTool["FER-E1"].ProductionHistory[0])

	swapList, err := store.ListSwaps(ctx)
	require.NoError(t, err)
	require.Len(t, swapList, 5)
	assert.Equal(t, "FER-B1-NEW", swapList[0].ToolID)

	scrapList, err := store.ListScrap(ctx)
	require.NoError(t, err)
	assert.Len(t, scrapList, 3)

	commentList, err := store.ListComments(ctx, "MOLDE-A")
	require.NoError(t, err)
	assert.Len(t, commentList, 3)

	loaded, err = Load(ctx, store, now, nil)
	require.NoError(t, err)
	assert.False(t, loaded)
}
