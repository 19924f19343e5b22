package server

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codexbridge/codex-bridge/bridge/delegate/adapters"
)

func decodeToolJSON(t *testing.T, result *mcp.CallToolResult, into any) {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	require.NoError(t, json.Unmarshal([]byte(text.Text), into))
}

func TestCacheStatsReportsExpiredBeforePurging(t *testing.T) {
	cache := adapters.NewLRUCache(8, 20*time.Millisecond)
	cache.Put("a", "/d", "1")
	cache.Put("b", "/d", "2")
	time.Sleep(40 * time.Millisecond)

	tool := newCacheStatsTool(cache)
	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)

	var payload struct {
		Entries int `json:"entries"`
		Expired int `json:"expired"`
		Purged  int `json:"purged"`
	}
	decodeToolJSON(t, result, &payload)

	assert.Equal(t, 2, payload.Entries, "snapshot taken before the purge")
	assert.Equal(t, 2, payload.Expired)
	assert.Equal(t, 2, payload.Purged)

	assert.Equal(t, 0, cache.Stats().Entries, "expired entries purged as the explicit side effect")
}

func TestCacheStatsLiveEntriesSurvive(t *testing.T) {
	cache := adapters.NewLRUCache(8, time.Minute)
	cache.Put("live", "/d", "1")

	tool := newCacheStatsTool(cache)
	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)

	var payload struct {
		Entries int `json:"entries"`
		Expired int `json:"expired"`
		Purged  int `json:"purged"`
	}
	decodeToolJSON(t, result, &payload)

	assert.Equal(t, 1, payload.Entries)
	assert.Zero(t, payload.Expired)
	assert.Zero(t, payload.Purged)

	_, ok := cache.Get("live")
	assert.True(t, ok)
}
