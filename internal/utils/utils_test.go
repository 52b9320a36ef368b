package utils

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT("0b6f5c1e-1111-4a4a-9b9b-123456789abc", "secret")
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "0b6f5c1e-1111-4a4a-9b9b-123456789abc", claims.UserID)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestCache_SetGetDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	var out map[string]int
	found, err := GetCache(ctx, rdb, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetCache(ctx, rdb, "k", map[string]int{"a": 1}, time.Minute))
	found, err = GetCache(ctx, rdb, "k", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, out["a"])

	require.NoError(t, DeleteCache(ctx, rdb, "k"))
	found, _ = GetCache(ctx, rdb, "k", &out)
	assert.False(t, found)
}

func TestCache_DeletePrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	require.NoError(t, SetCache(ctx, rdb, "jotshis:page=1", 1, time.Minute))
	require.NoError(t, SetCache(ctx, rdb, "jotshis:page=2", 2, time.Minute))
	require.NoError(t, SetCache(ctx, rdb, "wallet:user:1", 3, time.Minute))

	require.NoError(t, DeletePrefix(ctx, rdb, "jotshis:"))

	assert.False(t, mr.Exists("jotshis:page=1"))
	assert.False(t, mr.Exists("jotshis:page=2"))
	assert.True(t, mr.Exists("wallet:user:1"))
}

func TestParsePage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query    string
		page     int
		size     int
		offset   int
		expected string
	}{
		{"", 1, 20, 0, "page=1:size=20"},
		{"?page=3&page_size=10", 3, 10, 20, "page=3:size=10"},
		{"?page=-1&page_size=500", 1, 20, 0, "page=1:size=20"},
		{"?page=abc", 1, 20, 0, "page=1:size=20"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/x"+tt.query, nil)
			p := ParsePage(c)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.size, p.PageSize)
			assert.Equal(t, tt.offset, p.Offset())
			assert.Equal(t, tt.expected, p.Key())
		})
	}
	assert.Equal(t, 3, Page{Page: 1, PageSize: 20}.TotalPages(41))
}
