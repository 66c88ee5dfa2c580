package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

// The service must run without redis; a nil client means every lookup
// misses and writes are no-ops.
func TestUnreadCacheNilClientIsInert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache := NewUnreadCache(nil, time.Minute, zap.NewNop())

	cache.Set(ctx, "alice@x.com", 7)
	if count, ok := cache.Get(ctx, "alice@x.com"); ok || count != 0 {
		t.Errorf("Get on nil client: got (%d, %v), want (0, false)", count, ok)
	}
	cache.Invalidate(ctx, "alice@x.com")

	var nilCache *UnreadCache
	if _, ok := nilCache.Get(ctx, "alice@x.com"); ok {
		t.Error("nil receiver reported a warm entry")
	}
	nilCache.Set(ctx, "alice@x.com", 1)
	nilCache.Invalidate(ctx, "alice@x.com")
}
