package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/raaihank/data-laundry/internal/analysis"
	"github.com/raaihank/data-laundry/internal/cleaning"
	"github.com/raaihank/data-laundry/internal/config"
)

func sampleRows() []cleaning.Row {
	return []cleaning.Row{
		{"이름": "홍길동", "연락처": "01012345678"},
		{"이름": "김철수", "연락처": "010-9876-5432"},
	}
}

func TestKey(t *testing.T) {
	columns := []string{"이름", "연락처"}
	req := cleaning.Request{Options: cleaning.Options{FormatMobile: true}}

	base, err := Key(req, columns, sampleRows(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(base, keyPrefix) {
		t.Errorf("Expected prefix %s, got %s", keyPrefix, base)
	}

	again, _ := Key(req, columns, sampleRows(), nil)
	if again != base {
		t.Error("Expected identical input to produce the same key")
	}

	tests := []struct {
		name   string
		req    cleaning.Request
		rows   []cleaning.Row
		limits analysis.Limits
	}{
		{"prompt", cleaning.Request{Prompt: "중복 제거", Options: req.Options}, sampleRows(), nil},
		{"options", cleaning.Request{Options: cleaning.Options{FormatDate: true}}, sampleRows(), nil},
		{"rows", req, sampleRows()[:1], nil},
		{"limits", req, sampleRows(), analysis.Limits{"이름": 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Key(tt.req, columns, tt.rows, tt.limits)
			if err != nil {
				t.Fatal(err)
			}
			if got == base {
				t.Errorf("Expected %s change to alter the key", tt.name)
			}
		})
	}
}

func TestCacheable(t *testing.T) {
	rc := &ResultCache{config: config.CacheConfig{MaxRows: 10}}
	tests := []struct {
		rows     int
		expected bool
	}{
		{0, false},
		{1, true},
		{10, true},
		{11, false},
	}
	for _, tt := range tests {
		if got := rc.Cacheable(tt.rows); got != tt.expected {
			t.Errorf("Cacheable(%d): Expected %v, got %v", tt.rows, tt.expected, got)
		}
	}

	var disabled *ResultCache
	if disabled.Cacheable(1) {
		t.Error("Expected nil cache to never cache")
	}
}

func TestUsedMemory(t *testing.T) {
	info := "# Memory\r\nused_memory:1048576\r\nused_memory_human:1.00M\r\n"
	if got := usedMemory(info); got != 1048576 {
		t.Errorf("Expected 1048576, got %d", got)
	}
	if got := usedMemory("# Memory\r\n"); got != 0 {
		t.Errorf("Expected 0, got %d", got)
	}
}

// TestResultCacheRedis runs against a live Redis when LAUNDRY_TEST_REDIS_ADDR is set
func TestResultCacheRedis(t *testing.T) {
	addr := os.Getenv("LAUNDRY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LAUNDRY_TEST_REDIS_ADDR not set")
	}

	cfg := config.GetDefaults().Cache
	cfg.Addr = addr
	cfg.TTL = time.Minute
	rc, err := NewResultCache(cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	ctx := context.Background()

	key, _ := Key(cleaning.Request{Prompt: t.Name()}, []string{"이름"}, sampleRows(), nil)
	if _, ok := rc.Get(ctx, key); ok {
		t.Fatal("Expected miss before Set")
	}
	if err := rc.Set(ctx, key, &CachedResult{Columns: []string{"이름"}, Rows: sampleRows()}); err != nil {
		t.Fatal(err)
	}
	got, ok := rc.Get(ctx, key)
	if !ok || len(got.Rows) != 2 || got.TTL != 60 {
		t.Errorf("Expected cached result, got %+v", got)
	}

	stats, err := rc.GetStats(ctx)
	if err != nil || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %+v (%v)", stats, err)
	}
	if err := rc.Clear(ctx); err != nil {
		t.Fatal(err)
	}
}
