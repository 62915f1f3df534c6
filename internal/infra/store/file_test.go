package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nmhoang23/rotauth/internal/core/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	fs := NewFileStore(path)
	ctx := context.Background()

	want := map[string]domain.ResourceStats{
		"http://198.51.100.10:3128": {
			CooldownMs:   4000,
			SuccessCount: 12,
			FailCount:    3,
			UseCount:     40,
			LastUsedAt:   time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
		},
		"socks5://198.51.100.12:1080": {
			CooldownMs: 1000,
		},
	}

	if err := fs.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("Load returned %d entries, want %d", len(got), len(want))
	}
	for key, w := range want {
		g, ok := got[key]
		if !ok {
			t.Errorf("missing key %s after round-trip", key)
			continue
		}
		if g.CooldownMs != w.CooldownMs || g.SuccessCount != w.SuccessCount ||
			g.FailCount != w.FailCount || g.UseCount != w.UseCount ||
			!g.LastUsedAt.Equal(w.LastUsedAt) {
			t.Errorf("stats for %s = %+v, want %+v", key, g, w)
		}
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	got, err := fs.Load(context.Background())
	if err != nil {
		t.Fatalf("Load of missing file failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load of missing file returned %d entries, want 0", len(got))
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "stats.json"))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		stats := map[string]domain.ResourceStats{
			"http://198.51.100.10:3128": {CooldownMs: int64(1000 * (i + 1))},
		}
		if err := fs.Save(ctx, stats); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file %s left behind after rename", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("expected only the canonical file, found %d entries", len(entries))
	}
}

func TestFileStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "stats.json")
	fs := NewFileStore(path)

	err := fs.Save(context.Background(), map[string]domain.ResourceStats{})
	if err != nil {
		t.Fatalf("Save into missing dir failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("canonical file missing after Save: %v", err)
	}
}
