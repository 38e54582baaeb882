package render

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/eink-server/eink-display-server/internal/config"
	"github.com/eink-server/eink-display-server/internal/recipes"
	"github.com/eink-server/eink-display-server/pkg/scene"
)

func testEngine(t *testing.T) (*Engine, *recipes.Registry) {
	t.Helper()
	registry := recipes.NewRegistry()
	engine, err := NewEngine(registry, &config.RenderConfig{
		CacheSize: 16,
		CacheTTL:  time.Minute,
		Timeout:   10 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine, registry
}

func decodeDims(t *testing.T, buf []byte) (int, int) {
	t.Helper()
	cfg, err := png.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestRenderPNGExactDimensions(t *testing.T) {
	engine, _ := testEngine(t)

	tests := []struct {
		slug string
		w, h int
	}{
		{"color-dashboard", 800, 480},
		{"simple-text", 800, 480}, // double-size recipe still lands on exact dims
		{"not-found", 250, 122},
		{"world-clock", 640, 384},
	}

	for _, tt := range tests {
		buf, err := engine.RenderPNG(context.Background(), tt.slug, tt.w, tt.h)
		if err != nil {
			t.Errorf("RenderPNG(%q): %v", tt.slug, err)
			continue
		}
		if w, h := decodeDims(t, buf); w != tt.w || h != tt.h {
			t.Errorf("RenderPNG(%q) = %dx%d, want %dx%d", tt.slug, w, h, tt.w, tt.h)
		}
	}
}

func TestRenderPNGUnknownSlugSubstitutesDefault(t *testing.T) {
	engine, _ := testEngine(t)

	buf, err := engine.RenderPNG(context.Background(), "no-such-screen", 400, 300)
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if len(buf) == 0 {
		t.Fatal("empty buffer for unknown slug")
	}

	// The substituted render caches under the default slug, so the default
	// slug itself hits the same entry.
	def, err := engine.RenderPNG(context.Background(), recipes.DefaultSlug, 400, 300)
	if err != nil {
		t.Fatalf("RenderPNG default: %v", err)
	}
	if w, h := decodeDims(t, def); w != 400 || h != 300 {
		t.Errorf("default render = %dx%d, want 400x300", w, h)
	}
}

func TestRenderPNGFailingRecipeFallsBack(t *testing.T) {
	engine, registry := testEngine(t)

	registry.Register(&recipes.Recipe{
		Slug: "broken",
		Build: func(props recipes.Props, width, height int) (*scene.Scene, error) {
			return nil, errors.New("boom")
		},
	})

	buf, err := engine.RenderPNG(context.Background(), "broken", 400, 300)
	if err != nil {
		t.Fatalf("fallback render should succeed, got %v", err)
	}
	if w, h := decodeDims(t, buf); w != 400 || h != 300 {
		t.Errorf("fallback render = %dx%d, want 400x300", w, h)
	}
}

func TestRenderPNGCachesBuffer(t *testing.T) {
	engine, _ := testEngine(t)

	first, err := engine.RenderPNG(context.Background(), "color-dashboard", 800, 480)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := engine.RenderPNG(context.Background(), "color-dashboard", 800, 480)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("repeated render returned a different buffer")
	}
}

func TestRenderPNGConcurrentIdenticalRequests(t *testing.T) {
	engine, _ := testEngine(t)

	const n = 8
	results := make([][]byte, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.RenderPNG(context.Background(), "color-dashboard", 800, 480)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("render %d: %v", i, errs[i])
		}
		if !bytes.Equal(results[0], results[i]) {
			t.Fatalf("render %d differs from render 0", i)
		}
	}
}

func TestPrecacheWarmsCache(t *testing.T) {
	engine, _ := testEngine(t)

	engine.Precache("color-dashboard", 800, 480)

	// Precache is fire-and-forget; poll until the entry lands.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := engine.cache.Get("color-dashboard|800x480|png"); ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("precache never populated the cache")
}
