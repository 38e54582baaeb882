package recipes

import (
	"testing"
	"time"
)

func TestNewRegistryBuiltins(t *testing.T) {
	r := NewRegistry()

	for _, slug := range []string{DefaultSlug, NotFoundSlug, "color-dashboard", "world-clock", "daily-quote"} {
		if _, ok := r.Resolve(slug); !ok {
			t.Errorf("builtin %q not registered", slug)
		}
	}

	if _, ok := r.Resolve("unknown"); ok {
		t.Error("unknown slug should not resolve")
	}
}

func TestRegisterReplaces(t *testing.T) {
	r := NewRegistry()

	custom := &Recipe{Slug: DefaultSlug, Build: buildNotFound}
	r.Register(custom)

	got, ok := r.Resolve(DefaultSlug)
	if !ok || got != custom {
		t.Error("Register should replace an existing slug")
	}
}

func TestBuiltinsProduceScenes(t *testing.T) {
	r := NewRegistry()
	props := Props{Text: "hello", Now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}

	for _, slug := range r.Slugs() {
		recipe, _ := r.Resolve(slug)

		w, h := 800, 480
		if recipe.DoubleSizeForSharperText {
			w, h = 1600, 960
		}

		sc, err := recipe.Build(props, w, h)
		if err != nil {
			t.Errorf("build %q: %v", slug, err)
			continue
		}
		if sc == nil {
			t.Errorf("build %q returned nil scene", slug)
			continue
		}
		if sc.Width != w || sc.Height != h {
			t.Errorf("build %q scene = %dx%d, want %dx%d", slug, sc.Width, sc.Height, w, h)
		}
		if len(sc.Ops) == 0 {
			t.Errorf("build %q produced an empty scene", slug)
		}
	}
}

func TestBuiltinsDeterministic(t *testing.T) {
	r := NewRegistry()
	props := Props{Text: "same", Now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}

	for _, slug := range r.Slugs() {
		recipe, _ := r.Resolve(slug)

		a, err := recipe.Build(props, 400, 300)
		if err != nil {
			t.Fatalf("build %q: %v", slug, err)
		}
		b, err := recipe.Build(props, 400, 300)
		if err != nil {
			t.Fatalf("build %q: %v", slug, err)
		}
		if len(a.Ops) != len(b.Ops) {
			t.Errorf("recipe %q not deterministic: %d vs %d ops", slug, len(a.Ops), len(b.Ops))
		}
	}
}
