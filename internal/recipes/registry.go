// Package recipes maps recipe slugs to scene-producing functions.
// Recipes are pure: for a given (props, width, height) they return a scene
// description, never touching the network or the store.
package recipes

import (
	"sync"
	"time"

	"github.com/eink-server/eink-display-server/pkg/scene"
)

// Slugs with special roles in the rendering pipeline.
const (
	DefaultSlug  = "simple-text"
	NotFoundSlug = "not-found"
)

// Props carries recipe parameters. The clock is injected so recipes stay
// deterministic under test.
type Props struct {
	Title string
	Text  string
	Now   time.Time
}

// BuildFunc produces a scene for the requested pixel dimensions.
type BuildFunc func(props Props, width, height int) (*scene.Scene, error)

// Recipe is a registered visual layout.
type Recipe struct {
	Slug string

	// DoubleSizeForSharperText makes the renderer rasterize at twice the
	// requested dimensions and downscale afterwards.
	DoubleSizeForSharperText bool

	Build BuildFunc
}

// Registry resolves recipe slugs. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	recipes map[string]*Recipe
}

// NewRegistry creates a registry pre-populated with the built-in recipes.
func NewRegistry() *Registry {
	r := &Registry{recipes: make(map[string]*Recipe)}
	registerBuiltins(r)
	return r
}

// Register adds or replaces a recipe.
func (r *Registry) Register(recipe *Recipe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recipes[recipe.Slug] = recipe
}

// Resolve looks up a recipe by slug.
func (r *Registry) Resolve(slug string) (*Recipe, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	recipe, ok := r.recipes[slug]
	return recipe, ok
}

// Slugs returns the registered slugs. Order is unspecified.
func (r *Registry) Slugs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slugs := make([]string, 0, len(r.recipes))
	for slug := range r.recipes {
		slugs = append(slugs, slug)
	}
	return slugs
}
