// Package render turns recipe slugs into PNG buffers at device dimensions.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/eink-server/eink-display-server/internal/config"
	"github.com/eink-server/eink-display-server/internal/recipes"
)

// Engine renders recipes and memoizes the resulting buffers. Concurrent
// requests for the same (slug, width, height) are collapsed to a single
// render via singleflight; completed buffers live in a bounded in-process
// LRU and, when configured, a shared Redis cache.
type Engine struct {
	registry *recipes.Registry
	cache    *lru.Cache[string, []byte]
	group    singleflight.Group
	redis    *redis.Client
	cacheTTL time.Duration
	timeout  time.Duration
}

// NewEngine creates a render engine. redisClient may be nil, in which case
// only the in-process cache is used.
func NewEngine(registry *recipes.Registry, cfg *config.RenderConfig, redisClient *redis.Client) (*Engine, error) {
	cache, err := lru.New[string, []byte](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create render cache: %w", err)
	}

	return &Engine{
		registry: registry,
		cache:    cache,
		redis:    redisClient,
		cacheTTL: cfg.CacheTTL,
		timeout:  cfg.Timeout,
	}, nil
}

// RenderPNG renders a recipe to a PNG buffer at the exact requested
// dimensions. Unknown slugs substitute the default recipe; a failing
// recipe substitutes the not-found screen at the same dimensions. Only
// when the fallback itself fails is an error returned.
func (e *Engine) RenderPNG(ctx context.Context, slug string, width, height int) ([]byte, error) {
	effective := slug
	if _, ok := e.registry.Resolve(slug); !ok {
		log.Debug().Str("slug", slug).Msg("Unknown recipe slug, substituting default")
		effective = recipes.DefaultSlug
	}

	key := fmt.Sprintf("%s|%dx%d|png", effective, width, height)

	if buf, ok := e.cache.Get(key); ok {
		return buf, nil
	}

	v, err, _ := e.group.Do(key, func() (interface{}, error) {
		// Detached context: a render shared by several requests must not
		// die with the first one that disconnects.
		rctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()

		if e.redis != nil {
			if data, err := e.redis.Get(rctx, "render:"+key).Bytes(); err == nil && len(data) > 0 {
				e.cache.Add(key, data)
				return data, nil
			}
		}

		buf, err := e.renderRecipe(rctx, effective, slug, width, height)
		if err != nil {
			log.Warn().Err(err).Str("slug", effective).Msg("Recipe render failed, using fallback")
			buf, err = e.renderRecipe(rctx, recipes.NotFoundSlug, slug, width, height)
			if err != nil {
				return nil, fmt.Errorf("render fallback: %w", err)
			}
		}

		e.cache.Add(key, buf)
		if e.redis != nil {
			if err := e.redis.Set(rctx, "render:"+key, buf, e.cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("Failed to store render in redis")
			}
		}

		return buf, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]byte), nil
}

// Precache renders a recipe ahead of the device's own fetch so the image
// is already memoized when the device asks for it.
func (e *Engine) Precache(slug string, width, height int) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("Panic in precache")
			}
		}()

		if _, err := e.RenderPNG(context.Background(), slug, width, height); err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("Precache render failed")
		}
	}()
}

func (e *Engine) renderRecipe(ctx context.Context, slug, requestedSlug string, width, height int) ([]byte, error) {
	recipe, ok := e.registry.Resolve(slug)
	if !ok {
		return nil, fmt.Errorf("recipe %q not registered", slug)
	}

	renderW, renderH := width, height
	if recipe.DoubleSizeForSharperText {
		renderW, renderH = 2*width, 2*height
	}

	props := recipes.Props{Text: requestedSlug, Now: time.Now()}
	sc, err := recipe.Build(props, renderW, renderH)
	if err != nil {
		return nil, fmt.Errorf("build scene %q: %w", slug, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := Rasterize(sc)
	if err != nil {
		return nil, fmt.Errorf("rasterize %q: %w", slug, err)
	}

	var final image.Image = img
	if renderW != width || renderH != height {
		final = resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, final); err != nil {
		return nil, fmt.Errorf("encode png %q: %w", slug, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("empty png buffer for %q", slug)
	}

	return buf.Bytes(), nil
}
