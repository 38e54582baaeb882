package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/eink-server/eink-display-server/internal/imaging"
	"github.com/eink-server/eink-display-server/internal/recipes"
)

const imageCacheControl = "public, max-age=900"

// imageDims parses width/height query parameters. Absent, invalid or
// non-positive values fall back to the configured defaults.
func (s *RESTServer) imageDims(r *http.Request) (int, int) {
	width := s.config.Display.DefaultWidth
	height := s.config.Display.DefaultHeight

	if v, err := strconv.Atoi(r.URL.Query().Get("width")); err == nil && v > 0 {
		width = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("height")); err == nil && v > 0 {
		height = v
	}

	return width, height
}

// grayscaleLevels parses the grayscale query parameter, restricted to
// {2, 4, 16} with 2 as the default.
func grayscaleLevels(r *http.Request) int {
	switch r.URL.Query().Get("grayscale") {
	case "4":
		return 4
	case "16":
		return 16
	}
	return 2
}

// HandlePNG serves a recipe as full-color PNG at the requested
// dimensions. Unknown slugs silently substitute the default recipe; the
// response is only an error when even the fallback cannot render.
func (s *RESTServer) HandlePNG(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSuffix(chi.URLParam(r, "slug"), ".png")
	width, height := s.imageDims(r)

	log.Info().Str("slug", slug).Int("width", width).Int("height", height).
		Msg("Color PNG request")

	buf, err := s.engine.RenderPNG(r.Context(), slug, width, height)
	if err != nil || len(buf) == 0 {
		log.Error().Err(err).Str("slug", slug).Msg("Failed to generate PNG")
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Error generating image"))
		return
	}

	s.writeImage(w, buf, "image/png")
}

// HandleBitmap is the monochrome counterpart of HandlePNG: the rendered
// raster is quantized to the panel's gray levels and served as BMP.
func (s *RESTServer) HandleBitmap(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSuffix(chi.URLParam(r, "slug"), ".bmp")
	width, height := s.imageDims(r)

	s.serveBitmap(w, r, slug, width, height)
}

// mixupHour resolves the hour-of-day driving the mixup rotation. The
// display endpoint passes the device timezone in the tz query parameter;
// without one (or with an unknown zone) the hour is resolved in UTC so
// rotation never depends on the server's local clock.
func mixupHour(r *http.Request, now time.Time) int {
	loc := time.UTC
	if tz := r.URL.Query().Get("tz"); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	return now.In(loc).Hour()
}

// HandleMixupBitmap resolves a mixup id to one of its screens and serves
// that screen through the bitmap pipeline. A format=png query switches to
// color PNG output for color panels.
func (s *RESTServer) HandleMixupBitmap(w http.ResponseWriter, r *http.Request) {
	idParam := strings.TrimSuffix(chi.URLParam(r, "id"), ".bmp")
	width, height := s.imageDims(r)

	slug := recipes.NotFoundSlug
	if s.store != nil {
		if id, err := uuid.Parse(idParam); err == nil {
			if mixup, err := s.store.GetMixup(r.Context(), id); err == nil {
				if picked := mixup.ScreenAt(mixupHour(r, time.Now())); picked != "" {
					slug = picked
				}
			} else {
				log.Warn().Err(err).Str("mixup_id", idParam).Msg("Mixup lookup failed")
			}
		}
	}

	s.serveBitmap(w, r, slug, width, height)
}

func (s *RESTServer) serveBitmap(w http.ResponseWriter, r *http.Request, slug string, width, height int) {
	levels := grayscaleLevels(r)
	wantPNG := r.URL.Query().Get("format") == "png"

	log.Info().Str("slug", slug).Int("width", width).Int("height", height).
		Int("grayscale", levels).Bool("png", wantPNG).
		Msg("Bitmap request")

	buf, err := s.engine.RenderPNG(r.Context(), slug, width, height)
	if err != nil || len(buf) == 0 {
		log.Error().Err(err).Str("slug", slug).Msg("Failed to render bitmap source")
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Error generating image"))
		return
	}

	profile := imaging.Profile{Color: wantPNG, Grayscale: levels}
	out, err := imaging.Normalize(buf, width, height, profile)
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("Failed to normalize bitmap")
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Error generating image"))
		return
	}

	contentType := "image/bmp"
	if wantPNG {
		contentType = "image/png"
	}
	s.writeImage(w, out, contentType)
}

func (s *RESTServer) writeImage(w http.ResponseWriter, buf []byte, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.Header().Set("Cache-Control", imageCacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf); err != nil {
		log.Warn().Err(err).Msg("Failed to write image response")
	}
}
