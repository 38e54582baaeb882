package api

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eink-server/eink-display-server/internal/models"
	"golang.org/x/image/bmp"
)

func getImage(t *testing.T, s *RESTServer, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHandlePNG(t *testing.T) {
	s := testServer(t, &fakeStore{})

	rec := getImage(t, s, "/api/png/color-dashboard.png?width=400&height=300")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=900" {
		t.Errorf("Cache-Control = %q", cc)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("body is not PNG: %v", err)
	}
	if cfg.Width != 400 || cfg.Height != 300 {
		t.Errorf("image = %dx%d, want 400x300", cfg.Width, cfg.Height)
	}
}

func TestHandlePNGDefaultDimensions(t *testing.T) {
	s := testServer(t, &fakeStore{})

	rec := getImage(t, s, "/api/png/color-dashboard.png?width=abc")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 480 {
		t.Errorf("image = %dx%d, want configured defaults 800x480", cfg.Width, cfg.Height)
	}
}

func TestHandlePNGUnknownSlugStillRenders(t *testing.T) {
	s := testServer(t, &fakeStore{})

	rec := getImage(t, s, "/api/png/nonexistent-screen.png?width=200&height=100")
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown slug should substitute, status = %d", rec.Code)
	}
	if _, err := png.DecodeConfig(bytes.NewReader(rec.Body.Bytes())); err != nil {
		t.Fatalf("body is not PNG: %v", err)
	}
}

func TestHandleBitmap(t *testing.T) {
	s := testServer(t, &fakeStore{})

	rec := getImage(t, s, "/api/bitmap/daily-quote.bmp?width=250&height=122&grayscale=4")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/bmp" {
		t.Errorf("Content-Type = %q", ct)
	}

	img, err := bmp.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("body is not BMP: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 250 || b.Dy() != 122 {
		t.Errorf("image = %dx%d, want 250x122", b.Dx(), b.Dy())
	}
}

func TestHandleBitmapPNGFormat(t *testing.T) {
	s := testServer(t, &fakeStore{})

	rec := getImage(t, s, "/api/bitmap/daily-quote.bmp?width=200&height=100&format=png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if _, err := png.DecodeConfig(bytes.NewReader(rec.Body.Bytes())); err != nil {
		t.Fatalf("body is not PNG: %v", err)
	}
}

func TestHandleMixupBitmap(t *testing.T) {
	mixup := &models.Mixup{
		Name:    "rotation",
		Screens: models.StringList{"daily-quote", "world-clock"},
	}
	mixup.ID = uuid.New()

	s := testServer(t, &fakeStore{mixup: mixup})

	rec := getImage(t, s, "/api/bitmap/mixup/"+mixup.ID.String()+".bmp?width=250&height=122")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if _, err := bmp.Decode(bytes.NewReader(rec.Body.Bytes())); err != nil {
		t.Fatalf("body is not BMP: %v", err)
	}
}

func TestMixupHour(t *testing.T) {
	// 10:00 UTC on a date without DST transitions.
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		url  string
		want int
	}{
		{"no timezone defaults to UTC", "/api/bitmap/mixup/x.bmp", 10},
		{"explicit UTC", "/api/bitmap/mixup/x.bmp?tz=UTC", 10},
		{"device timezone ahead of UTC", "/api/bitmap/mixup/x.bmp?tz=Asia/Tokyo", 19},
		{"device timezone behind UTC", "/api/bitmap/mixup/x.bmp?tz=America/New_York", 5},
		{"unknown timezone falls back to UTC", "/api/bitmap/mixup/x.bmp?tz=Mars/Olympus", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if got := mixupHour(req, now); got != tt.want {
				t.Errorf("mixupHour = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHandleMixupBitmapUnknownID(t *testing.T) {
	s := testServer(t, &fakeStore{})

	// Unknown mixups still produce a renderable fallback image.
	rec := getImage(t, s, "/api/bitmap/mixup/"+uuid.NewString()+".bmp?width=250&height=122")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if _, err := bmp.Decode(bytes.NewReader(rec.Body.Bytes())); err != nil {
		t.Fatalf("body is not BMP: %v", err)
	}
}
