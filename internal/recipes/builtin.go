package recipes

import (
	"fmt"
	"time"

	"github.com/eink-server/eink-display-server/pkg/scene"
)

func registerBuiltins(r *Registry) {
	r.Register(&Recipe{
		Slug:                     DefaultSlug,
		DoubleSizeForSharperText: true,
		Build:                    buildSimpleText,
	})
	r.Register(&Recipe{Slug: NotFoundSlug, Build: buildNotFound})
	r.Register(&Recipe{Slug: "color-dashboard", Build: buildColorDashboard})
	r.Register(&Recipe{Slug: "world-clock", Build: buildWorldClock})
	r.Register(&Recipe{Slug: "daily-quote", Build: buildDailyQuote})
}

func buildSimpleText(props Props, width, height int) (*scene.Scene, error) {
	title := props.Title
	if title == "" {
		title = "Hello"
	}
	text := props.Text
	if text == "" {
		text = "Nothing to display yet"
	}

	s := scene.New(width, height)
	s.Add(
		scene.Rect{X: 0, Y: 0, W: width, H: 8, Color: scene.Black},
		scene.Text{
			X: width / 2, Y: height/2 - 10, Value: title,
			Size: float64(height) / 8, Bold: true,
			Align: scene.AlignCenter, Color: scene.Black,
		},
		scene.Text{
			X: width / 2, Y: height/2 + 40, Value: text,
			Size: float64(height) / 16,
			Align: scene.AlignCenter, Color: scene.Gray,
		},
	)
	return s, nil
}

func buildNotFound(props Props, width, height int) (*scene.Scene, error) {
	slug := props.Text
	if slug == "" {
		slug = "unknown screen"
	}

	s := scene.New(width, height)
	s.Add(
		scene.Rect{X: 0, Y: 0, W: width, H: height, Color: scene.White},
		scene.Text{
			X: width / 2, Y: height / 2, Value: "Screen not found",
			Size: float64(height) / 8, Bold: true,
			Align: scene.AlignCenter, Color: scene.Black,
		},
		scene.Text{
			X: width / 2, Y: height/2 + 48, Value: slug,
			Size: float64(height) / 20,
			Align: scene.AlignCenter, Color: scene.Gray,
		},
		scene.Line{X1: width / 4, Y1: height/2 + 70, X2: 3 * width / 4, Y2: height/2 + 70, Thickness: 2, Color: scene.Black},
	)
	return s, nil
}

func buildColorDashboard(props Props, width, height int) (*scene.Scene, error) {
	now := props.Now
	if now.IsZero() {
		now = time.Now()
	}

	header := height / 6
	s := scene.New(width, height)
	s.Add(
		scene.Rect{X: 0, Y: 0, W: width, H: header, Color: scene.Blue},
		scene.Text{
			X: 16, Y: header/2 + 10, Value: now.Format("Monday, January 2"),
			Size: float64(header) / 2, Bold: true, Color: scene.White,
		},
		scene.Text{
			X: width - 16, Y: header/2 + 10, Value: now.Format("15:04"),
			Size: float64(header) / 2, Bold: true,
			Align: scene.AlignRight, Color: scene.White,
		},
	)

	// Three content cards below the header.
	cardW := (width - 4*16) / 3
	cardY := header + 24
	cardH := height - cardY - 24
	labels := []string{"Today", "This week", "Notes"}
	for i, label := range labels {
		x := 16 + i*(cardW+16)
		s.Add(
			scene.Rect{X: x, Y: cardY, W: cardW, H: cardH, Color: scene.White},
			scene.Rect{X: x, Y: cardY, W: cardW, H: 4, Color: scene.Red},
			scene.Text{
				X: x + cardW/2, Y: cardY + 40, Value: label,
				Size: float64(height) / 18, Bold: true,
				Align: scene.AlignCenter, Color: scene.Black,
			},
		)
	}

	return s, nil
}

var worldClockCities = []struct {
	name string
	zone string
}{
	{"New York", "America/New_York"},
	{"London", "Europe/London"},
	{"Tokyo", "Asia/Tokyo"},
	{"Sydney", "Australia/Sydney"},
}

func buildWorldClock(props Props, width, height int) (*scene.Scene, error) {
	now := props.Now
	if now.IsZero() {
		now = time.Now()
	}

	s := scene.New(width, height)
	rowH := height / len(worldClockCities)

	for i, city := range worldClockCities {
		loc, err := time.LoadLocation(city.zone)
		if err != nil {
			return nil, fmt.Errorf("load location %s: %w", city.zone, err)
		}
		local := now.In(loc)

		y := i * rowH
		if i > 0 {
			s.Add(scene.Line{X1: 16, Y1: y, X2: width - 16, Y2: y, Thickness: 1, Color: scene.Gray})
		}
		s.Add(
			scene.Text{
				X: 24, Y: y + rowH/2 + 12, Value: city.name,
				Size: float64(rowH) / 3, Bold: true, Color: scene.Black,
			},
			scene.Text{
				X: width - 24, Y: y + rowH/2 + 12, Value: local.Format("15:04"),
				Size: float64(rowH) / 2,
				Align: scene.AlignRight, Color: scene.Blue,
			},
		)
	}

	return s, nil
}

var dailyQuotes = []string{
	"Simplicity is the ultimate sophistication.",
	"Well begun is half done.",
	"The best way out is always through.",
	"What we think, we become.",
	"Make it work, make it right, make it fast.",
	"Less, but better.",
	"Stay hungry, stay foolish.",
}

func buildDailyQuote(props Props, width, height int) (*scene.Scene, error) {
	now := props.Now
	if now.IsZero() {
		now = time.Now()
	}

	quote := dailyQuotes[now.YearDay()%len(dailyQuotes)]

	s := scene.New(width, height)
	s.Add(
		scene.Circle{CX: width / 2, CY: height / 5, R: height / 24, Color: scene.Red},
		scene.Text{
			X: width / 2, Y: height / 2, Value: quote,
			Size: float64(height) / 14, Bold: true,
			Align: scene.AlignCenter, Color: scene.Black,
		},
		scene.Text{
			X: width / 2, Y: height - height/8, Value: now.Format("January 2, 2006"),
			Size: float64(height) / 24,
			Align: scene.AlignCenter, Color: scene.Gray,
		},
	)
	return s, nil
}
