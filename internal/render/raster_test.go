package render

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/eink-server/eink-display-server/pkg/scene"
)

func TestRasterizeDimensions(t *testing.T) {
	sc := scene.New(320, 240)

	img, err := Rasterize(sc)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("image = %dx%d, want 320x240", b.Dx(), b.Dy())
	}

	// Empty scene is all background.
	if got := img.At(5, 5); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("background pixel = %v, want white", got)
	}
}

func TestRasterizeInvalidScene(t *testing.T) {
	if _, err := Rasterize(nil); err == nil {
		t.Error("nil scene should fail")
	}
	if _, err := Rasterize(&scene.Scene{Width: 0, Height: 100}); err == nil {
		t.Error("zero width should fail")
	}
	if _, err := Rasterize(&scene.Scene{Width: 100, Height: -1}); err == nil {
		t.Error("negative height should fail")
	}
}

func TestRasterizeRect(t *testing.T) {
	sc := scene.New(100, 100)
	sc.Add(scene.Rect{X: 10, Y: 10, W: 20, H: 20, Color: scene.Black})

	img, err := Rasterize(sc)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}

	if got := img.RGBAAt(15, 15); got != scene.Black {
		t.Errorf("inside rect = %v, want black", got)
	}
	if got := img.RGBAAt(50, 50); got != scene.White {
		t.Errorf("outside rect = %v, want white", got)
	}
}

func TestRasterizeOpsLayerInOrder(t *testing.T) {
	sc := scene.New(50, 50)
	sc.Add(
		scene.Rect{X: 0, Y: 0, W: 50, H: 50, Color: scene.Black},
		scene.Rect{X: 0, Y: 0, W: 50, H: 50, Color: scene.Red},
	)

	img, err := Rasterize(sc)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if got := img.RGBAAt(25, 25); got != scene.Red {
		t.Errorf("later op should win, got %v", got)
	}
}

func TestRasterizeText(t *testing.T) {
	sc := scene.New(300, 100)
	sc.Add(scene.Text{X: 150, Y: 60, Value: "Hello", Size: 32, Bold: true, Align: scene.AlignCenter, Color: scene.Black})

	img, err := Rasterize(sc)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}

	// At least one pixel near the anchor should be inked.
	inked := false
	for y := 30; y < 70 && !inked; y++ {
		for x := 100; x < 200; x++ {
			if img.RGBAAt(x, y) != scene.White {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Error("text drew no pixels")
	}
}

func TestRasterizeDeterministic(t *testing.T) {
	sc := scene.New(200, 100)
	sc.Add(
		scene.Rect{X: 5, Y: 5, W: 50, H: 30, Color: scene.Blue},
		scene.Line{X1: 0, Y1: 99, X2: 199, Y2: 0, Thickness: 2, Color: scene.Gray},
		scene.Circle{CX: 100, CY: 50, R: 20, Color: scene.Red},
		scene.Text{X: 10, Y: 90, Value: "determinism", Size: 14, Color: scene.Black},
	)

	a, err := Rasterize(sc)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	b, err := Rasterize(sc)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("repeated rasterization differs")
	}
}
