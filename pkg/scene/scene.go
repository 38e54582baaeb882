// Package scene defines the renderable scene description produced by
// recipes. A scene is a flat, ordered list of drawing operations at fixed
// pixel coordinates; rasterization happens elsewhere.
package scene

import "image/color"

// Common palette entries used by the built-in recipes.
var (
	Black = color.RGBA{A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red   = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	Blue  = color.RGBA{R: 30, G: 60, B: 180, A: 255}
	Gray  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// Align controls horizontal text anchoring relative to the X coordinate.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Scene is a sized canvas with an ordered list of drawing operations.
// Operations are applied in declaration order on top of the background.
type Scene struct {
	Width      int
	Height     int
	Background color.Color
	Ops        []Op
}

// Op is a single drawing operation.
type Op interface {
	op()
}

// Rect fills an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H int
	Color      color.Color
}

// Line draws a straight line segment with the given stroke thickness.
type Line struct {
	X1, Y1, X2, Y2 int
	Thickness      int
	Color          color.Color
}

// Circle fills a disc centered at (CX, CY).
type Circle struct {
	CX, CY, R int
	Color     color.Color
}

// Text draws a single line of text. Y is the baseline position.
type Text struct {
	X, Y  int
	Value string
	Size  float64
	Bold  bool
	Align Align
	Color color.Color
}

func (Rect) op()   {}
func (Line) op()   {}
func (Circle) op() {}
func (Text) op()   {}

// New returns an empty scene with a white background.
func New(width, height int) *Scene {
	return &Scene{Width: width, Height: height, Background: White}
}

// Add appends operations to the scene and returns it for chaining.
func (s *Scene) Add(ops ...Op) *Scene {
	s.Ops = append(s.Ops, ops...)
	return s
}
