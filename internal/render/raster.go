package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/eink-server/eink-display-server/pkg/scene"
)

var (
	regularFont *truetype.Font
	boldFont    *truetype.Font
)

func init() {
	var err error
	regularFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("parse goregular: %v", err))
	}
	boldFont, err = truetype.Parse(gobold.TTF)
	if err != nil {
		panic(fmt.Sprintf("parse gobold: %v", err))
	}
}

// Rasterize draws a scene into an RGBA image. Drawing is fully
// deterministic: identical scenes produce pixel-identical images.
func Rasterize(s *scene.Scene) (*image.RGBA, error) {
	if s == nil || s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("invalid scene dimensions")
	}

	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))

	bg := s.Background
	if bg == nil {
		bg = scene.White
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for _, op := range s.Ops {
		switch v := op.(type) {
		case scene.Rect:
			drawRect(img, v)
		case scene.Line:
			drawLine(img, v)
		case scene.Circle:
			drawCircle(img, v)
		case scene.Text:
			if err := drawText(img, v); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unknown scene op %T", op)
		}
	}

	return img, nil
}

func drawRect(img *image.RGBA, r scene.Rect) {
	rect := image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H).Intersect(img.Bounds())
	draw.Draw(img, rect, image.NewUniform(r.Color), image.Point{}, draw.Over)
}

func drawLine(img *image.RGBA, l scene.Line) {
	thickness := l.Thickness
	if thickness < 1 {
		thickness = 1
	}

	// Bresenham walk, stamping a thickness-sized square at each step.
	dx := abs(l.X2 - l.X1)
	dy := -abs(l.Y2 - l.Y1)
	sx, sy := 1, 1
	if l.X1 > l.X2 {
		sx = -1
	}
	if l.Y1 > l.Y2 {
		sy = -1
	}

	x, y := l.X1, l.Y1
	errAcc := dx + dy
	half := thickness / 2
	for {
		stamp := image.Rect(x-half, y-half, x-half+thickness, y-half+thickness).
			Intersect(img.Bounds())
		draw.Draw(img, stamp, image.NewUniform(l.Color), image.Point{}, draw.Over)

		if x == l.X2 && y == l.Y2 {
			break
		}
		e2 := 2 * errAcc
		if e2 >= dy {
			errAcc += dy
			x += sx
		}
		if e2 <= dx {
			errAcc += dx
			y += sy
		}
	}
}

func drawCircle(img *image.RGBA, c scene.Circle) {
	if c.R <= 0 {
		return
	}
	rr := c.R * c.R
	for dy := -c.R; dy <= c.R; dy++ {
		for dx := -c.R; dx <= c.R; dx++ {
			if dx*dx+dy*dy > rr {
				continue
			}
			p := image.Pt(c.CX+dx, c.CY+dy)
			if p.In(img.Bounds()) {
				setOver(img, p, c.Color)
			}
		}
	}
}

func drawText(img *image.RGBA, t scene.Text) error {
	if t.Value == "" {
		return nil
	}

	size := t.Size
	if size <= 0 {
		size = 16
	}

	ttf := regularFont
	if t.Bold {
		ttf = boldFont
	}

	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(t.Color),
		Face: face,
	}

	x := t.X
	switch t.Align {
	case scene.AlignCenter:
		x -= drawer.MeasureString(t.Value).Round() / 2
	case scene.AlignRight:
		x -= drawer.MeasureString(t.Value).Round()
	}

	drawer.Dot = fixed.P(x, t.Y)
	drawer.DrawString(t.Value)
	return nil
}

func setOver(img *image.RGBA, p image.Point, c color.Color) {
	draw.Draw(img, image.Rect(p.X, p.Y, p.X+1, p.Y+1),
		image.NewUniform(c), image.Point{}, draw.Over)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
