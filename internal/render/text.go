package render

import (
	"image"
	"image/color"
	"image/draw"

	"constellation/internal/catalog"
	"constellation/pkg/colorutil"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelFace is the face used for chart annotations.
var LabelFace font.Face = basicfont.Face7x13

// LineHeight is the vertical advance between label lines in pixels.
const LineHeight = 16

// DrawLabel draws s with its baseline-left corner at (x, y).
func DrawLabel(dst draw.Image, s string, x, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: LabelFace,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// LabelWidth returns the advance width of s in pixels.
func LabelWidth(s string) int {
	return font.MeasureString(LabelFace, s).Ceil()
}

// DrawTitle writes a title line and an optional subtitle in the top-left
// corner of dst.
func DrawTitle(dst draw.Image, title, subtitle string) {
	b := dst.Bounds()
	x := b.Min.X + 12
	y := b.Min.Y + 12 + LabelFace.Metrics().Ascent.Ceil()
	DrawLabel(dst, title, x, y, colorutil.Star)
	if subtitle != "" {
		DrawLabel(dst, subtitle, x, y+LineHeight, colorutil.Grid)
	}
}

// DrawLegend lists the dataset's groups in the bottom-left corner with a
// colored swatch each. The highlighted group is drawn in the highlight
// color. At most maxRows groups are listed.
func (r *Renderer) DrawLegend(dst *image.RGBA, ds *catalog.Dataset, highlight string, maxRows int) {
	if ds == nil || len(ds.Data) == 0 || maxRows <= 0 {
		return
	}
	rows := min(len(ds.Data), maxRows)
	b := dst.Bounds()
	x := b.Min.X + 12
	y := b.Max.Y - 12 - (rows-1)*LineHeight
	for i := 0; i < rows; i++ {
		g := &ds.Data[i]
		swatch := image.Rect(x, y-9, x+9, y)
		draw.Draw(dst, swatch, image.NewUniform(colorutil.ParseCSSOr(g.Color, r.StarColor)), image.Point{}, draw.Src)

		name := g.Name
		if name == "" {
			name = g.ID
		}
		col := color.Color(colorutil.Grid)
		if g.ID == highlight {
			col = r.HighlightColor
		}
		DrawLabel(dst, name, x+16, y, col)
		y += LineHeight
	}
}
