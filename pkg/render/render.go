// Package render draws the four-panel field figure: |zeta(s)|, the
// inverse-square potential (log10), the collapse penalty, and the total
// landscape (log10), each with the critical line overlaid and zero
// candidates marked.
package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"qzft/pkg/field"
)

// Options control figure geometry.
type Options struct {
	// Width and Height of the whole 2x2 figure; zero means 10x9 inches.
	Width  vg.Length
	Height vg.Length
}

// WritePNG renders the figure as PNG to w.
func WritePNG(w io.Writer, g *field.Grid, mag *mat.Dense, df *field.DerivedFields, zeros []field.ZeroCandidate, opts Options) error {
	width := opts.Width
	if width <= 0 {
		width = 10 * vg.Inch
	}
	height := opts.Height
	if height <= 0 {
		height = 9 * vg.Inch
	}

	panels := []struct {
		title string
		data  *mat.Dense
		log   bool
	}{
		{"|zeta(s)|", mag, false},
		{"potential V = |zeta(s)|^-2 (log10)", df.Potential, true},
		{"collapse penalty C(s)", df.Collapse, false},
		{"total potential V + C (log10)", df.Total, true},
	}

	plots := make([][]*plot.Plot, 2)
	for r := range plots {
		plots[r] = make([]*plot.Plot, 2)
		for c := range plots[r] {
			pn := panels[r*2+c]
			p, err := panelPlot(g, pn.data, pn.log, pn.title, zeros)
			if err != nil {
				return fmt.Errorf("render: panel %q: %w", pn.title, err)
			}
			plots[r][c] = p
		}
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 2, Cols: 2,
		PadX: vg.Millimeter * 4, PadY: vg.Millimeter * 4,
		PadTop: vg.Millimeter * 2, PadBottom: vg.Millimeter * 2,
		PadLeft: vg.Millimeter * 2, PadRight: vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			plots[r][c].Draw(canvases[r][c])
		}
	}

	png := vgimg.PngCanvas{Canvas: img}
	_, err := png.WriteTo(w)
	return err
}

func panelPlot(g *field.Grid, data *mat.Dense, logScale bool, title string, zeros []field.ZeroCandidate) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Re(s) sigma"
	p.Y.Label.Text = "Im(s) t"

	hg := &heatGrid{g: g, z: data, log: logScale}
	hm := plotter.NewHeatMap(hg, palette.Heat(16, 1))
	if hm.Min == hm.Max {
		// uniform field (e.g. alpha=0 collapse panel); widen the range so
		// the color lookup stays in bounds
		hm.Max = hm.Min + 1e-12
	}
	p.Add(hm)

	if g.ReVals[0] <= 0.5 && g.ReVals[len(g.ReVals)-1] >= 0.5 {
		line, err := plotter.NewLine(plotter.XYs{
			{X: 0.5, Y: g.ImVals[0]},
			{X: 0.5, Y: g.ImVals[len(g.ImVals)-1]},
		})
		if err != nil {
			return nil, err
		}
		line.LineStyle = draw.LineStyle{
			Color:  color.White,
			Width:  vg.Points(1),
			Dashes: []vg.Length{vg.Points(4), vg.Points(3)},
		}
		p.Add(line)
		p.Legend.Add("critical line", line)
		p.Legend.Top = true
	}

	if len(zeros) > 0 {
		xys := make(plotter.XYs, len(zeros))
		for i, z := range zeros {
			xys[i] = plotter.XY{X: z.Sigma, Y: z.T}
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle = draw.GlyphStyle{
			Color:  color.RGBA{R: 220, A: 255},
			Radius: vg.Points(2.5),
			Shape:  draw.CircleGlyph{},
		}
		p.Add(sc)
	}

	return p, nil
}

// heatGrid adapts a lattice plus one field matrix to plotter.GridXYZ,
// optionally in log10 with the value floored to keep the transform finite.
type heatGrid struct {
	g   *field.Grid
	z   *mat.Dense
	log bool
}

func (h *heatGrid) Dims() (c, r int) {
	rows, cols := h.z.Dims()
	return cols, rows
}

func (h *heatGrid) Z(c, r int) float64 {
	v := h.z.At(r, c)
	if h.log {
		return math.Log10(math.Max(v, field.MagnitudeFloor))
	}
	return v
}

func (h *heatGrid) X(c int) float64 { return h.g.ReVals[c] }

func (h *heatGrid) Y(r int) float64 { return h.g.ImVals[r] }
