// Package qaplot draws quality-assurance images of enumerated exposures:
// slit edges, object traces and the reference-row position of every record.
package qaplot

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/specid/internal/specobj"
)

var (
	edgeColor   = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	maskedColor = color.RGBA{R: 180, G: 180, B: 180, A: 255}
)

// Options controls the figure.
type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length

	// Labels adds the encoded name next to each record's marker.
	Labels bool
	Format specobj.DetectorFormat
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		Title:  "Slit edges and object traces",
		Width:  10 * vg.Inch,
		Height: 8 * vg.Inch,
		Labels: true,
	}
}

// Build draws exp and its enumeration results. Spatial pixels run along X
// and spectral rows along Y.
func Build(exp *specobj.Exposure, results []specobj.SlitResult, opts Options) (*plot.Plot, error) {
	if exp == nil {
		return nil, fmt.Errorf("nil exposure")
	}
	_, nslits, err := exp.Edges.Dims()
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Spatial pixel"
	p.Y.Label.Text = "Spectral row"

	for sl := 0; sl < nslits; sl++ {
		c := color.Color(edgeColor)
		if sl < len(exp.MaskSlits) && exp.MaskSlits[sl] {
			c = maskedColor
		}
		for side, edge := range []*mat.Dense{exp.Edges.Left, exp.Edges.Right} {
			line, err := plotter.NewLine(columnXYs(edge, sl))
			if err != nil {
				return nil, fmt.Errorf("slit %d edge: %w", sl, err)
			}
			line.Color = c
			line.Width = vg.Points(1)
			if side == 1 {
				line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			}
			p.Add(line)
			if sl == 0 {
				p.Legend.Add([]string{"left edge", "right edge"}[side], line)
			}
		}
	}

	records := specobj.Records(results)
	colors := generateColors(len(records))
	var refPts plotter.XYs
	var names []string
	for i, rec := range records {
		if len(rec.TraceSpat) > 0 && len(rec.TraceSpat) == len(rec.TraceSpec) {
			pts := make(plotter.XYs, len(rec.TraceSpat))
			for j := range pts {
				pts[j] = plotter.XY{X: rec.TraceSpat[j], Y: rec.TraceSpec[j]}
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return nil, fmt.Errorf("record %d trace: %w", i, err)
			}
			line.Color = colors[i]
			line.Width = vg.Points(1.5)
			p.Add(line)
		}
		refPts = append(refPts, plotter.XY{X: RefPixel(rec), Y: rec.SlitSpecPos})
		name, err := rec.Name(opts.Format)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	if len(refPts) > 0 {
		sc, err := plotter.NewScatter(refPts)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Shape = draw.CrossGlyph{}
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add("reference position", sc)

		if opts.Labels {
			labels, err := plotter.NewLabels(plotter.XYLabels{XYs: refPts, Labels: names})
			if err != nil {
				return nil, err
			}
			p.Add(labels)
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// Save builds the figure and writes it to path. The extension selects the
// image format (.png, .svg, .pdf).
func Save(path string, exp *specobj.Exposure, results []specobj.SlitResult, opts Options) error {
	if opts.Width == 0 || opts.Height == 0 {
		def := DefaultOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}
	p, err := Build(exp, results, opts)
	if err != nil {
		return err
	}
	if err := p.Save(opts.Width, opts.Height, filepath.Clean(path)); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}

// RefPixel is the spatial pixel of rec's object at its reference row.
func RefPixel(rec *specobj.SpecObj) float64 {
	nspat := float64(rec.Shape.NSpat)
	width := nspat * (rec.SlitSpatPos.Right - rec.SlitSpatPos.Left)
	return nspat*rec.SlitSpatPos.Left + width*rec.SpatFracPos
}

func columnXYs(m *mat.Dense, col int) plotter.XYs {
	rows, _ := m.Dims()
	pts := make(plotter.XYs, rows)
	for r := 0; r < rows; r++ {
		pts[r] = plotter.XY{X: m.At(r, col), Y: float64(r)}
	}
	return pts
}

// generateColors spreads n colours evenly around the hue circle.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		r, g, b := hslToRGB(float64(i)/float64(n), 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	conv := func(v float64) uint8 { return uint8(math.Round(v * 255)) }
	return conv(hueToRGB(p, q, h+1.0/3)), conv(hueToRGB(p, q, h)), conv(hueToRGB(p, q, h-1.0/3))
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}
