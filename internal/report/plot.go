package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pplcc/plotext"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/quantscope/macdscan/internal/analysis"
)

type plotStack struct {
	plots   []*plot.Plot
	heights []float64
	w       int
	h       int
}

func newPlotStack(w, h int) *plotStack {
	return &plotStack{w: w, h: h}
}

func (d *plotStack) add(p *plot.Plot, height float64) {
	d.plots = append(d.plots, p)
	d.heights = append(d.heights, height)
}

func (d *plotStack) save(path string) (err error) {
	// The stacked plots use different x units, so axis ranges stay per-plot.
	tbl := plotext.Table{
		RowHeights: d.heights,
		ColWidths:  []float64{1},
	}

	var plots2d [][]*plot.Plot
	for _, p := range d.plots {
		plots2d = append(plots2d, []*plot.Plot{p})
	}

	h := 0.0
	for _, v := range d.heights {
		h += v * float64(d.h)
	}

	img := vgimg.New(vg.Points(float64(d.w)), vg.Points(float64(h)))
	dc := draw.New(img)

	canvases := tbl.Align(plots2d, dc)
	for i, p := range d.plots {
		p.Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close plot file: %w", cerr))
		}
	}()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write plot to file: %w", err)
	}

	return nil
}

// SaveHistograms renders one png per interval type: interval day counts on
// top, price change below. Types without samples are skipped. Returns the
// written file paths.
func SaveHistograms(dir string, res *analysis.Result) ([]string, error) {
	var files []string

	for _, typ := range []analysis.IntervalType{analysis.GoldenToDeath, analysis.DeathToGolden} {
		var days, changes plotter.Values
		for _, iv := range res.Intervals {
			if iv.Type != typ {
				continue
			}
			days = append(days, float64(iv.Days))
			changes = append(changes, iv.PriceChangePct)
		}
		if len(days) == 0 {
			continue
		}

		stack := newPlotStack(800, 300)

		daysPlot := plot.New()
		daysPlot.Title.Text = fmt.Sprintf("%s interval days", typ)
		daysPlot.X.Label.Text = "days"
		daysPlot.Y.Label.Text = "count"
		daysHist, err := plotter.NewHist(days, 20)
		if err != nil {
			return nil, fmt.Errorf("failed to create days histogram: %w", err)
		}
		daysPlot.Add(daysHist)
		stack.add(daysPlot, 1)

		changePlot := plot.New()
		changePlot.Title.Text = fmt.Sprintf("%s price change", typ)
		changePlot.X.Label.Text = "price change (%)"
		changePlot.Y.Label.Text = "count"
		changeHist, err := plotter.NewHist(changes, 20)
		if err != nil {
			return nil, fmt.Errorf("failed to create price change histogram: %w", err)
		}
		changePlot.Add(changeHist)
		stack.add(changePlot, 1)

		path := filepath.Join(dir, fmt.Sprintf("intervals_%s.png", typ))
		if err := stack.save(path); err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	return files, nil
}
