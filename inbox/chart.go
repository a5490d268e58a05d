package inbox

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/theimaginaryfoundation/inbox-stats/inbox/fileutils"
)

const (
	XAxisLabel = "Chats"
	YAxisLabel = "Total messages"
)

// ChartOptions controls chart layout. Zero values pick defaults.
type ChartOptions struct {
	// Width defaults to 8in, growing by BarSpacing per bar once there are many threads.
	Width  vg.Length
	Height vg.Length

	// BarWidth is the drawn width of each bar (defaults to 12pt).
	BarWidth vg.Length

	// BarSpacing is the horizontal room reserved per bar when sizing Width (defaults to 0.3in).
	BarSpacing vg.Length

	// MaxLabelRunes truncates long thread titles on the x axis (0 keeps them whole).
	MaxLabelRunes int
}

func (o ChartOptions) withDefaults(bars int) ChartOptions {
	if o.BarWidth <= 0 {
		o.BarWidth = vg.Points(12)
	}
	if o.BarSpacing <= 0 {
		o.BarSpacing = 0.3 * vg.Inch
	}
	if o.Width <= 0 {
		o.Width = 8 * vg.Inch
		if need := vg.Length(bars) * o.BarSpacing; need > o.Width {
			o.Width = need
		}
	}
	if o.Height <= 0 {
		o.Height = 6 * vg.Inch
	}
	return o
}

// RenderChart draws one bar per thread, height = total messages, labelled by title, and returns
// the SVG document. Bars are ordered by title so the same counts always render the same chart.
func RenderChart(counts CollatedCounts, opts ChartOptions) ([]byte, error) {
	titles := counts.Titles()
	opts = opts.withDefaults(len(titles))

	p := plot.New()
	p.X.Label.Text = XAxisLabel
	p.Y.Label.Text = YAxisLabel
	p.Y.Min = 0

	if len(titles) > 0 {
		values, labels := barSeries(counts, titles, opts.MaxLabelRunes)
		bars, err := plotter.NewBarChart(values, opts.BarWidth)
		if err != nil {
			return nil, fmt.Errorf("RenderChart: build bars: %w", err)
		}
		bars.Color = plotutil.Color(0)
		bars.LineStyle.Width = 0
		p.Add(bars)

		p.NominalX(labels...)
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = text.XRight
		p.X.Tick.Label.YAlign = text.YCenter
	}

	w, err := p.WriterTo(opts.Width, opts.Height, "svg")
	if err != nil {
		return nil, fmt.Errorf("RenderChart: render svg: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("RenderChart: encode svg: %w", err)
	}
	return buf.Bytes(), nil
}

// barSeries returns the bar heights (total messages) and x-axis labels for titles, in order.
func barSeries(counts CollatedCounts, titles []string, maxLabelRunes int) (plotter.Values, []string) {
	values := make(plotter.Values, len(titles))
	labels := make([]string, len(titles))
	for i, t := range titles {
		values[i] = float64(counts[t].Total())
		labels[i] = fileutils.Truncate(xmlSafe(t), maxLabelRunes)
	}
	return values, labels
}

// xmlSafe drops runes XML 1.0 cannot carry and flattens line breaks and tabs to spaces.
func xmlSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return ' '
		case r >= 0x20 && r <= 0xD7FF,
			r >= 0xE000 && r <= 0xFFFD,
			r >= 0x10000 && r <= 0x10FFFF:
			return r
		default:
			return -1
		}
	}, s)
}

// WriteChart renders counts and atomically replaces the file at path with the result.
func WriteChart(path string, counts CollatedCounts, opts ChartOptions) (int64, error) {
	svg, err := RenderChart(counts, opts)
	if err != nil {
		return 0, err
	}
	if err := fileutils.WriteFileAtomicSameDir(path, svg, 0o644); err != nil {
		return 0, fmt.Errorf("WriteChart: write %s: %w", path, err)
	}
	return int64(len(svg)), nil
}
