package leaderboardservice

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	leaderboarddomain "github.com/focus-guild/pomo-bot/app/modules/leaderboard/domain"
)

// ChartPalette holds the colors used by standings charts.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	TextColor  drawing.Color
}

// DefaultPalette matches the dark theme of the community client.
var DefaultPalette = ChartPalette{
	Background: drawing.Color{R: 0x2B, G: 0x2D, B: 0x31, A: 0xFF},
	Bar:        drawing.Color{R: 0xE5, G: 0x53, B: 0x3C, A: 0xFF},
	TextColor:  drawing.Color{R: 0xDB, G: 0xDE, B: 0xE1, A: 0xFF},
}

// chartMaxBars keeps the image readable; the text ranking carries the
// full list.
const chartMaxBars = 10

// GenerateStandingsChart produces a PNG bar chart of scored totals for
// the top entries of a ranking.
func GenerateStandingsChart(title string, entries []leaderboarddomain.Entry, palette ChartPalette) ([]byte, error) {
	if len(entries) == 0 {
		return renderNoDataPlaceholder(palette)
	}
	if len(entries) > chartMaxBars {
		entries = entries[:chartMaxBars]
	}

	values := make([]chart.Value, len(entries))
	for i, entry := range entries {
		values[i] = chart.Value{
			Label: fmt.Sprintf("#%d (%d pts)", i+1, entry.Scored()),
			Value: float64(entry.Scored()),
			Style: chart.Style{
				FillColor:   palette.Bar,
				StrokeColor: palette.Bar,
			},
		}
	}

	graph := chart.BarChart{
		Title:  title,
		Width:  800,
		Height: 400,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		TitleStyle: chart.Style{
			FontColor: palette.TextColor,
		},
		XAxis: chart.Style{
			FontColor: palette.TextColor,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
		},
		BarWidth: 40,
		Bars:     values,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No scored messages yet"
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{Style: chart.Hidden()},
		YAxis: chart.YAxis{Style: chart.Hidden()},
		// The renderer needs at least one series; this one blends into
		// the background.
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 0},
				Style: chart.Style{
					StrokeColor: palette.Background,
				},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(palette.TextColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
