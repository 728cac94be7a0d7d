package monitor

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/tomograph/internal/httputil"
	"github.com/banshee-data/tomograph/internal/tomo"
)

// handleWaveChart renders a quick HTML line chart of the square-wave
// synthesis using go-echarts. This is a debugging-only endpoint (no auth)
// to visually check harmonic convergence without any UI build.
//
// Query params:
//   - harmonics (optional; default 9, must be odd)
//   - points (optional; default 400, capped at 5000)
func (ws *WebServer) handleWaveChart(w http.ResponseWriter, r *http.Request) {
	harmonics := 9
	if h := r.URL.Query().Get("harmonics"); h != "" {
		if v, err := strconv.Atoi(h); err == nil && v >= 1 && v%2 == 1 {
			harmonics = v
		}
	}

	points := 400
	if p := r.URL.Query().Get("points"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 10 && v <= 5000 {
			points = v
		}
	}

	xs := make([]float64, points)
	labels := make([]string, points)
	for i := range xs {
		xs[i] = 2 * math.Pi * float64(i) / float64(points)
		labels[i] = fmt.Sprintf("%.2f", xs[i])
	}
	ys := tomo.SquareWaveSeries(xs, harmonics)

	data := make([]opts.LineData, len(ys))
	for i, y := range ys {
		data[i] = opts.LineData{Value: y}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Square Wave Synthesis", Theme: "dark", Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Fourier Square Wave", Subtitle: fmt.Sprintf("harmonics=%d points=%d bound=±4/π", harmonics, points)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: -1.4, Max: 1.4}),
	)
	line.SetXAxis(labels).AddSeries("wave", data)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(w); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render chart: %v", err))
	}
}

// handleGridChart renders an HTML scatter of the primary lane: slot index
// against cell value, sized by entropy. Debugging-only endpoint.
//
// Query params:
//   - channel (optional; primary, verification, transit, derived)
func (ws *WebServer) handleGridChart(w http.ResponseWriter, r *http.Request) {
	channel := tomo.Primary
	switch r.URL.Query().Get("channel") {
	case "", "primary":
	case "verification":
		channel = tomo.Verification
	case "transit":
		channel = tomo.Transit
	case "derived":
		channel = tomo.Derived
	default:
		httputil.BadRequest(w, "unknown channel")
		return
	}

	ws.mu.Lock()
	lane := ws.grid.Lane(channel)
	ws.mu.Unlock()

	data := make([]opts.ScatterData, 0, len(lane))
	labels := make([]string, 0, len(lane))
	for slot, cell := range lane {
		if !cell.Active {
			continue
		}
		labels = append(labels, strconv.Itoa(slot))
		data = append(data, opts.ScatterData{Value: []interface{}{slot, cell.Value, cell.Entropy}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Channel Lane", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Channel %s", channel), Subtitle: fmt.Sprintf("active=%d of %d slots", len(data), len(lane))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1.5, // entropy ceiling: floor + |wave|*0.3 + noise
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#31688e", "#35b779", "#fde725"}},
		}),
	)
	scatter.SetXAxis(labels).AddSeries("cells", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := scatter.Render(w); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render chart: %v", err))
	}
}
