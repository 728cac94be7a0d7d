package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/tomograph/internal/tomo"
)

// WavePlotter records cell values over refresh cycles for visualisation.
// It samples the grid on each call to Sample(), accumulating per-slot
// time series that can be plotted as PNGs after a run.
type WavePlotter struct {
	mu        sync.Mutex
	enabled   bool
	outputDir string

	// Slot range to capture.
	slotMin int
	slotMax int

	// samples holds per-cell time series. Key = "<channel>_<slot>".
	samples  map[string][]WaveSample
	cycleIdx int
}

// WaveSample represents one snapshot of a cell's state.
type WaveSample struct {
	Cycle      int
	Value      float64
	Entropy    float64
	Terminated bool
}

// NewWavePlotter creates a plotter capturing the given slot range.
func NewWavePlotter(slotMin, slotMax int) *WavePlotter {
	return &WavePlotter{
		slotMin: slotMin,
		slotMax: slotMax,
		samples: make(map[string][]WaveSample),
	}
}

// Start initialises the plotter for a new run. outputDir should be a
// per-run directory.
func (wp *WavePlotter) Start(outputDir string) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	wp.outputDir = outputDir
	wp.enabled = true
	wp.cycleIdx = 0
	wp.samples = make(map[string][]WaveSample)
	return nil
}

// Stop disables sampling. Call GeneratePlots() to produce output files.
func (wp *WavePlotter) Stop() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	wp.enabled = false
}

// Sample captures the current grid state for all active cells in the
// configured slot range. Call once per refresh cycle.
func (wp *WavePlotter) Sample(g *tomo.Grid) {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.enabled || g == nil {
		return
	}
	wp.cycleIdx++

	for ch := tomo.Channel(0); ch < tomo.NumChannels; ch++ {
		lane := g.Lane(ch)
		for slot := wp.slotMin; slot <= wp.slotMax && slot < len(lane); slot++ {
			cell := lane[slot]
			if !cell.Active {
				continue
			}
			key := fmt.Sprintf("%s_%d", ch, slot)
			wp.samples[key] = append(wp.samples[key], WaveSample{
				Cycle:      wp.cycleIdx,
				Value:      cell.Value,
				Entropy:    cell.Entropy,
				Terminated: cell.Deriv.Terminated,
			})
		}
	}
}

// GeneratePlots creates one PNG per channel showing cell values over
// cycles. Returns the number of plots generated and any error.
func (wp *WavePlotter) GeneratePlots() (int, error) {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.outputDir == "" {
		return 0, fmt.Errorf("no output directory configured")
	}
	if len(wp.samples) == 0 {
		return 0, nil
	}

	// Group series by channel. Key format is "<channel>_<slot>".
	byChannel := make(map[string]map[string][]WaveSample)
	for key, samples := range wp.samples {
		channel := key
		if i := strings.LastIndex(key, "_"); i > 0 {
			channel = key[:i]
		}
		if byChannel[channel] == nil {
			byChannel[channel] = make(map[string][]WaveSample)
		}
		byChannel[channel][key] = samples
	}

	plotCount := 0
	for channel, series := range byChannel {
		if err := wp.generateChannelPlot(channel, series); err != nil {
			return plotCount, fmt.Errorf("channel %s: %w", channel, err)
		}
		plotCount++
	}
	return plotCount, nil
}

func (wp *WavePlotter) generateChannelPlot(channel string, series map[string][]WaveSample) error {
	if len(series) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Channel %s - Cell Values", channel)
	p.X.Label.Text = "Cycle"
	p.Y.Label.Text = "Value"

	var keys []string
	for key := range series {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		samples := series[key]
		pts := make(plotter.XYs, 0, len(samples))
		for _, s := range samples {
			pts = append(pts, plotter.XY{X: float64(s.Cycle), Y: s.Value})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("line for %s: %w", key, err)
		}
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(key, line)
	}

	file := filepath.Join(wp.outputDir, fmt.Sprintf("channel_%s_values.png", channel))
	if err := p.Save(14*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("save %s: %w", file, err)
	}
	return nil
}
