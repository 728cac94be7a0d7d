// Command wave-plot renders a PNG of the Fourier square-wave synthesis
// at increasing harmonic counts, to eyeball convergence and the Gibbs
// overshoot.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/tomograph/internal/tomo"
)

func main() {
	var (
		out       = flag.String("out", "wave.png", "output PNG path")
		points    = flag.Int("points", 1000, "sample points over one period")
		harmonics = flag.String("harmonics", "1,3,9,31", "comma-separated odd harmonic counts")
	)
	flag.Parse()

	var counts []int
	for _, part := range strings.Split(*harmonics, ",") {
		part = strings.TrimSpace(part)
		h, err := strconv.Atoi(part)
		if err != nil || h < 1 || h%2 == 0 {
			log.Fatalf("invalid harmonic count %q (must be odd and >= 1)", part)
		}
		counts = append(counts, h)
	}

	p := plot.New()
	p.Title.Text = "Fourier Square Wave Synthesis"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "wave(x, H)"

	xs := make([]float64, *points)
	for i := range xs {
		xs[i] = 2 * math.Pi * float64(i) / float64(*points)
	}

	for _, h := range counts {
		ys := tomo.SquareWaveSeries(xs, h)
		pts := make(plotter.XYs, len(xs))
		for i := range xs {
			pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			log.Fatalf("build line for H=%d: %v", h, err)
		}
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("H=%d", h), line)
	}

	if err := p.Save(10*vg.Inch, 5*vg.Inch, *out); err != nil {
		log.Fatalf("save plot: %v", err)
	}
	log.Printf("wrote %s (%d harmonic series)", *out, len(counts))
}
