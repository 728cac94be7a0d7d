package tomo

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/banshee-data/tomograph/internal/monitoring"
)

// GridParams configures grid construction. Zero fields fall back to the
// reference values via withDefaults.
type GridParams struct {
	Size         int     // coordinate range N; logical capacity is N^3
	SparseFactor int     // 1/SparseFactor of the logical slots are active
	Harmonics    int     // odd harmonic count for wave synthesis
	Tracer       Tracer  // derivative trace model
	Seed         int64   // RNG seed for entropy and risk baselines
	EntropyFloor float64 // base entropy before value contribution
}

func (p GridParams) withDefaults() GridParams {
	if p.Size <= 0 {
		p.Size = 10
	}
	if p.SparseFactor <= 0 {
		p.SparseFactor = 4
	}
	if p.Harmonics <= 0 {
		p.Harmonics = 9
	}
	if p.Tracer.Coeffs == ([4]float64{}) {
		p.Tracer = NewTracer()
	}
	if p.Seed == 0 {
		p.Seed = 1
	}
	if p.EntropyFloor == 0 {
		p.EntropyFloor = 0.5
	}
	return p
}

// RefreshSummary reports the outcome of one refresh cycle.
type RefreshSummary struct {
	Cycle        int              `json:"cycle"`
	ActiveCounts [NumChannels]int `json:"active_counts"`
	MeanEntropy  float64          `json:"mean_entropy"`
	Terminated   []TerminatedCell `json:"terminated,omitempty"`
}

// TerminatedCell identifies a cell whose derivative trace terminated
// during a refresh.
type TerminatedCell struct {
	Slot    int     `json:"slot"`
	Channel Channel `json:"channel"`
}

// Grid owns the four channel lanes of the sparse index space. It is the
// sole owner of all cell data. Mutation (refresh) is single-writer;
// readers may take snapshots concurrently once a cycle has returned.
type Grid struct {
	params   GridParams
	capacity int // active slots per lane = Size^3 / SparseFactor

	mu    sync.RWMutex
	lanes [NumChannels][]Cell
	slots []Index // originating coordinate triple per active slot
	rng   *rand.Rand
}

// NewGrid builds and populates a sparse grid. Every coordinate triple
// with (i+j+k) % SparseFactor == 0 activates the primary, verification
// and transit lanes at the next slot, up to the capacity bound; the
// derived lane is computed from primary and verification. The RNG is
// owned by the grid so runs are reproducible from the seed alone.
func NewGrid(params GridParams) *Grid {
	p := params.withDefaults()
	capacity := p.Size * p.Size * p.Size / p.SparseFactor

	g := &Grid{
		params:   p,
		capacity: capacity,
		rng:      rand.New(rand.NewSource(p.Seed)),
		slots:    make([]Index, 0, capacity),
	}
	for ch := range g.lanes {
		g.lanes[ch] = make([]Cell, capacity)
	}
	g.populate()
	return g
}

func (g *Grid) populate() {
	p := g.params
	slot := 0
	for i := 0; i < p.Size && slot < g.capacity; i++ {
		for j := 0; j < p.Size && slot < g.capacity; j++ {
			for k := 0; k < p.Size && slot < g.capacity; k++ {
				if (i+j+k)%p.SparseFactor != 0 {
					continue
				}

				x := float64(i + j + k)
				// Shared risk baseline across the three source lanes.
				risk := GovernanceVector{
					AttackRisk:      g.rng.Float64() * 0.1,
					RollbackCost:    g.rng.Float64() * 0.05,
					StabilityImpact: g.rng.Float64() * 0.2,
				}

				g.lanes[Primary][slot] = Cell{
					Value:    SquareWave(x, p.Harmonics),
					Active:   true,
					Channel:  Primary,
					Polarity: PolarityPositive,
					Entropy:  p.EntropyFloor + g.rng.Float64()*0.5,
					Risk:     risk,
				}
				g.lanes[Verification][slot] = Cell{
					Value:    SquareWave(x+0.5, p.Harmonics),
					Active:   true,
					Channel:  Verification,
					Polarity: PolarityNegative,
					Entropy:  p.EntropyFloor + g.rng.Float64()*0.5,
					Risk:     risk,
				}
				g.lanes[Transit][slot] = Cell{
					Value:    SquareWave(x+1.0, p.Harmonics),
					Active:   true,
					Channel:  Transit,
					Polarity: PolarityNeutral,
					Entropy:  p.EntropyFloor + g.rng.Float64()*0.5,
					Risk:     risk,
				}
				g.lanes[Derived][slot] = Combine(g.lanes[Primary][slot], g.lanes[Verification][slot])

				// Seed derivative traces for all four lanes.
				t := x * 0.1
				for ch := range g.lanes {
					g.lanes[ch][slot].Deriv = p.Tracer.At(g.lanes[ch][slot].Value, t)
				}

				g.slots = append(g.slots, NewIndex(i, j, k))
				slot++
			}
		}
	}

	monitoring.Logf("grid initialised: size=%d capacity=%d active=%d (1/%d sparse)",
		p.Size, p.Size*p.Size*p.Size, slot, p.SparseFactor)
}

// Capacity returns the number of materialised slots per lane.
func (g *Grid) Capacity() int { return g.capacity }

// Size returns the coordinate range N.
func (g *Grid) Size() int { return g.params.Size }

// Cell returns a copy of the cell at the given lane and slot.
func (g *Grid) Cell(ch Channel, slot int) (Cell, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if ch < 0 || int(ch) >= NumChannels || slot < 0 || slot >= g.capacity {
		return Cell{}, false
	}
	return g.lanes[ch][slot], true
}

// Lane returns a copy of an entire channel lane.
func (g *Grid) Lane(ch Channel) []Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Cell, g.capacity)
	copy(out, g.lanes[ch])
	return out
}

// ActiveCounts returns the per-lane active cell counts.
func (g *Grid) ActiveCounts() [NumChannels]int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.activeCountsLocked()
}

func (g *Grid) activeCountsLocked() [NumChannels]int {
	var counts [NumChannels]int
	for ch := range g.lanes {
		for slot := range g.lanes[ch] {
			if g.lanes[ch][slot].Active {
				counts[ch]++
			}
		}
	}
	return counts
}

// Refresh recomputes values, traces and entropy for every active cell in
// a fixed deterministic slot order. Activity flags never change across
// refreshes. The scan mutates a working copy and commits it in one step,
// so a refresh either fully completes or leaves the grid untouched.
func (g *Grid) Refresh(cycle int) RefreshSummary {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.params
	harmonics := p.Harmonics + cycle%5

	var work [NumChannels][]Cell
	for ch := range g.lanes {
		work[ch] = make([]Cell, g.capacity)
		copy(work[ch], g.lanes[ch])
	}

	summary := RefreshSummary{Cycle: cycle}
	var entropySum float64
	var entropyN int

	for slot := 0; slot < g.capacity; slot++ {
		phase := float64(cycle)*0.1 + float64(slot)*0.01
		for ch := range work {
			cell := &work[ch][slot]
			if !cell.Active {
				continue
			}
			summary.ActiveCounts[ch]++

			wasTerminated := cell.Deriv.Terminated
			cell.Value = SquareWave(phase, harmonics)
			cell.Deriv = p.Tracer.At(cell.Value, phase)

			noise := g.rng.Float64()*0.1 - 0.05
			cell.Entropy = p.EntropyFloor + math.Abs(cell.Value)*0.3 + noise

			entropySum += cell.Entropy
			entropyN++

			if cell.Deriv.Terminated && !wasTerminated {
				summary.Terminated = append(summary.Terminated, TerminatedCell{Slot: slot, Channel: Channel(ch)})
				monitoring.Debugf("derivative chain terminated: channel=%s slot=%d", Channel(ch), slot)
			}
		}
	}

	if entropyN > 0 {
		summary.MeanEntropy = entropySum / float64(entropyN)
	}

	// Commit the completed scan.
	g.lanes = work

	monitoring.Logf("refresh cycle=%d active=[%d %d %d %d] mean_entropy=%.3f terminated=%d",
		cycle, summary.ActiveCounts[Primary], summary.ActiveCounts[Verification],
		summary.ActiveCounts[Transit], summary.ActiveCounts[Derived],
		summary.MeanEntropy, len(summary.Terminated))

	return summary
}

// CheckInvariants verifies the sparsity and derived-channel invariants.
// It is cheap enough to run after every refresh.
func (g *Grid) CheckInvariants() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	p := g.params

	// Sparsity: active primary count equals the number of triples with
	// (i+j+k) % SparseFactor == 0, capped by capacity.
	expected := 0
	for i := 0; i < p.Size; i++ {
		for j := 0; j < p.Size; j++ {
			for k := 0; k < p.Size; k++ {
				if (i+j+k)%p.SparseFactor == 0 {
					expected++
				}
			}
		}
	}
	if expected > g.capacity {
		expected = g.capacity
	}
	counts := g.activeCountsLocked()
	if counts[Primary] != expected {
		return fmt.Errorf("sparsity invariant violated: %d active primary cells, want %d", counts[Primary], expected)
	}

	// Derived lane: active iff primary and verification both active, and
	// value is their exact mean.
	const valueEps = 1e-9
	for slot := 0; slot < g.capacity; slot++ {
		pr := g.lanes[Primary][slot]
		ve := g.lanes[Verification][slot]
		de := g.lanes[Derived][slot]

		wantActive := pr.Active && ve.Active
		if de.Active != wantActive {
			return fmt.Errorf("derived invariant violated at slot %d: active=%v, want %v", slot, de.Active, wantActive)
		}
		if de.Active {
			want := (pr.Value + ve.Value) / 2
			if math.Abs(de.Value-want) > valueEps {
				return fmt.Errorf("derived invariant violated at slot %d: value=%g, want %g", slot, de.Value, want)
			}
		}
	}

	return nil
}

// SlotIndex returns the originating coordinate triple of an active slot.
func (g *Grid) SlotIndex(slot int) (Index, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if slot < 0 || slot >= len(g.slots) {
		return Index{}, false
	}
	return g.slots[slot], true
}
