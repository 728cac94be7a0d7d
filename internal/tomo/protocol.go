package tomo

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/tomograph/internal/monitoring"
)

// ErrPacketOverflow reports that a cycle produced more bytes than the
// packet capacity allows. This is a capacity error: the caller should
// retry with a larger capacity.
var ErrPacketOverflow = errors.New("tomo: packet byte buffer overflow")

// DefaultPacketCapacity bounds the byte payload of one protocol cycle.
const DefaultPacketCapacity = 256

// DefaultRiskThreshold is the attack-risk cutoff for the balance verdict.
const DefaultRiskThreshold = 0.1

// Packet is the transient byte payload of one protocol cycle. It is a
// value object: produced, inspected and discarded within the cycle that
// created it, never persisted as-is.
type Packet struct {
	Bytes   []byte  `json:"bytes"`
	Entropy float64 `json:"entropy"` // arithmetic mean of the bytes; 0 when empty
}

// Len returns the byte count of the packet.
func (p Packet) Len() int { return len(p.Bytes) }

// Verdict is the risk-balance outcome of one protocol cycle.
type Verdict struct {
	Balanced      bool             `json:"balanced"`
	Risk          GovernanceVector `json:"risk"`
	ActivePrimary int              `json:"active_primary"`
}

// Engine runs protocol cycles against a grid. It holds only policy
// constants; all state lives in the grid and the navigator.
type Engine struct {
	RiskThreshold  float64
	PacketCapacity int
}

// NewEngine returns an Engine with the reference policy constants.
func NewEngine() *Engine {
	return &Engine{
		RiskThreshold:  DefaultRiskThreshold,
		PacketCapacity: DefaultPacketCapacity,
	}
}

// quantize maps a wave-domain cell value onto a packet byte.
func quantize(v float64) byte {
	return byte(int(math.Abs(v)*127) % 256)
}

// RunCycle samples the grid at the six permutations of idx, assembles a
// packet from the active primary and verification cells at those slots,
// and aggregates a governance verdict over every active primary cell in
// the grid. An empty packet is a valid outcome, not an error; the only
// failure mode is packet overflow.
func (e *Engine) RunCycle(g *Grid, idx Index) (Packet, Verdict, error) {
	capacity := e.PacketCapacity
	if capacity <= 0 {
		capacity = DefaultPacketCapacity
	}

	var packet Packet
	for _, perm := range idx.Permutations() {
		slot := Linear(perm[0], perm[1], perm[2], g.Capacity())

		for _, ch := range []Channel{Primary, Verification} {
			cell, ok := g.Cell(ch, slot)
			if !ok || !cell.Active {
				continue
			}
			if len(packet.Bytes) >= capacity {
				return Packet{}, Verdict{}, ErrPacketOverflow
			}
			packet.Bytes = append(packet.Bytes, quantize(cell.Value))
		}
	}

	if len(packet.Bytes) > 0 {
		vals := make([]float64, len(packet.Bytes))
		for i, b := range packet.Bytes {
			vals[i] = float64(b)
		}
		packet.Entropy = stat.Mean(vals, nil)
	}

	verdict := e.aggregate(g)

	monitoring.Logf("protocol cycle: index=(%d,%d,%d) packet_len=%d entropy=%.3f balanced=%v attack=%.3f",
		idx.I, idx.J, idx.K, packet.Len(), packet.Entropy, verdict.Balanced, verdict.Risk.AttackRisk)

	return packet, verdict, nil
}

// aggregate computes the mean governance vector over all active primary
// cells in the whole grid, not just the sampled permutations.
func (e *Engine) aggregate(g *Grid) Verdict {
	lane := g.Lane(Primary)

	var attack, rollback, stability []float64
	for _, cell := range lane {
		if !cell.Active {
			continue
		}
		attack = append(attack, cell.Risk.AttackRisk)
		rollback = append(rollback, cell.Risk.RollbackCost)
		stability = append(stability, cell.Risk.StabilityImpact)
	}

	verdict := Verdict{ActivePrimary: len(attack)}
	if len(attack) > 0 {
		verdict.Risk = GovernanceVector{
			AttackRisk:      stat.Mean(attack, nil),
			RollbackCost:    stat.Mean(rollback, nil),
			StabilityImpact: stat.Mean(stability, nil),
		}
	}

	threshold := e.RiskThreshold
	if threshold == 0 {
		threshold = DefaultRiskThreshold
	}
	verdict.Balanced = verdict.Risk.AttackRisk < threshold
	return verdict
}
