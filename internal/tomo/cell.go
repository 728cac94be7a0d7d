package tomo

// Channel tags one of the four parallel data lanes over the index space.
type Channel int

const (
	Primary      Channel = 0 // incoming data
	Verification Channel = 1 // verification data
	Transit      Channel = 2 // moving away
	Derived      Channel = 3 // primary + verification (1/2 shared)

	// NumChannels is the lane count of the grid.
	NumChannels = 4
)

func (c Channel) String() string {
	switch c {
	case Primary:
		return "primary"
	case Verification:
		return "verification"
	case Transit:
		return "transit"
	case Derived:
		return "derived"
	}
	return "unknown"
}

// Polarity marks the dimensional duality of a channel.
type Polarity int8

const (
	PolarityPositive Polarity = 1
	PolarityNeutral  Polarity = 0
	PolarityNegative Polarity = -1
)

// GovernanceVector is a 3-component risk summary carried per cell and
// aggregated per protocol cycle. Components are non-negative; the design
// range is [0, 1) but the bound is policy, not a type limit.
type GovernanceVector struct {
	AttackRisk      float64 `json:"attack_risk"`
	RollbackCost    float64 `json:"rollback_cost"`
	StabilityImpact float64 `json:"stability_impact"`
}

// Mean returns the component-wise mean of v and other.
func (v GovernanceVector) Mean(other GovernanceVector) GovernanceVector {
	return GovernanceVector{
		AttackRisk:      (v.AttackRisk + other.AttackRisk) / 2,
		RollbackCost:    (v.RollbackCost + other.RollbackCost) / 2,
		StabilityImpact: (v.StabilityImpact + other.StabilityImpact) / 2,
	}
}

// Cell is one grid slot on one channel lane.
type Cell struct {
	Value    float64
	Active   bool
	Channel  Channel
	Polarity Polarity
	Entropy  float64
	Risk     GovernanceVector
	Deriv    Trace
}
