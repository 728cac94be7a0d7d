package tomo

import "fmt"

// AuxInstruction is the coarse service lifecycle signal of a context.
type AuxInstruction uint8

const (
	AuxNoSignal AuxInstruction = 0x00 // half-start, no signal yet
	AuxSignal   AuxInstruction = 0x01 // signal present
	AuxStart    AuxInstruction = 0x02 // full start
	AuxStop     AuxInstruction = 0x03 // terminated with context intact
)

// NoiseLevel marks the entropy regime a context runs under.
type NoiseLevel uint8

const (
	NoiseLow  NoiseLevel = 0 // deterministic
	NoiseHigh NoiseLevel = 1 // high entropy
)

// schemaMaxLen bounds the rendered schema string. Oversized
// operation/service names are a configuration error.
const schemaMaxLen = 256

// Context carries the service identity and channel configuration of one
// engine consumer. The active-channel list is configuration, not data:
// the structural consensus check below only inspects this list and is
// strictly weaker than the grid's data-level derived invariant.
type Context struct {
	operation string
	service   string

	active   [3]Channel
	polarity map[Channel]Polarity

	aux    AuxInstruction
	noise  NoiseLevel
	closed bool
}

// NewContext creates a context for the given operation and service
// names. Empty names are a configuration error.
func NewContext(operation, service string) (*Context, error) {
	if operation == "" || service == "" {
		return nil, StatusNullInput.Err()
	}
	return &Context{
		operation: operation,
		service:   service,
		active:    [3]Channel{Primary, Verification, Transit},
		polarity: map[Channel]Polarity{
			Primary:      PolarityPositive,
			Verification: PolarityNegative,
			Transit:      PolarityNeutral,
			Derived:      PolarityNeutral,
		},
	}, nil
}

// Close releases the context. Further operations report a null-context
// status.
func (c *Context) Close() {
	c.closed = true
}

// Schema renders the service schema string
// "tomograph.<operation>.<service>". Rendering fails with an invalid
// status when the result would exceed the fixed buffer bound.
func (c *Context) Schema() (string, error) {
	if c == nil || c.closed {
		return "", StatusNullContext.Err()
	}
	s := fmt.Sprintf("tomograph.%s.%s", c.operation, c.service)
	if len(s) >= schemaMaxLen {
		return "", StatusInvalid.Err()
	}
	return s, nil
}

// Operation returns the context's operation name.
func (c *Context) Operation() string { return c.operation }

// Service returns the context's service name.
func (c *Context) Service() string { return c.service }

// Aux returns the current aux instruction.
func (c *Context) Aux() AuxInstruction { return c.aux }

// Noise returns the current noise level.
func (c *Context) Noise() NoiseLevel { return c.noise }

// AuxStartSignal moves the context to the full-start state under the
// given noise level.
func (c *Context) AuxStartSignal(noise NoiseLevel) Status {
	if c == nil || c.closed {
		return StatusNullContext
	}
	c.aux = AuxStart
	c.noise = noise
	return StatusSuccess
}

// AuxStopSignal terminates the aux sequence.
func (c *Context) AuxStopSignal() Status {
	if c == nil || c.closed {
		return StatusNullContext
	}
	c.aux = AuxStop
	return StatusSuccess
}

// SetActiveChannels replaces the 3-slot active-channel list.
func (c *Context) SetActiveChannels(a, b, d Channel) {
	c.active = [3]Channel{a, b, d}
}

// RGBConsensus reports whether a primary-tagged and a verification-tagged
// channel are both designated active in the context's 3-slot list. This
// is a structural configuration check only: it says nothing about the
// cell data at any slot, and it is weaker than Grid.CheckInvariants,
// which verifies the derived lane against actual cell activity.
func (c *Context) RGBConsensus() bool {
	if c == nil || c.closed {
		return false
	}
	var hasPrimary, hasVerification bool
	for _, ch := range c.active {
		switch ch {
		case Primary:
			hasPrimary = true
		case Verification:
			hasVerification = true
		}
	}
	return hasPrimary && hasVerification
}
