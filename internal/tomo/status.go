package tomo

import "fmt"

// Status is the return-code taxonomy surfaced to all bindings. Zero is
// success; negative values are failures. Structural non-results (empty
// packet, no consensus at a slot) are not statuses; they carry their own
// verdict payloads.
type Status int

const (
	StatusSuccess     Status = 0
	StatusNullContext Status = -1
	StatusNullInput   Status = -2
	StatusOutOfMemory Status = -3
	StatusInvalid     Status = -4
	StatusNoConsensus Status = -5
	StatusColorFail   Status = -6
	StatusBalanceFail Status = -7
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNullContext:
		return "null context"
	case StatusNullInput:
		return "null input"
	case StatusOutOfMemory:
		return "out of memory"
	case StatusInvalid:
		return "invalid"
	case StatusNoConsensus:
		return "no consensus"
	case StatusColorFail:
		return "colour verification failed"
	case StatusBalanceFail:
		return "balance verification failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Err returns nil for success and a descriptive error otherwise.
func (s Status) Err() error {
	if s == StatusSuccess {
		return nil
	}
	return fmt.Errorf("tomo: %s (code %d)", s, int(s))
}
