package tomo

import (
	"errors"
	"testing"
)

func TestRunCyclePacket(t *testing.T) {
	g := newTestGrid()
	e := NewEngine()

	packet, verdict, err := e.RunCycle(g, NewIndex(1, 2, 3))
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	// Six permutations, two channels each, every byte from an active cell.
	if packet.Len() == 0 || packet.Len() > 12 {
		t.Errorf("packet length = %d, want 1..12", packet.Len())
	}

	var sum float64
	for _, b := range packet.Bytes {
		sum += float64(b)
	}
	if want := sum / float64(packet.Len()); packet.Entropy != want {
		t.Errorf("packet entropy = %g, want %g", packet.Entropy, want)
	}

	if verdict.ActivePrimary != 249 {
		t.Errorf("verdict active primary = %d, want 249", verdict.ActivePrimary)
	}
	// Population draws attack risk uniformly below 0.1, so the mean sits
	// well under the default threshold.
	if !verdict.Balanced {
		t.Errorf("verdict not balanced: risk=%+v", verdict.Risk)
	}
	if verdict.Risk.AttackRisk <= 0 || verdict.Risk.AttackRisk >= 0.1 {
		t.Errorf("mean attack risk = %g, want (0, 0.1)", verdict.Risk.AttackRisk)
	}
}

func TestRunCyclePacketBytes(t *testing.T) {
	g := newTestGrid()
	e := NewEngine()

	packet, _, err := e.RunCycle(g, NewIndex(0, 0, 4))
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	// Reproduce the sampling by hand: permutation slots via the decimal
	// packing, bytes from active primary then verification cells.
	var want []byte
	for _, perm := range NewIndex(0, 0, 4).Permutations() {
		slot := Linear(perm[0], perm[1], perm[2], g.Capacity())
		for _, ch := range []Channel{Primary, Verification} {
			cell, ok := g.Cell(ch, slot)
			if ok && cell.Active {
				want = append(want, quantize(cell.Value))
			}
		}
	}
	if len(packet.Bytes) != len(want) {
		t.Fatalf("packet length = %d, want %d", len(packet.Bytes), len(want))
	}
	for i := range want {
		if packet.Bytes[i] != want[i] {
			t.Errorf("byte %d = %d, want %d", i, packet.Bytes[i], want[i])
		}
	}
}

func TestRunCycleOverflow(t *testing.T) {
	g := newTestGrid()
	e := &Engine{RiskThreshold: DefaultRiskThreshold, PacketCapacity: 2}

	_, _, err := e.RunCycle(g, NewIndex(1, 2, 3))
	if !errors.Is(err, ErrPacketOverflow) {
		t.Fatalf("err = %v, want ErrPacketOverflow", err)
	}
}

func TestRunCycleEmptyPacket(t *testing.T) {
	// Size 2, factor 4 activates only (0,0,0), leaving slot 1 of the
	// 2-slot lane empty. Index (1,1,1) maps every permutation to
	// 111 % 2 = 1, so the cycle samples nothing.
	g := NewGrid(GridParams{Size: 2, SparseFactor: 4, Seed: 1})

	e := NewEngine()
	packet, verdict, err := e.RunCycle(g, NewIndex(1, 1, 1))
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if packet.Len() != 0 {
		t.Errorf("packet length = %d, want 0", packet.Len())
	}
	if packet.Entropy != 0 {
		t.Errorf("empty packet entropy = %g, want 0", packet.Entropy)
	}
	if verdict.ActivePrimary != 1 {
		t.Errorf("active primary = %d, want 1", verdict.ActivePrimary)
	}
}

func TestVerdictThreshold(t *testing.T) {
	g := newTestGrid()
	strict := &Engine{RiskThreshold: 1e-9, PacketCapacity: DefaultPacketCapacity}
	_, verdict, err := strict.RunCycle(g, NewIndex(0, 0, 0))
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if verdict.Balanced {
		t.Error("near-zero threshold should fail the balance verdict")
	}
}

func TestQuantize(t *testing.T) {
	twoPointFive := 2.5
	cases := []struct {
		v    float64
		want byte
	}{
		{0, 0},
		{1, 127},
		{-1, 127}, // magnitude only
		{0.5, 63},
		{2.5, byte(int(twoPointFive*127) % 256)},
	}
	for _, c := range cases {
		if got := quantize(c.v); got != c.want {
			t.Errorf("quantize(%g) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestEngineZeroValuePolicy(t *testing.T) {
	g := newTestGrid()
	e := &Engine{} // zero policy falls back to defaults
	_, verdict, err := e.RunCycle(g, NewIndex(1, 2, 3))
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if !verdict.Balanced {
		t.Error("zero-value engine should apply the default threshold")
	}
}
