package tomo

// Combine derives the shared channel cell from co-indexed primary and
// verification cells. It is a pure function. When either input is
// inactive the result is an inactive zeroed cell: that is the defined
// "no consensus at this slot" state, not an error.
//
// On success the derived value, entropy and risk are arithmetic means and
// the polarity is the mean truncated toward zero, so the reference
// +1 / -1 pairing always yields neutral.
func Combine(primary, verification Cell) Cell {
	if !primary.Active || !verification.Active {
		return Cell{Channel: Derived}
	}
	return Cell{
		Value:    (primary.Value + verification.Value) / 2,
		Active:   true,
		Channel:  Derived,
		Polarity: Polarity((int(primary.Polarity) + int(verification.Polarity)) / 2),
		Entropy:  (primary.Entropy + verification.Entropy) / 2,
		Risk:     primary.Risk.Mean(verification.Risk),
	}
}
