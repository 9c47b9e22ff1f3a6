package domain

import "math"

// Money accumulation runs on integer cents so that folding many
// float amounts never drifts. Conversion happens once at each edge.

// ToCents converts a float amount to cents, rounding half away from
// zero.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts cents back to a float amount.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}
