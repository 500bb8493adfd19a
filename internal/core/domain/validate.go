package domain

import "fmt"

// CheckStopPercentage reports ErrInvalidArgument when p is outside [0, 100].
// Out-of-range thresholds are rejected, never clamped.
func CheckStopPercentage(p float64) error {
	if !(p >= 0 && p <= 100) {
		return fmt.Errorf("%w: stop percentage %v outside [0, 100]", ErrInvalidArgument, p)
	}
	return nil
}
