package geostat

import "fmt"

// Precondition validators. Each returns an error wrapping ErrInvalidParameter
// naming the offending argument, and has no side effects.

func validatePositive(v float64, name string) error {
	if !(v > 0) {
		return fmt.Errorf("%w: %q must be positive, got %v", ErrInvalidParameter, name, v)
	}
	return nil
}

func validateNonNegative(v float64, name string) error {
	if v < 0 {
		return fmt.Errorf("%w: %q must be non-negative, got %v", ErrInvalidParameter, name, v)
	}
	return nil
}

func validateRange(v, low, high float64, name string) error {
	if v < low || v > high {
		return fmt.Errorf("%w: %q must be in [%v, %v], got %v", ErrInvalidParameter, name, low, high, v)
	}
	return nil
}

func validateCount(n int, name string) error {
	if n < 1 {
		return fmt.Errorf("%w: %q must be at least 1, got %d", ErrInvalidParameter, name, n)
	}
	return nil
}

func validateSameLen(na int, nameA string, nb int, nameB string) error {
	if na != nb {
		return fmt.Errorf("%w: %q has %d elements but %q has %d", ErrInvalidParameter, nameA, na, nameB, nb)
	}
	return nil
}

func validateMinLen(n, min int, name string) error {
	if n < min {
		return fmt.Errorf("%w: %q must have at least %d element(s), got %d", ErrInvalidParameter, name, min, n)
	}
	return nil
}
