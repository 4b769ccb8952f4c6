package errors

import "slices"

// Limits bound the problems the CLI and the HTTP service accept. Search
// time grows quickly with the target, so services should keep these low.
type Limits struct {
	MaxSource int `toml:"max_source" yaml:"max_source"`
	MaxTarget int `toml:"max_target" yaml:"max_target"`
}

// DefaultLimits are generous enough for interactive use.
var DefaultLimits = Limits{MaxSource: 1000, MaxTarget: 1000}

// ValidateDice checks the die sizes of a problem. A zero limit disables the
// corresponding upper bound.
func ValidateDice(source, target int, limits Limits) error {
	if source < 2 {
		return New(ErrCodeInvalidInput, "source die must have at least 2 sides, got %d", source)
	}
	if target < 1 {
		return New(ErrCodeInvalidInput, "target die must have at least 1 side, got %d", target)
	}
	if limits.MaxSource > 0 && source > limits.MaxSource {
		return New(ErrCodeInvalidInput, "source die too large (max %d sides)", limits.MaxSource)
	}
	if limits.MaxTarget > 0 && target > limits.MaxTarget {
		return New(ErrCodeInvalidInput, "target die too large (max %d sides)", limits.MaxTarget)
	}
	return nil
}

// ValidateIterations rejects negative iteration limits.
func ValidateIterations(n int) error {
	if n < 0 {
		return New(ErrCodeInvalidInput, "iteration limit cannot be negative, got %d", n)
	}
	return nil
}

// ValidateChoice checks that value is one of allowed, reporting failures
// under code.
func ValidateChoice(code Code, what, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return New(code, "invalid %s %q (want one of %v)", what, value, allowed)
	}
	return nil
}
