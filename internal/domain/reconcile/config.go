package reconcile

import (
	"fmt"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/evidence"
	"github.com/eshaffer321/tuition-reconciler/internal/domain/matcher"
)

// Config holds every engine knob.
type Config struct {
	NameMatchThreshold   int
	AmountTolerance      int64
	MaxCombinationSize   int
	MaxCombinationChecks int // 0 disables the budget
	MinAcceptedAmount    int64
	MaxAcceptedAmount    int64
	MinNameLength        int
	MaxMaskedRunes       int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	m := matcher.DefaultConfig()
	return Config{
		NameMatchThreshold:   m.NameMatchThreshold,
		AmountTolerance:      m.AmountTolerance,
		MaxCombinationSize:   m.MaxCombinationSize,
		MaxCombinationChecks: m.MaxCombinationChecks,
		MinAcceptedAmount:    evidence.DefaultMinAmount,
		MaxAcceptedAmount:    evidence.DefaultMaxAmount,
		MinNameLength:        m.MinNameLength,
		MaxMaskedRunes:       evidence.DefaultScanOptions().MaxMaskedRunes,
	}
}

// Validate rejects knob combinations the engine cannot honour.
func (c Config) Validate() error {
	if c.NameMatchThreshold < 0 || c.NameMatchThreshold > 100 {
		return fmt.Errorf("name match threshold must be between 0 and 100, got %d", c.NameMatchThreshold)
	}
	if c.AmountTolerance < 0 {
		return fmt.Errorf("amount tolerance must not be negative, got %d", c.AmountTolerance)
	}
	if c.MaxCombinationSize < 2 {
		return fmt.Errorf("max combination size must be at least 2, got %d", c.MaxCombinationSize)
	}
	if c.MaxCombinationChecks < 0 {
		return fmt.Errorf("max combination checks must not be negative, got %d", c.MaxCombinationChecks)
	}
	if c.MinAcceptedAmount < 0 || c.MinAcceptedAmount > c.MaxAcceptedAmount {
		return fmt.Errorf("invalid accepted amount range [%d, %d]", c.MinAcceptedAmount, c.MaxAcceptedAmount)
	}
	if c.MinNameLength < 1 {
		return fmt.Errorf("min name length must be at least 1, got %d", c.MinNameLength)
	}
	if c.MaxMaskedRunes < 0 {
		return fmt.Errorf("max masked runes must not be negative, got %d", c.MaxMaskedRunes)
	}
	return nil
}

func (c Config) matcherConfig() matcher.Config {
	return matcher.Config{
		NameMatchThreshold:   c.NameMatchThreshold,
		AmountTolerance:      c.AmountTolerance,
		MaxCombinationSize:   c.MaxCombinationSize,
		MaxCombinationChecks: c.MaxCombinationChecks,
		MinNameLength:        c.MinNameLength,
	}
}

func (c Config) window() evidence.Window {
	return evidence.Window{Min: c.MinAcceptedAmount, Max: c.MaxAcceptedAmount}
}

func (c Config) scanOptions() evidence.ScanOptions {
	return evidence.ScanOptions{
		MaxMaskedRunes:  c.MaxMaskedRunes,
		MinLiteralRunes: c.MinNameLength,
	}
}
