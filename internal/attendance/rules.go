package attendance

import (
	"fmt"
	"time"
)

// Rules holds the classification thresholds.
type Rules struct {
	// ExcessiveMinutes: raw durations above this are Medium.
	ExcessiveMinutes int
	// SevereMinutes: raw durations above this are High.
	SevereMinutes int
	// LateAfter: clock-ins strictly after this time of day are late.
	LateAfter time.Duration
	// EarlyBefore: clock-outs strictly before this time of day are early.
	EarlyBefore time.Duration
	// MultipleClockIns is the clock-in count per day that raises a finding.
	MultipleClockIns int
}

// DefaultRules returns the standard office thresholds: 10h / 12h, 09:00, 17:00.
func DefaultRules() Rules {
	return Rules{
		ExcessiveMinutes: 600,
		SevereMinutes:    720,
		LateAfter:        9 * time.Hour,
		EarlyBefore:      17 * time.Hour,
		MultipleClockIns: 2,
	}
}

// Validate checks that thresholds are coherent.
func (r Rules) Validate() error {
	if r.ExcessiveMinutes <= 0 {
		return fmt.Errorf("excessive threshold must be positive, got %d", r.ExcessiveMinutes)
	}
	if r.SevereMinutes < r.ExcessiveMinutes {
		return fmt.Errorf("severe threshold (%d) must not be below excessive threshold (%d)", r.SevereMinutes, r.ExcessiveMinutes)
	}
	if r.LateAfter < 0 || r.LateAfter >= 24*time.Hour {
		return fmt.Errorf("late-after %v is not a time of day", r.LateAfter)
	}
	if r.EarlyBefore < 0 || r.EarlyBefore >= 24*time.Hour {
		return fmt.Errorf("early-before %v is not a time of day", r.EarlyBefore)
	}
	if r.MultipleClockIns < 2 {
		return fmt.Errorf("multiple clock-in threshold must be at least 2, got %d", r.MultipleClockIns)
	}
	return nil
}

// durationSeverity maps a raw worked duration to an ExcessiveDuration
// severity. ok is false when the duration is within limits.
func (r Rules) durationSeverity(minutes int) (sev Severity, ok bool) {
	switch {
	case minutes > r.SevereMinutes:
		return High, true
	case minutes > r.ExcessiveMinutes:
		return Medium, true
	}
	return "", false
}
