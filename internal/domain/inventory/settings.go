package inventory

// Threshold bounds for expiry settings
const (
	MinSoonThresholdDays = 1
	MaxSoonThresholdDays = 60
	MinOKThresholdDays   = 2
	MaxOKThresholdDays   = 365

	DefaultSoonThresholdDays = 7
	DefaultOKThresholdDays   = 30
)

// ExpirySettings holds the process-wide expiry classification thresholds.
// SoonThresholdDays bounds the "expiring soon" window; OkThresholdDays bounds
// "ok" before a date counts as far out, and must exceed SoonThresholdDays.
type ExpirySettings struct {
	SoonThresholdDays int
	OkThresholdDays   int
}

// DefaultExpirySettings returns the built-in thresholds
func DefaultExpirySettings() ExpirySettings {
	return ExpirySettings{
		SoonThresholdDays: DefaultSoonThresholdDays,
		OkThresholdDays:   DefaultOKThresholdDays,
	}
}

// Normalized clamps both thresholds into their valid ranges and restores the
// coherence rule ok > soon. An incoherent pair is corrected by pushing the ok
// threshold just past the soon threshold, never by silently accepting it.
func (s ExpirySettings) Normalized() ExpirySettings {
	out := ExpirySettings{
		SoonThresholdDays: clampInt(s.SoonThresholdDays, MinSoonThresholdDays, MaxSoonThresholdDays, DefaultSoonThresholdDays),
		OkThresholdDays:   clampInt(s.OkThresholdDays, MinOKThresholdDays, MaxOKThresholdDays, DefaultOKThresholdDays),
	}
	if out.OkThresholdDays <= out.SoonThresholdDays {
		out.OkThresholdDays = minInt(maxInt(out.SoonThresholdDays+1, MinOKThresholdDays), MaxOKThresholdDays)
	}
	return out
}

// ExpirySettingsPatch is a partial update; nil fields keep the stored value
type ExpirySettingsPatch struct {
	SoonThresholdDays *int
	OkThresholdDays   *int
}

// Apply merges the patch over existing settings and normalizes the result
func (p ExpirySettingsPatch) Apply(current ExpirySettings) ExpirySettings {
	next := current
	if p.SoonThresholdDays != nil {
		next.SoonThresholdDays = *p.SoonThresholdDays
	}
	if p.OkThresholdDays != nil {
		next.OkThresholdDays = *p.OkThresholdDays
	}
	return next.Normalized()
}

func clampInt(v, min, max, fallback int) int {
	if v == 0 {
		return fallback
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
