package record

import "context"

// NarrativeMode selects the time horizon of a generated narrative.
type NarrativeMode string

const (
	NarrativeDaily   NarrativeMode = "Harian"
	NarrativeWeekly  NarrativeMode = "Mingguan"
	NarrativeMonthly NarrativeMode = "Bulanan"
)

// IsValid checks if the mode is one of the known modes.
func (m NarrativeMode) IsValid() bool {
	switch m {
	case NarrativeDaily, NarrativeWeekly, NarrativeMonthly:
		return true
	default:
		return false
	}
}

// NarrativeRequest asks for prose describing one record.
type NarrativeRequest struct {
	Record *DailyRecord
	Mode   NarrativeMode
}

// NarrativeGenerator produces a teacher-readable narrative for a record.
// The text is opaque to the domain: it is stored and displayed verbatim,
// never parsed. Implementations live in infrastructure/external.
//
// Returns shared.ErrNarrativeUnavailable (or a more specific narrative
// error) when the backing service cannot produce text; callers degrade
// to showing the record without a narrative.
type NarrativeGenerator interface {
	Generate(ctx context.Context, req NarrativeRequest) (string, error)
}
