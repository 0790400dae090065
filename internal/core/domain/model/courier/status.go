package courier

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// Status is the coarse availability state of a courier, managed by the
// external CRM pages. The dispatch engine only reads it - for scoring and
// for the availability flag on suggestions.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// Idle means the courier is on shift with nothing assigned.
	Idle

	// Active means the courier is on shift and accepting work.
	Active

	// FinishingSoon means the courier is wrapping up their current job.
	FinishingSoon

	// OnLoad means the courier is actively working a load.
	// The CRM records this as either "on_load" or "in_progress".
	OnLoad

	// Off means the courier is off shift.
	Off
)

// getStatusStrings returns the canonical string for each status.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown: "unknown",
		Idle:          "idle",
		Active:        "active",
		FinishingSoon: "finishing_soon",
		OnLoad:        "on_load",
		Off:           "off",
	}
}

// ParseStatus converts a CRM status string into a Status. The comparison is
// case-insensitive, and "in_progress" is accepted as an alias of "on_load"
// (both spellings exist in the courier records). Unrecognized values map to
// StatusUnknown without an error: the scorer treats an unknown status as
// zero-scored rather than failing the whole ranking.
func ParseStatus(s string) Status {
	needle := strings.ToLower(strings.TrimSpace(s))
	if needle == "in_progress" {
		return OnLoad
	}
	for status, str := range getStatusStrings() {
		if status != StatusUnknown && str == needle {
			return status
		}
	}
	return StatusUnknown
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if s == StatusUnknown {
		return errs.NewValueIsInvalidErrorWithCause("courier status",
			fmt.Errorf("%d is not a valid courier status", s))
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("courier status",
			fmt.Errorf("%d is not a valid courier status", s))
	}
	return nil
}

// String returns the canonical name of the status. Implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsAvailable reports whether a courier in this status may be offered an
// assignment. Only Idle and Active couriers are available; the flag is
// independent of any score the courier receives.
func (s Status) IsAvailable() bool {
	return s == Idle || s == Active
}
