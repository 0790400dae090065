package blast

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of a blast (a broadcast offer of one load to
// a set of couriers). A blast starts Active and resolves into exactly one of
// the three terminal states; terminal blasts never change again.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// Active means the offer is live and responses are being collected.
	Active

	// Accepted means a courier expressed interest first and won the blast.
	Accepted

	// Expired means the response window elapsed with no acceptance.
	Expired

	// Cancelled means a dispatcher called the blast off.
	Cancelled
)

// getStatusStrings returns the canonical string for each blast status.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown: "unknown",
		Active:        "active",
		Accepted:      "accepted",
		Expired:       "expired",
		Cancelled:     "cancelled",
	}
}

// ParseStatus converts a string into a Status, case-insensitively.
// Returns an error for unrecognized values.
func ParseStatus(s string) (Status, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for status, str := range getStatusStrings() {
		if status != StatusUnknown && str == needle {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("blast status",
		fmt.Errorf("%q is not a valid blast status", s))
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if s == StatusUnknown {
		return errs.NewValueIsInvalidErrorWithCause("blast status",
			fmt.Errorf("%d is not a valid blast status", s))
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("blast status",
			fmt.Errorf("%d is not a valid blast status", s))
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

// IsTerminal reports whether the blast has resolved. Accepted, Expired, and
// Cancelled are terminal; only Active blasts may still change.
func (s Status) IsTerminal() bool {
	return s == Accepted || s == Expired || s == Cancelled
}

// ResponseStatus is the state of one courier's response to a blast.
// Responses progress pending → viewed → interested|declined; any
// non-terminal response is forced to expired when the parent blast resolves.
type ResponseStatus int

const (
	// ResponseUnknown represents an invalid or undefined response status.
	ResponseUnknown ResponseStatus = iota

	// ResponsePending means the courier has not opened the offer.
	ResponsePending

	// ResponseViewed means the courier opened the offer without answering.
	ResponseViewed

	// ResponseInterested means the courier wants the load.
	ResponseInterested

	// ResponseDeclined means the courier passed on the load.
	ResponseDeclined

	// ResponseExpired means the parent blast resolved before the courier answered.
	ResponseExpired
)

// getResponseStatusStrings returns the canonical string for each response status.
func getResponseStatusStrings() map[ResponseStatus]string {
	return map[ResponseStatus]string{
		ResponseUnknown:    "unknown",
		ResponsePending:    "pending",
		ResponseViewed:     "viewed",
		ResponseInterested: "interested",
		ResponseDeclined:   "declined",
		ResponseExpired:    "expired",
	}
}

// ParseResponseStatus converts a string into a ResponseStatus, case-insensitively.
func ParseResponseStatus(s string) (ResponseStatus, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for status, str := range getResponseStatusStrings() {
		if status != ResponseUnknown && str == needle {
			return status, nil
		}
	}
	return ResponseUnknown, errs.NewValueIsInvalidErrorWithCause("response status",
		fmt.Errorf("%q is not a valid response status", s))
}

// Validate checks if the ResponseStatus value is valid.
func (s ResponseStatus) Validate() error {
	if s == ResponseUnknown {
		return errs.NewValueIsInvalidErrorWithCause("response status",
			fmt.Errorf("%d is not a valid response status", s))
	}
	if _, ok := getResponseStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("response status",
			fmt.Errorf("%d is not a valid response status", s))
	}
	return nil
}

// String returns the canonical name of the response status.
func (s ResponseStatus) String() string {
	if str, ok := getResponseStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the response can no longer change.
// A courier holds at most one non-terminal response per blast.
func (s ResponseStatus) IsTerminal() bool {
	return s == ResponseInterested || s == ResponseDeclined || s == ResponseExpired
}
