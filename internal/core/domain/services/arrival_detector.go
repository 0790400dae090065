package services

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
)

// DefaultGeofenceToleranceMeters is the radius within which a reported
// position counts as "arrived" at the target coordinate.
const DefaultGeofenceToleranceMeters = 200.0

// ArrivalEventType selects which endpoint of the load an arrival report
// refers to.
type ArrivalEventType int

const (
	// ArrivalUnknown represents an invalid or undefined event type.
	ArrivalUnknown ArrivalEventType = iota

	// ArrivedPickup is an arrival at the load's pickup coordinate.
	ArrivedPickup

	// ArrivedDelivery is an arrival at the load's delivery coordinate.
	ArrivedDelivery
)

// ParseArrivalEventType converts a string into an ArrivalEventType.
func ParseArrivalEventType(s string) (ArrivalEventType, error) {
	switch s {
	case "arrived_pickup":
		return ArrivedPickup, nil
	case "arrived_delivery":
		return ArrivedDelivery, nil
	default:
		return ArrivalUnknown, fmt.Errorf("%q is not a valid arrival event type", s)
	}
}

// String returns the canonical name of the event type.
func (t ArrivalEventType) String() string {
	switch t {
	case ArrivedPickup:
		return "arrived_pickup"
	case ArrivedDelivery:
		return "arrived_delivery"
	default:
		return "unknown"
	}
}

// targetStatus maps the event type to the load status it drives.
func (t ArrivalEventType) targetStatus() load.Status {
	switch t {
	case ArrivedPickup:
		return load.ArrivedPickup
	case ArrivedDelivery:
		return load.ArrivedDelivery
	default:
		return load.Unknown
	}
}

// preconditions returns the load statuses from which this arrival event is
// accepted. Tighter than the raw transition table: an automatic transition
// must not fire from states where the courier has no business at that
// endpoint.
func (t ArrivalEventType) preconditions() []load.Status {
	switch t {
	case ArrivedPickup:
		return []load.Status{load.Assigned, load.InProgress}
	case ArrivedDelivery:
		return []load.Status{load.InProgress, load.InTransit, load.ArrivedPickup}
	default:
		return nil
	}
}

// ErrOutOfGeofence is the sentinel for positions outside the tolerance radius.
var ErrOutOfGeofence = errors.New("position outside geofence")

// OutOfGeofenceError reports a rejected automatic transition, carrying the
// measured distance and the configured tolerance so a dispatcher can decide
// whether to override manually. Unwraps to ErrOutOfGeofence.
type OutOfGeofenceError struct {
	EventType       ArrivalEventType
	DistanceMeters  float64
	ToleranceMeters float64
}

// Error implements the error interface.
func (e *OutOfGeofenceError) Error() string {
	return fmt.Sprintf("%s: %s reported %.0f m from target, tolerance %.0f m",
		ErrOutOfGeofence, e.EventType, e.DistanceMeters, e.ToleranceMeters)
}

// Unwrap returns the sentinel ErrOutOfGeofence for errors.Is classification.
func (e *OutOfGeofenceError) Unwrap() error {
	return ErrOutOfGeofence
}

// ArrivalDetector validates a courier-reported position against a load's
// pickup or delivery coordinate and, when the position lies within the
// tolerance radius, produces the status transition the report justifies.
//
// The detector decides; it does not mutate. On success it returns the target
// status and a reason string embedding the rounded coordinates, and the
// caller drives the actual transition, so the audit trail distinguishes
// automatic geofence transitions from manual ones.
//
// Rules:
//   - the load's current status must be in the event's precondition set
//     (arrived_pickup from assigned or in_progress; arrived_delivery from
//     in_progress, in_transit, or arrived_pickup)
//   - the great-circle distance to the stored target coordinate must not
//     exceed the tolerance, or the report is rejected with OutOfGeofenceError
//   - a load with no stored coordinate for the relevant endpoint skips the
//     distance check entirely and is allowed through (cannot verify, allow)
type ArrivalDetector struct {
	toleranceMeters float64
}

// NewArrivalDetector creates a detector with the default 200 m tolerance.
func NewArrivalDetector() ArrivalDetector {
	return ArrivalDetector{toleranceMeters: DefaultGeofenceToleranceMeters}
}

// NewArrivalDetectorWithTolerance creates a detector with a custom tolerance
// radius in meters.
func NewArrivalDetectorWithTolerance(toleranceMeters float64) (ArrivalDetector, error) {
	if toleranceMeters <= 0 {
		return ArrivalDetector{}, fmt.Errorf("tolerance must be positive, got %f", toleranceMeters)
	}
	return ArrivalDetector{toleranceMeters: toleranceMeters}, nil
}

// ToleranceMeters returns the configured geofence radius.
func (d ArrivalDetector) ToleranceMeters() float64 {
	return d.toleranceMeters
}

// CheckArrival validates the reported position against the load.
//
// Parameters:
//   - ld: the load the courier is reporting against
//   - eventType: which endpoint the report refers to
//   - reported: the position from the courier's device
//
// Returns:
//   - load.Status: the status the report justifies (arrived_pickup or
//     arrived_delivery)
//   - string: the audit reason to record with the transition
//   - error: *load.InvalidTransitionError when the load's status is outside
//     the precondition set, *OutOfGeofenceError when the distance exceeds
//     the tolerance
func (d ArrivalDetector) CheckArrival(
	ld *load.Load,
	eventType ArrivalEventType,
	reported kernel.GeoPoint,
) (load.Status, string, error) {
	if err := ld.Validate(); err != nil {
		return load.Unknown, "", err
	}

	target := eventType.targetStatus()
	if target == load.Unknown {
		return load.Unknown, "", fmt.Errorf("%d is not a valid arrival event type", eventType)
	}

	if !d.statusAllowed(ld.Status(), eventType.preconditions()) {
		return load.Unknown, "", &load.InvalidTransitionError{From: ld.Status(), To: target}
	}

	targetPoint := ld.PickupPoint()
	if eventType == ArrivedDelivery {
		targetPoint = ld.DeliveryPoint()
	}

	// No stored coordinate for this endpoint: cannot verify, allow.
	if targetPoint == nil {
		reason := fmt.Sprintf("geofence %s at %.4f,%.4f (target coordinate not set, distance not verified)",
			eventType, reported.Lat(), reported.Lng())
		return target, reason, nil
	}

	distance, err := reported.DistanceMeters(*targetPoint)
	if err != nil {
		return load.Unknown, "", err
	}

	if distance > d.toleranceMeters {
		return load.Unknown, "", &OutOfGeofenceError{
			EventType:       eventType,
			DistanceMeters:  distance,
			ToleranceMeters: d.toleranceMeters,
		}
	}

	reason := fmt.Sprintf("geofence %s at %.4f,%.4f, %.0f m from target",
		eventType, reported.Lat(), reported.Lng(), distance)
	return target, reason, nil
}

func (d ArrivalDetector) statusAllowed(current load.Status, allowed []load.Status) bool {
	for _, s := range allowed {
		if current == s {
			return true
		}
	}
	return false
}
