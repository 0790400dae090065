// Package services contains stateless domain services that implement
// business logic spanning multiple aggregates.
//
// CourierScorer ranks couriers for a pickup location; it is read-only and
// advisory, never assigning anything itself. ArrivalDetector validates a
// courier-reported position against a load's target coordinate and decides
// which automatic status transition, if any, the report justifies; the
// caller performs the transition. Both services are pure functions over
// domain objects with no store access.
package services
