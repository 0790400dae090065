// Package blast contains the Blast aggregate: a time-bounded broadcast offer
// of one load to multiple couriers, resolved by the first interested response.
//
// The aggregate root is Blast, owning one Response entity per recipient.
// A blast is Active until exactly one of three things happens: a courier
// responds interested (Accepted — all other responses forced to expired),
// a dispatcher cancels it (Cancelled), or the expiry sweep notices the
// response window has elapsed (Expired). Resolution is terminal; late
// responses against a resolved blast fail with ErrBlastResolved.
package blast
