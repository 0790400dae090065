package services

import (
	"fmt"
	"sort"
	"strings"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// Scoring band weights. The three bands are independent and additive, so the
// total always lands in [0, 100].
const (
	// Status band: how interruptible the courier is right now.
	statusScoreAvailable     = 30 // idle or active
	statusScoreFinishingSoon = 20
	statusScoreOnLoad        = 5
	statusScoreOther         = 0

	// Distance band: proximity of the last known position to the pickup.
	distanceScoreUnder5  = 45
	distanceScoreUnder10 = 34
	distanceScoreUnder20 = 23
	distanceScoreUnder30 = 12
	distanceScoreFar     = 5

	// A courier with no recorded position gets a neutral mid-value rather
	// than zero, so missing GPS does not push them to the bottom of the list.
	distanceScoreNoPosition = 18

	// Workload band: loads already attached to the courier today.
	workloadScoreNone  = 25
	workloadScoreOne   = 18
	workloadScoreTwo   = 11
	workloadScoreThree = 5
)

// CourierScore is one ranked suggestion produced by the CourierScorer.
type CourierScore struct {
	// Courier is the scored courier.
	Courier *courier.Courier

	// Score is the additive total of the three bands, in [0, 100].
	Score int

	// Reason explains how the score was composed, for dispatcher visibility.
	Reason string

	// IsAvailable reports whether the courier's status is idle or active.
	// It is independent of the score; callers use it to filter the ranked
	// list before offering an assignment.
	IsAvailable bool

	// DistanceMiles is the great-circle distance from the courier's last
	// position to the pickup, or nil when either coordinate is unknown.
	DistanceMiles *float64
}

// CourierScorer ranks couriers for a pickup location using status, distance,
// and current workload. It is a pure, read-only domain service: it produces
// advisory suggestions for the dispatcher UI and for blast recipient
// selection, and never assigns anything itself.
//
// Scoring is additive over three independent bands:
//   - status (0–30): idle/active 30, finishing_soon 20, on_load 5, else 0
//   - distance (0–45): banded Haversine distance to the pickup; a courier
//     with no recorded position gets a fixed neutral 18
//   - workload (0–25): 0 loads today 25, 1 load 18, 2 loads 11, 3+ loads 5
//
// The output is sorted descending by score with a stable sort, so ties keep
// the caller's input order.
type CourierScorer struct{}

// NewCourierScorer creates a new CourierScorer instance.
func NewCourierScorer() CourierScorer {
	return CourierScorer{}
}

// Score ranks the given couriers against a pickup point.
//
// Parameters:
//   - couriers: candidates, already filtered to the relevant hub upstream
//   - positions: last known position per courier; absent entries are scored
//     with the neutral no-GPS distance value
//   - pickup: the load's pickup coordinate; nil skips distance measurement
//     for every courier (all get the neutral value)
//   - todayLoadCounts: loads already attached to each courier today; absent
//     entries count as zero
//
// Returns the suggestions sorted descending by score, input order preserved
// on ties.
func (s CourierScorer) Score(
	couriers []*courier.Courier,
	positions map[kernel.UUID]courier.Position,
	pickup *kernel.GeoPoint,
	todayLoadCounts map[kernel.UUID]int,
) ([]CourierScore, error) {
	scores := make([]CourierScore, 0, len(couriers))

	for _, c := range couriers {
		if err := c.Validate(); err != nil {
			return nil, err
		}

		var reasons []string

		statusScore := s.statusBand(c.Status())
		reasons = append(reasons, fmt.Sprintf("status %s (+%d)", c.Status(), statusScore))

		distanceScore, distance, distanceReason, err := s.distanceBand(c.ID(), positions, pickup)
		if err != nil {
			return nil, err
		}
		reasons = append(reasons, distanceReason)

		loads := todayLoadCounts[c.ID()]
		workloadScore := s.workloadBand(loads)
		reasons = append(reasons, fmt.Sprintf("%d loads today (+%d)", loads, workloadScore))

		scores = append(scores, CourierScore{
			Courier:       c,
			Score:         statusScore + distanceScore + workloadScore,
			Reason:        strings.Join(reasons, "; "),
			IsAvailable:   c.IsAvailable(),
			DistanceMiles: distance,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	return scores, nil
}

func (s CourierScorer) statusBand(status courier.Status) int {
	switch status {
	case courier.Idle, courier.Active:
		return statusScoreAvailable
	case courier.FinishingSoon:
		return statusScoreFinishingSoon
	case courier.OnLoad:
		return statusScoreOnLoad
	default:
		return statusScoreOther
	}
}

func (s CourierScorer) distanceBand(
	courierID kernel.UUID,
	positions map[kernel.UUID]courier.Position,
	pickup *kernel.GeoPoint,
) (int, *float64, string, error) {
	pos, hasPosition := positions[courierID]
	if !hasPosition || pickup == nil {
		return distanceScoreNoPosition, nil,
			fmt.Sprintf("no recent position (+%d)", distanceScoreNoPosition), nil
	}

	miles, err := pos.Point().DistanceMiles(*pickup)
	if err != nil {
		return 0, nil, "", err
	}

	var score int
	switch {
	case miles < 5:
		score = distanceScoreUnder5
	case miles < 10:
		score = distanceScoreUnder10
	case miles < 20:
		score = distanceScoreUnder20
	case miles < 30:
		score = distanceScoreUnder30
	default:
		score = distanceScoreFar
	}

	return score, &miles, fmt.Sprintf("%.1f mi from pickup (+%d)", miles, score), nil
}

func (s CourierScorer) workloadBand(todayLoads int) int {
	switch {
	case todayLoads <= 0:
		return workloadScoreNone
	case todayLoads == 1:
		return workloadScoreOne
	case todayLoads == 2:
		return workloadScoreTwo
	default:
		return workloadScoreThree
	}
}
