// internal/dashboard/stats.go
//
// Aggregations behind the customer, adjuster and admin dashboards. Every
// figure is computed from the claim list handed in; nothing is cached here.

package dashboard

import (
	"math"
	"sort"
	"time"

	"github.com/kingrea/claimdesk/internal/claims"
)

const (
	// RecentLimit is how many claims the "recent" panels show.
	RecentLimit = 5
	// SpotlightLimit caps the low-confidence and high-flag panels.
	SpotlightLimit = 3
	// LowConfidenceBelow is the score under which a claim is spotlighted.
	LowConfidenceBelow = 70
	// HighFlagsAtLeast is the flag count from which a claim is spotlighted.
	HighFlagsAtLeast = 2
)

// Band groups confidence scores for colouring and distribution.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// ConfidenceBand maps a 0..100 score onto its band.
func ConfidenceBand(score int) Band {
	switch {
	case score >= 80:
		return BandHigh
	case score >= 60:
		return BandMedium
	default:
		return BandLow
	}
}

// AverageConfidence is the mean confidence rounded half away from zero.
// An empty list averages to zero.
func AverageConfidence(list []claims.Claim) int {
	if len(list) == 0 {
		return 0
	}
	sum := 0
	for _, c := range list {
		sum += c.Confidence
	}
	return int(math.Round(float64(sum) / float64(len(list))))
}

// Percent returns part/total as a rounded percentage.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// PendingReview keeps claims still in the reviewer's queue.
func PendingReview(list []claims.Claim) []claims.Claim {
	return Filter(list, func(c claims.Claim) bool { return c.Status.AwaitingReview() })
}

// Flagged keeps claims carrying at least one flag.
func Flagged(list []claims.Claim) []claims.Claim {
	return Filter(list, func(c claims.Claim) bool { return c.FlagsCount > 0 })
}

// LowConfidence returns up to limit claims scoring below LowConfidenceBelow,
// in input order.
func LowConfidence(list []claims.Claim, limit int) []claims.Claim {
	return head(Filter(list, func(c claims.Claim) bool { return c.Confidence < LowConfidenceBelow }), limit)
}

// HighFlagCount returns up to limit claims with at least HighFlagsAtLeast
// flags, most flagged first.
func HighFlagCount(list []claims.Claim, limit int) []claims.Claim {
	out := Filter(list, func(c claims.Claim) bool { return c.FlagsCount >= HighFlagsAtLeast })
	sort.SliceStable(out, func(i, j int) bool { return out[i].FlagsCount > out[j].FlagsCount })
	return head(out, limit)
}

// Filter returns the claims matching keep, preserving order.
func Filter(list []claims.Claim, keep func(claims.Claim) bool) []claims.Claim {
	out := make([]claims.Claim, 0, len(list))
	for _, c := range list {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// CountByStatus tallies claims per status.
func CountByStatus(list []claims.Claim) map[claims.Status]int {
	counts := make(map[claims.Status]int, len(claims.Statuses))
	for _, c := range list {
		counts[c.Status]++
	}
	return counts
}

// Customer holds the figures on the customer dashboard.
type Customer struct {
	Total    int            `json:"total"`
	Pending  int            `json:"pending"`
	Approved int            `json:"approved"`
	Rejected int            `json:"rejected"`
	Recent   []claims.Claim `json:"recent"`
}

// ForCustomer builds the customer dashboard.
func ForCustomer(list []claims.Claim) Customer {
	counts := CountByStatus(list)
	return Customer{
		Total:    len(list),
		Pending:  counts[claims.StatusHITLReview] + counts[claims.StatusProcessing],
		Approved: counts[claims.StatusApproved],
		Rejected: counts[claims.StatusRejected],
		Recent:   head(list, RecentLimit),
	}
}

// Adjuster holds the figures on the adjuster dashboard.
type Adjuster struct {
	PendingReview     []claims.Claim `json:"pendingReview"`
	Flagged           int            `json:"flagged"`
	AverageConfidence int            `json:"averageConfidence"`
	ReviewedToday     int            `json:"reviewedToday"`
	LowConfidence     []claims.Claim `json:"lowConfidence"`
	HighFlagCount     []claims.Claim `json:"highFlagCount"`
}

// ForAdjuster builds the adjuster dashboard. decidedToday is the number of
// dispositions recorded in the running session and is added to the claims
// already resolved on now's calendar day.
func ForAdjuster(list []claims.Claim, now time.Time, decidedToday int) Adjuster {
	return Adjuster{
		PendingReview:     PendingReview(list),
		Flagged:           len(Flagged(list)),
		AverageConfidence: AverageConfidence(list),
		ReviewedToday:     ReviewedOn(list, now) + decidedToday,
		LowConfidence:     LowConfidence(list, SpotlightLimit),
		HighFlagCount:     HighFlagCount(list, SpotlightLimit),
	}
}

// ReviewedOn counts resolved claims last updated on day's calendar date.
func ReviewedOn(list []claims.Claim, day time.Time) int {
	n := 0
	for _, c := range list {
		if c.Status.Resolved() && sameDay(c.UpdatedAt, day) {
			n++
		}
	}
	return n
}

func sameDay(t, day time.Time) bool {
	y1, m1, d1 := t.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func head(list []claims.Claim, limit int) []claims.Claim {
	if limit >= 0 && len(list) > limit {
		list = list[:limit]
	}
	return append([]claims.Claim(nil), list...)
}
