package dashboard

import (
	"sort"

	"github.com/kingrea/claimdesk/internal/claims"
)

const dayLayout = "2006-01-02"

// DayCount is the number of claims created on one day.
type DayCount struct {
	Day    string `json:"day"`
	Claims int    `json:"claims"`
}

// TrendPoint counts CAG corrections and agent errors for claims created on
// one day.
type TrendPoint struct {
	Day         string `json:"day"`
	Corrections int    `json:"corrections"`
	Errors      int    `json:"errors"`
}

// Distribution is the share of claims per confidence band, in percent.
type Distribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Rates are pipeline outcome shares, in percent of all claims.
type Rates struct {
	AutoApproval   int `json:"autoApproval"`
	HITLEscalation int `json:"hitlEscalation"`
	Rejection      int `json:"rejection"`
	CAGCorrection  int `json:"cagCorrection"`
}

// Admin holds the figures on the admin dashboard.
type Admin struct {
	TotalClaims       int            `json:"totalClaims"`
	PendingHITL       int            `json:"pendingHITL"`
	Corrections       int            `json:"cagCorrections"`
	Resolved          int            `json:"resolved"`
	AverageConfidence int            `json:"averageConfidence"`
	ClaimsPerDay      []DayCount     `json:"claimsPerDay"`
	CorrectionTrends  []TrendPoint   `json:"correctionTrends"`
	Distribution      Distribution   `json:"confidenceDistribution"`
	Rates             Rates          `json:"rates"`
	Recent            []claims.Claim `json:"recent"`
}

// ForAdmin builds the admin overview and analytics figures.
func ForAdmin(list []claims.Claim) Admin {
	counts := CountByStatus(list)
	corrections := 0
	withCorrections := 0
	for _, c := range list {
		corrections += len(c.Corrections)
		if len(c.Corrections) > 0 {
			withCorrections++
		}
	}
	total := len(list)
	return Admin{
		TotalClaims:       total,
		PendingHITL:       counts[claims.StatusHITLReview],
		Corrections:       corrections,
		Resolved:          counts[claims.StatusApproved] + counts[claims.StatusRejected],
		AverageConfidence: AverageConfidence(list),
		ClaimsPerDay:      ClaimsPerDay(list),
		CorrectionTrends:  CorrectionTrends(list),
		Distribution:      ConfidenceDistribution(list),
		Rates: Rates{
			AutoApproval:   Percent(counts[claims.StatusApproved], total),
			HITLEscalation: Percent(counts[claims.StatusHITLReview], total),
			Rejection:      Percent(counts[claims.StatusRejected], total),
			CAGCorrection:  Percent(withCorrections, total),
		},
		Recent: head(list, RecentLimit),
	}
}

// ClaimsPerDay buckets claims by creation date (UTC), oldest first.
func ClaimsPerDay(list []claims.Claim) []DayCount {
	buckets := map[string]int{}
	for _, c := range list {
		buckets[c.CreatedAt.UTC().Format(dayLayout)]++
	}
	out := make([]DayCount, 0, len(buckets))
	for day, n := range buckets {
		out = append(out, DayCount{Day: day, Claims: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// CorrectionTrends buckets corrections and error messages by the creation
// date of their claim. Days with neither are omitted.
func CorrectionTrends(list []claims.Claim) []TrendPoint {
	buckets := map[string]*TrendPoint{}
	for _, c := range list {
		errs := 0
		for _, msg := range c.AgentMessages {
			if msg.Type == claims.MessageError {
				errs++
			}
		}
		if errs == 0 && len(c.Corrections) == 0 {
			continue
		}
		day := c.CreatedAt.UTC().Format(dayLayout)
		point, ok := buckets[day]
		if !ok {
			point = &TrendPoint{Day: day}
			buckets[day] = point
		}
		point.Corrections += len(c.Corrections)
		point.Errors += errs
	}
	out := make([]TrendPoint, 0, len(buckets))
	for _, point := range buckets {
		out = append(out, *point)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// ConfidenceDistribution reports the share of claims per band.
func ConfidenceDistribution(list []claims.Claim) Distribution {
	var high, medium, low int
	for _, c := range list {
		switch ConfidenceBand(c.Confidence) {
		case BandHigh:
			high++
		case BandMedium:
			medium++
		default:
			low++
		}
	}
	return Distribution{
		High:   Percent(high, len(list)),
		Medium: Percent(medium, len(list)),
		Low:    Percent(low, len(list)),
	}
}
