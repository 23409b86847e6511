package matching

import (
	"math"
	"strings"

	"vkinder/model"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// ageSpan is the age difference at which the age term reaches zero.
	ageSpan = 10.0
	// groupsSaturation and friendsSaturation are the overlaps that earn the full term.
	groupsSaturation  = 10.0
	friendsSaturation = 5.0
	// similarityThreshold is the ratio a pair of interest items must exceed to count.
	similarityThreshold = 0.7
	// cityWeight is not user adjustable.
	cityWeight = 0.8
)

// Weights are the per criterion multipliers of Score.
type Weights struct {
	Age       float64
	City      float64
	Interests float64
	Groups    float64
	Friends   float64
}

// DefaultWeights is used when the owner has no search parameters.
func DefaultWeights() Weights {
	return Weights{Age: 1.0, City: cityWeight, Interests: 0.7, Groups: 0.6, Friends: 0.9}
}

// WeightsFrom reads the weights stored in p; the city weight is always fixed.
func WeightsFrom(p *model.SearchParams) Weights {
	if p == nil {
		return DefaultWeights()
	}
	return Weights{
		Age:       p.AgeWeight,
		City:      cityWeight,
		Interests: p.InterestsWeight,
		Groups:    p.GroupsWeight,
		Friends:   p.FriendsWeight,
	}
}

// Max is the score of a candidate matching on every criterion.
func (w Weights) Max() float64 {
	return w.Age + w.City + w.Interests + w.Groups + w.Friends
}

// Subject is the side of a comparison. Nil or empty fields contribute nothing.
type Subject struct {
	Age       *int
	City      string
	Interests map[string][]string
	Friends   map[int64]struct{}
	Groups    map[int64]struct{}
}

// Score adds the weighted terms both sides have data for and rounds to 2 decimals.
func Score(owner, candidate Subject, w Weights) float64 {
	total := 0.0

	// 1. age
	if owner.Age != nil && candidate.Age != nil {
		diff := math.Abs(float64(*owner.Age - *candidate.Age))
		total += math.Max(0, 1-diff/ageSpan) * w.Age
	}

	// 2. city
	if owner.City != "" && candidate.City != "" && strings.EqualFold(owner.City, candidate.City) {
		total += w.City
	}

	// 3. interests
	if len(owner.Interests) > 0 {
		total += InterestSimilarity(owner.Interests, candidate.Interests) * w.Interests
	}

	// 4. groups and friends, unavailable sets are nil
	if len(owner.Groups) > 0 && len(candidate.Groups) > 0 {
		total += math.Min(1, float64(overlap(owner.Groups, candidate.Groups))/groupsSaturation) * w.Groups
	}
	if len(owner.Friends) > 0 && len(candidate.Friends) > 0 {
		total += math.Min(1, float64(overlap(owner.Friends, candidate.Friends))/friendsSaturation) * w.Friends
	}

	return round2(total)
}

// InterestSimilarity compares items category by category. Every pair whose
// character similarity ratio exceeds 0.7 adds that ratio; the sum is divided by
// the owner's item count and capped at 1.
func InterestSimilarity(owner, candidate map[string][]string) float64 {
	totalItems := 0
	sum := 0.0
	for _, category := range model.InterestCategories {
		own := normalizeItems(owner[category])
		totalItems += len(own)
		other := normalizeItems(candidate[category])
		if len(own) == 0 || len(other) == 0 {
			continue
		}
		for _, a := range own {
			for _, b := range other {
				if r := ratio(a, b); r > similarityThreshold {
					sum += r
				}
			}
		}
	}
	if totalItems == 0 {
		return 0
	}
	return math.Min(1, sum/float64(totalItems))
}

// MatchPercent expresses score as a share of the best reachable score under w.
func MatchPercent(score float64, w Weights) int {
	max := w.Max()
	if max <= 0 || score <= 0 {
		return 0
	}
	pct := int(math.Round(score / max * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}

// ratio is the SequenceMatcher similarity of two strings compared rune by rune.
func ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	m := difflib.NewMatcher(runes(a), runes(b))
	return m.Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func normalizeItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func overlap(a, b map[int64]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for id := range a {
		if _, ok := b[id]; ok {
			n++
		}
	}
	return n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
