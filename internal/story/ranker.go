package story

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photobook-stories/internal/library"
)

// DefaultStoryLimit caps the number of ranked stories.
const DefaultStoryLimit = 16

// RecencyWindowYears is how far back a cluster may start and still be ranked.
const RecencyWindowYears = 3

// Scoring weights.
const (
	oversizedPhotoCount = 100
	oversizedPenalty    = 20

	commonLocationSum     = 5
	commonLocationPenalty = 20

	recentDays        = 30
	recentBonus       = 30
	fairlyRecentDays  = 90
	fairlyRecentBonus = 10
	oldPenalty        = 20

	tripMinDays          = 3
	tripMaxDays          = 20
	tripBonus            = 20
	commonTripPenalty    = 10
	weekendBonus         = 10
	commonRankPercentile = 0.2
)

// RankOptions configures a ranking pass.
type RankOptions struct {
	// Now is the reference time for recency. Zero means time.Now().
	Now time.Time
	// MinimumAssets is the smallest photo count a story may have.
	MinimumAssets int
	// Limit caps the result. Zero means DefaultStoryLimit.
	Limit int
}

// Since returns the earliest start date a cluster may have to be ranked.
func Since(now time.Time) time.Time {
	return now.AddDate(-RecencyWindowYears, 0, 0)
}

// Rank scores clusters and returns the best stories, highest score first and
// most recent first among equal scores.
//
// Clusters without a start date, starting before the recency window, without
// a title or with fewer than MinimumAssets photos are dropped silently.
func Rank(clusters []library.MomentCluster, opts RankOptions) []*Story {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultStoryLimit
	}
	cutoff := Since(now)

	var stories []*Story
	frequency := make(map[string]int)

	for _, cluster := range clusters {
		if cluster.StartDate.IsZero() || cluster.StartDate.Before(cutoff) {
			continue
		}

		photoCount := 0
		for _, m := range cluster.Moments {
			photoCount += m.ImageCount()
		}

		title := strings.TrimSpace(cluster.Title)
		if title == "" {
			title = titleFromMoments(cluster.Moments)
		}
		if title == "" {
			continue
		}

		if photoCount < opts.MinimumAssets {
			continue
		}

		components := ParseLocations(title)
		for _, c := range components {
			frequency[c]++
		}

		s := &Story{
			ID:         cluster.ID,
			Title:      strings.ToUpper(title),
			Subtitle:   FormatDateRange(cluster.StartDate, cluster.EndDate),
			Components: components,
			PhotoCount: photoCount,
			StartDate:  cluster.StartDate,
			EndDate:    cluster.EndDate,
			ranked:     true,
		}
		for _, m := range cluster.Moments {
			s.MomentIDs = append(s.MomentIDs, m.ID)
		}
		if len(s.MomentIDs) > 0 {
			s.CoverMomentID = s.MomentIDs[0]
		}
		stories = append(stories, s)
	}

	locationRank := rankLocations(frequency)
	for _, s := range stories {
		s.Score, s.IsWeekend = score(s, now, frequency, locationRank)
	}

	sort.SliceStable(stories, func(i, j int) bool {
		if stories[i].Score != stories[j].Score {
			return stories[i].Score > stories[j].Score
		}
		return stories[i].EndDate.After(stories[j].EndDate)
	})

	if len(stories) > limit {
		stories = stories[:limit]
	}

	log.Debug().
		Int("clusters", len(clusters)).
		Int("ranked", len(stories)).
		Int("locations", len(frequency)).
		Msg("Ranking pass complete")

	return stories
}

// score applies the additive scoring rules to a single story.
func score(s *Story, now time.Time, frequency map[string]int, locationRank map[string]int) (int, bool) {
	total := 0
	weekend := false

	if s.PhotoCount > oversizedPhotoCount {
		total -= oversizedPenalty
	}

	mentions := 0
	for _, c := range s.Components {
		mentions += frequency[c]
	}
	if mentions > commonLocationSum {
		total -= commonLocationPenalty
	}

	if !s.EndDate.IsZero() {
		age := daysBetween(s.EndDate, now)
		switch {
		case age < recentDays:
			total += recentBonus
		case age < fairlyRecentDays:
			total += fairlyRecentBonus
		case age >= 365 && age <= RecencyWindowYears*365:
			total -= oldPenalty
		}
	}

	if !s.StartDate.IsZero() && !s.EndDate.IsZero() {
		common := hasCommonLocation(s.Components, locationRank)
		tripDays := daysBetween(s.StartDate, s.EndDate)

		switch {
		case tripDays > tripMinDays && tripDays < tripMaxDays:
			if common {
				total -= commonTripPenalty
			} else {
				total += tripBonus
			}
		case tripDays <= tripMinDays:
			if isWeekendStart(s.StartDate.Weekday()) && isWeekendEnd(s.EndDate.Weekday()) {
				total += weekendBonus
				weekend = true
			}
		}
	}

	return total, weekend
}

// rankLocations orders locations by descending frequency (ties by name) and
// returns each location's position.
func rankLocations(frequency map[string]int) map[string]int {
	locations := make([]string, 0, len(frequency))
	for loc := range frequency {
		locations = append(locations, loc)
	}
	sort.Slice(locations, func(i, j int) bool {
		if frequency[locations[i]] != frequency[locations[j]] {
			return frequency[locations[i]] > frequency[locations[j]]
		}
		return locations[i] < locations[j]
	})

	rank := make(map[string]int, len(locations))
	for i, loc := range locations {
		rank[loc] = i
	}
	return rank
}

// hasCommonLocation reports whether any component ranks within the top
// floor(0.2 * len(component)) locations. The threshold is derived from the
// component's own length, not from the number of locations.
func hasCommonLocation(components []string, locationRank map[string]int) bool {
	for _, c := range components {
		threshold := int(commonRankPercentile * float64(utf8.RuneCountInString(c)))
		if r, ok := locationRank[c]; ok && r < threshold {
			return true
		}
	}
	return false
}

func isWeekendStart(d time.Weekday) bool {
	return d == time.Friday || d == time.Saturday
}

func isWeekendEnd(d time.Weekday) bool {
	return d == time.Sunday || d == time.Monday
}

// daysBetween returns the whole days from a to b.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// titleFromMoments builds a title from the one or two most frequent moment
// titles, most frequent first, joined with " & ".
func titleFromMoments(moments []library.Moment) string {
	counts := make(map[string]int)
	var order []string
	for _, m := range moments {
		t := strings.TrimSpace(m.Title)
		if t == "" {
			continue
		}
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}
	if len(order) == 0 {
		return ""
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 2 {
		order = order[:2]
	}
	return strings.Join(order, " & ")
}
