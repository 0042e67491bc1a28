// Package stats summarizes the submissions of a campaign by region and
// flags regions whose deadline is getting close.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/luigilocane-sketch/ricorsi-sinafi/model"
)

// warningWindow is how far ahead a deadline may be and still be reported.
const warningWindow = 30 * 24 * time.Hour

type RegionStats struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type DeadlineWarning struct {
	Region        string    `json:"region"`
	Deadline      time.Time `json:"deadline"`
	DaysRemaining int       `json:"daysRemaining"`
	Count         int       `json:"count"`
}

type Report struct {
	CampaignID string                 `json:"campaignId"`
	Title      string                 `json:"title"`
	Total      int                    `json:"total"`
	PerRegion  map[string]RegionStats `json:"perRegion"`
	Warnings   []DeadlineWarning      `json:"deadlineWarnings"`
}

// Aggregate groups submissions by the campaign's region field and computes
// the per-region counts, shares and upcoming-deadline warnings as of now.
// Submissions without a region value count toward Total only. Percentages
// are computed here on every call, never stored.
func Aggregate(c model.Campaign, subs []model.Submission, now time.Time) Report {
	report := Report{
		CampaignID: c.ID,
		Title:      c.Title,
		Total:      len(subs),
		PerRegion:  map[string]RegionStats{},
		Warnings:   []DeadlineWarning{},
	}

	fieldID, ok := regionFieldID(c)
	if !ok {
		return report
	}

	counts := map[string]int{}
	for _, s := range subs {
		region := strings.TrimSpace(s.Values[fieldID])
		if region == "" {
			continue
		}
		counts[region]++
	}
	for region, n := range counts {
		report.PerRegion[region] = RegionStats{
			Count:   n,
			Percent: 100 * float64(n) / float64(report.Total),
		}
	}

	for region, n := range counts {
		deadline, ok := effectiveDeadline(c, region)
		if !ok {
			continue
		}
		until := deadline.Sub(now)
		if until < 0 || until > warningWindow {
			continue
		}
		report.Warnings = append(report.Warnings, DeadlineWarning{
			Region:        region,
			Deadline:      deadline,
			DaysRemaining: int(until.Hours() / 24),
			Count:         n,
		})
	}
	sort.Slice(report.Warnings, func(i, j int) bool {
		if !report.Warnings[i].Deadline.Equal(report.Warnings[j].Deadline) {
			return report.Warnings[i].Deadline.Before(report.Warnings[j].Deadline)
		}
		return report.Warnings[i].Region < report.Warnings[j].Region
	})

	return report
}

// regionFieldID picks the field whose value is the submission's region:
// the explicitly flagged one if present, else the historical id/label
// convention campaigns created before the flag existed rely on.
func regionFieldID(c model.Campaign) (string, bool) {
	for _, f := range c.Fields {
		if f.Region {
			return f.ID, true
		}
	}
	for _, f := range c.Fields {
		if f.ID == "regione" || strings.EqualFold(f.Label, "regione") {
			return f.ID, true
		}
	}
	return "", false
}

// effectiveDeadline resolves the deadline for a region: the regional
// override if set, else the campaign's general deadline, else none.
func effectiveDeadline(c model.Campaign, region string) (time.Time, bool) {
	if raw, ok := c.RegionalDeadlines[region]; ok {
		if t, err := parseDeadline(raw); err == nil {
			return t, true
		}
	}
	if c.GeneralDeadline != "" {
		if t, err := parseDeadline(c.GeneralDeadline); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseDeadline(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
