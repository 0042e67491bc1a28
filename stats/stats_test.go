package stats

import (
	"math"
	"testing"
	"time"

	"github.com/luigilocane-sketch/ricorsi-sinafi/model"
)

func regionCampaign() model.Campaign {
	return model.Campaign{
		ID:    "c1",
		Title: "Ricorso Test",
		Fields: []model.Field{
			{ID: "nome", Label: "Nome", Type: model.FieldText},
			{ID: "regione", Label: "Regione", Type: model.FieldSelect, Region: true},
		},
	}
}

func sub(region string) model.Submission {
	values := map[string]string{}
	if region != "" {
		values["regione"] = region
	}
	return model.Submission{Values: values}
}

func TestAggregateCounts(t *testing.T) {
	subs := []model.Submission{
		sub("Lazio"), sub("Lazio"), sub("Lazio"),
		sub("Lombardia"),
		sub(""), // no region: total only
	}

	report := Aggregate(regionCampaign(), subs, time.Now())

	if report.Total != 5 {
		t.Errorf("total: expected 5, got %d", report.Total)
	}
	if report.PerRegion["Lazio"].Count != 3 {
		t.Errorf("Lazio: expected 3, got %d", report.PerRegion["Lazio"].Count)
	}
	if report.PerRegion["Lombardia"].Count != 1 {
		t.Errorf("Lombardia: expected 1, got %d", report.PerRegion["Lombardia"].Count)
	}
	if len(report.PerRegion) != 2 {
		t.Errorf("expected 2 regions, got %v", report.PerRegion)
	}

	sum := 0.0
	counted := 0
	for _, rs := range report.PerRegion {
		sum += rs.Percent
		counted += rs.Count
	}
	// the region-less submission keeps the shares from reaching 100
	want := 100 * float64(counted) / float64(report.Total)
	if math.Abs(sum-want) > 1e-9 {
		t.Errorf("percentages: expected sum %f, got %f", want, sum)
	}
}

func TestAggregateNoRegionField(t *testing.T) {
	campaign := model.Campaign{
		ID:     "c2",
		Fields: []model.Field{{ID: "nome", Label: "Nome", Type: model.FieldText}},
	}
	report := Aggregate(campaign, []model.Submission{sub("Lazio")}, time.Now())
	if report.Total != 1 || len(report.PerRegion) != 0 || len(report.Warnings) != 0 {
		t.Errorf("expected total-only report, got %+v", report)
	}
}

func TestRegionFieldFallbackConvention(t *testing.T) {
	// campaigns created before the explicit flag rely on the id/label name
	campaign := model.Campaign{
		Fields: []model.Field{
			{ID: "x1", Label: "Regione", Type: model.FieldSelect},
		},
	}
	report := Aggregate(campaign, []model.Submission{
		{Values: map[string]string{"x1": "Sicilia"}},
	}, time.Now())
	if report.PerRegion["Sicilia"].Count != 1 {
		t.Errorf("label convention not honored: %+v", report.PerRegion)
	}

	// the explicit flag wins over the convention
	campaign.Fields = append(campaign.Fields, model.Field{ID: "x2", Label: "Altro", Region: true})
	report = Aggregate(campaign, []model.Submission{
		{Values: map[string]string{"x1": "Sicilia", "x2": "Puglia"}},
	}, time.Now())
	if report.PerRegion["Puglia"].Count != 1 || report.PerRegion["Sicilia"].Count != 0 {
		t.Errorf("explicit flag not preferred: %+v", report.PerRegion)
	}
}

func TestDeadlineWarningWindow(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deadline time.Time
		warned   bool
		daysLeft int
	}{
		{"29 days away", now.Add(29 * 24 * time.Hour), true, 29},
		{"exactly 30 days", now.Add(30 * 24 * time.Hour), true, 30},
		{"30 days and one second", now.Add(30*24*time.Hour + time.Second), false, 0},
		{"already past", now.Add(-time.Hour), false, 0},
		{"today", now, true, 0},
	}
	for _, tt := range tests {
		campaign := regionCampaign()
		campaign.RegionalDeadlines = map[string]string{
			"Lazio": tt.deadline.Format(time.RFC3339),
		}
		report := Aggregate(campaign, []model.Submission{sub("Lazio"), sub("Lazio")}, now)

		if !tt.warned {
			if len(report.Warnings) != 0 {
				t.Errorf("%s: unexpected warning %+v", tt.name, report.Warnings)
			}
			continue
		}
		if len(report.Warnings) != 1 {
			t.Fatalf("%s: expected 1 warning, got %+v", tt.name, report.Warnings)
		}
		warn := report.Warnings[0]
		if warn.Region != "Lazio" || warn.Count != 2 || warn.DaysRemaining != tt.daysLeft {
			t.Errorf("%s: unexpected warning %+v", tt.name, warn)
		}
	}
}

func TestDeadlineFallsBackToGeneral(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	campaign := regionCampaign()
	campaign.GeneralDeadline = now.Add(10 * 24 * time.Hour).Format(time.RFC3339)
	campaign.RegionalDeadlines = map[string]string{
		"Lazio": now.Add(5 * 24 * time.Hour).Format(time.RFC3339),
	}

	report := Aggregate(campaign, []model.Submission{sub("Lazio"), sub("Veneto")}, now)
	if len(report.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %+v", report.Warnings)
	}
	// sorted by deadline: the regional override comes first
	if report.Warnings[0].Region != "Lazio" || report.Warnings[0].DaysRemaining != 5 {
		t.Errorf("unexpected first warning %+v", report.Warnings[0])
	}
	if report.Warnings[1].Region != "Veneto" || report.Warnings[1].DaysRemaining != 10 {
		t.Errorf("unexpected second warning %+v", report.Warnings[1])
	}
}

func TestRegionWithoutDeadlineNeverWarned(t *testing.T) {
	campaign := regionCampaign()
	report := Aggregate(campaign, []model.Submission{sub("Lazio")}, time.Now())
	if len(report.Warnings) != 0 {
		t.Errorf("expected no warnings without deadlines, got %+v", report.Warnings)
	}
}

func TestDateOnlyDeadlines(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	campaign := regionCampaign()
	campaign.RegionalDeadlines = map[string]string{"Lazio": "2026-09-15"}

	report := Aggregate(campaign, []model.Submission{sub("Lazio")}, now)
	if len(report.Warnings) != 1 || report.Warnings[0].DaysRemaining != 15 {
		t.Errorf("date-only deadline not handled: %+v", report.Warnings)
	}
}
