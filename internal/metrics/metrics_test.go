package metrics

import (
	"strings"
	"testing"

	"github.com/JimmysRanch/126-sub001/internal/domain"
)

func TestFormatValue(t *testing.T) {
	cases := []struct {
		value  float64
		format string
		want   string
	}{
		{value: 123456, format: domain.FormatMoney, want: "$1,234.56"},
		{value: -2550, format: domain.FormatMoney, want: "-$25.50"},
		{value: 0, format: domain.FormatMoney, want: "$0.00"},
		{value: 0.1234, format: domain.FormatPercent, want: "12.3%"},
		{value: 0.5, format: domain.FormatPercent, want: "50.0%"},
		{value: 92.6, format: domain.FormatMinutes, want: "93 min"},
		{value: 1234567, format: domain.FormatInt, want: "1,234,567"},
		{value: 22.5, format: domain.FormatInt, want: "23"},
	}
	for _, tc := range cases {
		if got := FormatValue(tc.value, tc.format); got != tc.want {
			t.Fatalf("FormatValue(%v, %s): expected %q, got %q", tc.value, tc.format, tc.want, got)
		}
	}
}

func TestFormatDeltaSign(t *testing.T) {
	if got := FormatDelta(2500, domain.FormatMoney); got != "+$25.00" {
		t.Fatalf("unexpected positive delta %q", got)
	}
	if got := FormatDelta(-0.052, domain.FormatPercent); got != "-5.2%" {
		t.Fatalf("unexpected negative delta %q", got)
	}
	if got := FormatDelta(0, domain.FormatInt); got != "0" {
		t.Fatalf("unexpected zero delta %q", got)
	}
}

func TestKPIWithComparison(t *testing.T) {
	previous := 20000.0
	kpi := KPI(NetSales, 29000, &previous)
	if kpi.Label != "Net Sales" || kpi.Format != domain.FormatMoney || kpi.Formatted != "$290.00" {
		t.Fatalf("unexpected kpi %+v", kpi)
	}
	if kpi.Delta == nil || *kpi.Delta != 9000 || kpi.Trend != domain.TrendUp || kpi.FormattedDelta != "+$90.00" {
		t.Fatalf("unexpected delta fields %+v", kpi)
	}
	if !strings.Contains(kpi.Tooltip, "Formula: gross sales - discounts - refunds") {
		t.Fatalf("tooltip missing formula: %q", kpi.Tooltip)
	}
	if len(kpi.DrillRowTypes) == 0 {
		t.Fatalf("expected drill row types")
	}
}

func TestKPIWithoutComparisonIsFlat(t *testing.T) {
	kpi := KPI(NoShowRate, 0.1, nil)
	if kpi.Delta != nil || kpi.Trend != domain.TrendFlat || kpi.FormattedDelta != "" {
		t.Fatalf("unexpected kpi %+v", kpi)
	}
}

func TestUnknownMetricFallsBack(t *testing.T) {
	kpi := KPI("mysteryMetric", 12, nil)
	if kpi.Label != "mysteryMetric" || kpi.Tooltip != "" || kpi.Format != domain.FormatInt || kpi.Formatted != "12" {
		t.Fatalf("unexpected fallback kpi %+v", kpi)
	}
}

func TestCatalogIsConsistent(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range All() {
		if seen[def.ID] {
			t.Fatalf("duplicate metric id %s", def.ID)
		}
		seen[def.ID] = true
		if def.Label == "" || def.Definition == "" || def.Formula == "" {
			t.Fatalf("metric %s is missing text", def.ID)
		}
		switch def.Format {
		case domain.FormatMoney, domain.FormatPercent, domain.FormatInt, domain.FormatMinutes:
		default:
			t.Fatalf("metric %s has unknown format %q", def.ID, def.Format)
		}
		if len(def.DrillRowTypes) == 0 {
			t.Fatalf("metric %s has no drill row types", def.ID)
		}
	}
}

func TestReferenceHTML(t *testing.T) {
	html, err := ReferenceHTML()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "<h2>Contribution Margin</h2>") {
		t.Fatalf("expected a heading per metric")
	}
	if !strings.Contains(html, "<strong>Formula:</strong>") {
		t.Fatalf("expected formula labels in html")
	}
}
