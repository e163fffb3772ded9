// Package insights turns a computed report into at most three short
// narrative call-outs using fixed threshold rules.
package insights

import (
	"fmt"
	"math"

	"github.com/JimmysRanch/126-sub001/internal/domain"
)

// MaxItems caps the insights attached to one report.
const MaxItems = 3

const (
	spikeMinCancellations = 5
	spikeGrowth           = 0.15
	marginDropThreshold   = -0.05
	rebookDropThreshold   = -0.10
)

const (
	metricContributionMarginPct = "contributionMarginPct"
	metricRebook7d              = "rebook7d"
)

// Input is everything the rules look at. KPIs carry deltas only when the
// report ran in compare mode. Scope holds the report's selections as drill
// filter entries and is copied into every insight drill.
type Input struct {
	ReportID            string
	StartDate           string
	EndDate             string
	Scope               map[string]string
	HasComparison       bool
	KPIs                []domain.KPIValue
	Appointments        []domain.Appointment
	CompareAppointments []domain.Appointment
	Transactions        []domain.Transaction
	CompareTransactions []domain.Transaction
}

func (in Input) kpi(id string) (domain.KPIValue, bool) {
	for _, kpi := range in.KPIs {
		if kpi.ID == id {
			return kpi, true
		}
	}
	return domain.KPIValue{}, false
}

func (in Input) window(filter map[string]string) map[string]string {
	out := make(map[string]string, len(in.Scope)+len(filter)+2)
	for key, value := range in.Scope {
		out[key] = value
	}
	out["startDate"] = in.StartDate
	out["endDate"] = in.EndDate
	for key, value := range filter {
		out[key] = value
	}
	return out
}

// Rule is one heuristic. Applies decides; Build renders the item.
type Rule struct {
	ID      string
	Applies func(Input) bool
	Build   func(Input) domain.InsightsItem
}

// Rules is evaluated in order; earlier rules win when more than MaxItems
// fire.
var Rules = []Rule{
	{ID: "cancellation-spike", Applies: cancellationSpike, Build: buildCancellationSpike},
	{ID: "margin-drop", Applies: marginDrop, Build: buildMarginDrop},
	{ID: "rebook-weakness", Applies: rebookWeakness, Build: buildRebookWeakness},
	{ID: "inventory-risk", Applies: forReport(domain.ReportInventoryUsage), Build: buildInventoryRisk},
	{ID: "marketing-roi", Applies: forReport(domain.ReportMarketingMessaging), Build: buildMarketingROI},
}

// Generate evaluates Rules against in.
func Generate(in Input) []domain.InsightsItem {
	return Evaluate(Rules, in)
}

// Evaluate runs rules in order and keeps the first MaxItems matches.
func Evaluate(rules []Rule, in Input) []domain.InsightsItem {
	items := make([]domain.InsightsItem, 0, MaxItems)
	for _, rule := range rules {
		if len(items) == MaxItems {
			break
		}
		if !rule.Applies(in) {
			continue
		}
		item := rule.Build(in)
		if item.ID == "" {
			item.ID = rule.ID
		}
		items = append(items, item)
	}
	return items
}

func countStatus(appts []domain.Appointment, status string) int {
	count := 0
	for _, appt := range appts {
		if appt.Status == status {
			count++
		}
	}
	return count
}

func cancellationGrowth(in Input) (int, int, float64) {
	current := countStatus(in.Appointments, domain.StatusCancelled)
	previous := countStatus(in.CompareAppointments, domain.StatusCancelled)
	if previous == 0 {
		if current == 0 {
			return current, previous, 0
		}
		return current, previous, math.Inf(1)
	}
	return current, previous, float64(current-previous) / float64(previous)
}

func cancellationSpike(in Input) bool {
	if !in.HasComparison {
		return false
	}
	current, _, growth := cancellationGrowth(in)
	return current >= spikeMinCancellations && growth > spikeGrowth
}

func buildCancellationSpike(in Input) domain.InsightsItem {
	current, previous, growth := cancellationGrowth(in)
	description := fmt.Sprintf("%d cancellations this period, up from %d in the previous period.", current, previous)
	if !math.IsInf(growth, 0) {
		description = fmt.Sprintf("%d cancellations this period, up %.0f%% from %d in the previous period.", current, growth*100, previous)
	}
	delta := float64(current - previous)
	return domain.InsightsItem{
		ID:          "cancellation-spike",
		Title:       "Cancellations are spiking",
		Description: description,
		MetricID:    "cancelledAppointments",
		Delta:       &delta,
		Action:      "Send day-before reminders and review the cancellation policy.",
		Drill: &domain.DrillRequest{
			Title:    "Cancelled appointments",
			RowTypes: []string{domain.RowAppointments},
			Filter:   in.window(map[string]string{"status": domain.StatusCancelled}),
		},
	}
}

func deltaBelow(in Input, id string, threshold float64) bool {
	kpi, ok := in.kpi(id)
	return ok && kpi.Delta != nil && *kpi.Delta < threshold
}

func marginDrop(in Input) bool {
	return deltaBelow(in, metricContributionMarginPct, marginDropThreshold)
}

func buildMarginDrop(in Input) domain.InsightsItem {
	kpi, _ := in.kpi(metricContributionMarginPct)
	return domain.InsightsItem{
		ID:          "margin-drop",
		Title:       "Contribution margin is slipping",
		Description: fmt.Sprintf("Contribution margin is %s, %s versus the previous period.", kpi.Formatted, kpi.FormattedDelta),
		MetricID:    kpi.ID,
		Delta:       kpi.Delta,
		Action:      "Check discounting, labor hours and supply costs on recent tickets.",
		Drill: &domain.DrillRequest{
			Title:    "Transactions in period",
			RowTypes: []string{domain.RowTransactions},
			Filter:   in.window(nil),
		},
	}
}

func rebookWeakness(in Input) bool {
	return deltaBelow(in, metricRebook7d, rebookDropThreshold)
}

func buildRebookWeakness(in Input) domain.InsightsItem {
	kpi, _ := in.kpi(metricRebook7d)
	return domain.InsightsItem{
		ID:          "rebook-weakness",
		Title:       "Fewer clients are rebooking",
		Description: fmt.Sprintf("7-day rebooking is %s, %s versus the previous period.", kpi.Formatted, kpi.FormattedDelta),
		MetricID:    kpi.ID,
		Delta:       kpi.Delta,
		Action:      "Offer the next appointment at checkout before the client leaves.",
		Drill: &domain.DrillRequest{
			Title:    "Completed appointments",
			RowTypes: []string{domain.RowAppointments, domain.RowClients},
			Filter:   in.window(map[string]string{"status": domain.StatusCompleted}),
		},
	}
}

func forReport(reportID string) func(Input) bool {
	return func(in Input) bool {
		return in.ReportID == reportID
	}
}

func buildInventoryRisk(in Input) domain.InsightsItem {
	description := "Review items at or below their reorder level before the next busy week."
	if kpi, ok := in.kpi("lowStockItems"); ok && kpi.Value > 0 {
		description = fmt.Sprintf("%s items are at or below their reorder level.", kpi.Formatted)
	}
	return domain.InsightsItem{
		ID:          "inventory-risk",
		Title:       "Watch stock levels",
		Description: description,
		MetricID:    "lowStockItems",
		Action:      "Reorder shampoo and supplies linked to your top services.",
		Drill: &domain.DrillRequest{
			Title:    "Inventory",
			RowTypes: []string{domain.RowInventory},
			Filter:   map[string]string{},
		},
	}
}

func buildMarketingROI(in Input) domain.InsightsItem {
	return domain.InsightsItem{
		ID:          "marketing-roi",
		Title:       "Compare campaign cost to bookings",
		Description: "Campaigns with a high cost per confirmation are worth pausing or retargeting.",
		MetricID:    "costPerConfirmation",
		Action:      "Shift spend toward the campaigns with the best confirmation rate.",
		Drill: &domain.DrillRequest{
			Title:    "Messages in period",
			RowTypes: []string{domain.RowMessages},
			Filter:   in.window(nil),
		},
	}
}
