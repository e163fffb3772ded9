package reports

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/JimmysRanch/126-sub001/internal/domain"
	"github.com/JimmysRanch/126-sub001/internal/filters"
	m "github.com/JimmysRanch/126-sub001/internal/metrics"
)

func resolvedWindow(start string, end string, compare bool) filters.Resolved {
	state := filters.DefaultState(domain.ReportOwnerOverview)
	state.DatePreset = domain.PresetCustom
	state.StartDate = start
	state.EndDate = end
	state.TimeBasis = domain.TimeBasisCheckout
	state.IncludeDiscounts = true
	state.IncludeRefunds = false
	state.IncludeTips = false
	state.IncludeTaxes = false
	state.CompareMode = compare
	resolved := filters.Resolved{State: state, Primary: filters.Range{Start: start, End: end}}
	if compare {
		cs, ce := filters.ComparisonWindow(start, end)
		resolved.Comparison = &filters.Range{Start: cs, End: ce}
	}
	return resolved
}

func bath(id string) domain.ServiceLine {
	return domain.ServiceLine{ID: id, Name: "Bath & Brush", Category: "Bath", Kind: domain.ServiceKindMain, PriceCents: 10000, DurationMinutes: 60}
}

func scenarioDataset() domain.Dataset {
	appt := func(id string, client string, status string) domain.Appointment {
		return domain.Appointment{
			ID: id, ClientID: client, ClientName: client, StaffID: "s1", StaffName: "Riley",
			ServiceDate: "2024-03-05", StartTime: "09:00", EndTime: "10:00", Status: status,
			Channel: "phone", ClientType: domain.ClientTypeNew, PetSize: "medium",
			Services: []domain.ServiceLine{bath("svc-bath")}, TotalCents: 10000,
		}
	}
	tx := func(id string, apptID string, client string, discount int64) domain.Transaction {
		return domain.Transaction{
			ID: id, AppointmentID: apptID, ClientID: client, Date: "2024-03-05",
			Status: domain.TxStatusCompleted, PaymentMethod: "cash",
			SubtotalCents: 10000, DiscountCents: discount, TotalCents: 10000 - discount,
		}
	}
	return domain.Dataset{
		Appointments: []domain.Appointment{
			appt("a1", "c1", domain.StatusCompleted),
			appt("a2", "c2", domain.StatusCompleted),
			appt("a3", "c3", domain.StatusCancelled),
		},
		Transactions: []domain.Transaction{
			tx("t1", "a1", "c1", 1000),
			tx("t2", "a2", "c2", 0),
			tx("t3", "a3", "c3", 0),
		},
		Staff: []domain.Staff{{ID: "s1", Name: "Riley", Status: "active", HourlyRateCents: 2000, HasHourlyRate: true}},
	}
}

func kpiValue(t *testing.T, report domain.ReportData, id string) domain.KPIValue {
	t.Helper()
	for _, kpi := range report.KPIs {
		if kpi.ID == id {
			return kpi
		}
	}
	t.Fatalf("kpi %s missing from %s", id, report.ReportID)
	return domain.KPIValue{}
}

func TestSalesScenario(t *testing.T) {
	engine := NewEngine(DefaultCostParams())
	report, err := engine.Build(domain.ReportSalesSummary, scenarioDataset(), resolvedWindow("2024-03-01", "2024-03-10", false))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := map[string]float64{
		m.GrossSales: 30000,
		m.Discounts:  1000,
		m.NetSales:   29000,
		m.Refunds:    0,
		m.Taxes:      0,
		m.Tips:       0,
		m.AvgTicket:  14500,
	}
	for id, value := range want {
		if got := kpiValue(t, report, id).Value; got != value {
			t.Fatalf("%s: expected %v, got %v", id, value, got)
		}
	}
	if got := kpiValue(t, report, m.NetSales).Formatted; got != "$290.00" {
		t.Fatalf("unexpected formatted net sales %q", got)
	}

	overview, err := engine.Build(domain.ReportOwnerOverview, scenarioDataset(), resolvedWindow("2024-03-01", "2024-03-10", false))
	if err != nil {
		t.Fatalf("build overview: %v", err)
	}
	if got := kpiValue(t, overview, m.CompletedAppointments).Value; got != 2 {
		t.Fatalf("expected 2 completed appointments, got %v", got)
	}
}

func TestProfitEstimates(t *testing.T) {
	engine := NewEngine(DefaultCostParams())
	report, err := engine.Build(domain.ReportTrueProfit, scenarioDataset(), resolvedWindow("2024-03-01", "2024-03-10", false))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// 15% of 30000 service revenue, 2 completed hours at $20, no card tenders.
	if got := kpiValue(t, report, m.EstimatedCOGS).Value; got != 4500 {
		t.Fatalf("expected cogs 4500, got %v", got)
	}
	if got := kpiValue(t, report, m.DirectLabor).Value; got != 4000 {
		t.Fatalf("expected labor 4000, got %v", got)
	}
	if got := kpiValue(t, report, m.ProcessingFees).Value; got != 0 {
		t.Fatalf("expected no fees for cash, got %v", got)
	}
	if got := kpiValue(t, report, m.ContributionMargin).Value; got != 20500 {
		t.Fatalf("expected margin 20500, got %v", got)
	}
}

func TestCardFeesUseConfiguredParams(t *testing.T) {
	ds := scenarioDataset()
	for i := range ds.Transactions {
		ds.Transactions[i].PaymentMethod = "credit_card"
	}
	engine := NewEngine(CostParams{COGSRate: 0, CardFeeRate: 0.03, CardFeeFixedCents: 25, StaffHoursPerDay: 8})
	report, err := engine.Build(domain.ReportTrueProfit, ds, resolvedWindow("2024-03-01", "2024-03-10", false))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// 3% of 29000 collected plus 3 x 25 fixed.
	if got := kpiValue(t, report, m.ProcessingFees).Value; got != 945 {
		t.Fatalf("expected fees 945, got %v", got)
	}
}

func TestRefundedCardSalesCarryNoFee(t *testing.T) {
	ds := scenarioDataset()
	for i := range ds.Transactions {
		ds.Transactions[i].PaymentMethod = "credit_card"
	}
	ds.Transactions[2].Status = domain.TxStatusRefunded
	ds.Transactions[2].RefundCents = 10000
	engine := NewEngine(CostParams{COGSRate: 0, CardFeeRate: 0.03, CardFeeFixedCents: 25, StaffHoursPerDay: 8})
	report, err := engine.Build(domain.ReportTrueProfit, ds, resolvedWindow("2024-03-01", "2024-03-10", false))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// 3% of 19000 collected plus 2 x 25 fixed; t3 was refunded.
	if got := kpiValue(t, report, m.ProcessingFees).Value; got != 620 {
		t.Fatalf("expected fees 620, got %v", got)
	}
}

func TestRebookingScenario(t *testing.T) {
	visit := func(id string, client string, date string) domain.Appointment {
		return domain.Appointment{ID: id, ClientID: client, StaffID: "s1", StaffName: "Riley", ServiceDate: date, Status: domain.StatusCompleted}
	}
	ds := domain.Dataset{Appointments: []domain.Appointment{
		visit("a1", "c1", "2024-01-01"),
		visit("a2", "c1", "2024-01-06"),
		visit("a3", "c2", "2024-01-01"),
		visit("a4", "c2", "2024-02-10"),
	}}

	report, err := NewEngine(DefaultCostParams()).Build(domain.ReportRetentionRebooking, ds, resolvedWindow("2024-01-01", "2024-03-31", false))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := map[string]float64{
		m.Rebook24h:       0,
		m.Rebook7d:        0.5,
		m.Rebook30d:       0.5,
		m.ReturnRate90:    1,
		m.AvgDaysToReturn: 22.5,
	}
	for id, value := range want {
		if got := kpiValue(t, report, id).Value; got != value {
			t.Fatalf("%s: expected %v, got %v", id, value, got)
		}
	}
	if got := kpiValue(t, report, m.Rebook7d).Formatted; got != "50.0%" {
		t.Fatalf("unexpected formatted rebook rate %q", got)
	}
}

func TestEmptyDatasetHasZeroRatios(t *testing.T) {
	engine := NewEngine(DefaultCostParams())
	for _, id := range IDs() {
		report, err := engine.Build(id, domain.Dataset{}, resolvedWindow("2024-03-01", "2024-03-10", true))
		if err != nil {
			t.Fatalf("%s: build: %v", id, err)
		}
		for _, kpi := range report.KPIs {
			if math.IsNaN(kpi.Value) || math.IsInf(kpi.Value, 0) || kpi.Value != 0 {
				t.Fatalf("%s: expected %s to be 0, got %v", id, kpi.ID, kpi.Value)
			}
			if kpi.Trend != domain.TrendFlat {
				t.Fatalf("%s: expected flat trend for %s, got %s", id, kpi.ID, kpi.Trend)
			}
		}
		if _, err := json.Marshal(report); err != nil {
			t.Fatalf("%s: report must encode: %v", id, err)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	engine := NewEngine(DefaultCostParams())
	ds := scenarioDataset()
	ds.Appointments = append(ds.Appointments, domain.Appointment{
		ID: "a4", ClientID: "c1", StaffID: "s2", StaffName: "Sam", ServiceDate: "2024-03-07",
		StartTime: "13:00", EndTime: "14:30", Status: domain.StatusNoShow, Channel: "online",
		Services: []domain.ServiceLine{bath("svc-bath"), {ID: "svc-nails", Name: "Nail Trim", Category: domain.AddOnCategory, Kind: domain.ServiceKindAddon, PriceCents: 1500, DurationMinutes: 15}},
	})
	ds.Staff = append(ds.Staff, domain.Staff{ID: "s2", Name: "Sam", Status: "active"})

	for _, id := range IDs() {
		first, err := engine.Build(id, ds, resolvedWindow("2024-03-01", "2024-03-10", true))
		if err != nil {
			t.Fatalf("%s: build: %v", id, err)
		}
		second, _ := engine.Build(id, ds, resolvedWindow("2024-03-01", "2024-03-10", true))
		a, _ := json.Marshal(first)
		b, _ := json.Marshal(second)
		if !bytes.Equal(a, b) {
			t.Fatalf("%s: output differs between runs", id)
		}
	}
}

func TestUnknownReport(t *testing.T) {
	_, err := NewEngine(DefaultCostParams()).Build("weekly-digest", domain.Dataset{}, resolvedWindow("2024-03-01", "2024-03-10", false))
	if !errors.Is(err, ErrUnknownReport) {
		t.Fatalf("expected ErrUnknownReport, got %v", err)
	}
}

func TestCompareModeDeltas(t *testing.T) {
	ds := scenarioDataset()
	ds.Transactions = append(ds.Transactions, domain.Transaction{
		ID: "t0", ClientID: "c1", Date: "2024-02-25", Status: domain.TxStatusCompleted,
		PaymentMethod: "cash", SubtotalCents: 5000, TotalCents: 5000,
	})

	report, err := NewEngine(DefaultCostParams()).Build(domain.ReportSalesSummary, ds, resolvedWindow("2024-03-01", "2024-03-10", true))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if report.CompareStartDate != "2024-02-20" || report.CompareEndDate != "2024-02-29" {
		t.Fatalf("unexpected comparison window %s..%s", report.CompareStartDate, report.CompareEndDate)
	}
	net := kpiValue(t, report, m.NetSales)
	if net.Delta == nil || *net.Delta != 24000 {
		t.Fatalf("expected net sales delta 24000, got %v", net.Delta)
	}
	if net.Trend != domain.TrendUp || net.FormattedDelta != "+$240.00" {
		t.Fatalf("unexpected trend %s / %s", net.Trend, net.FormattedDelta)
	}
	if len(report.Charts) == 0 || len(report.Charts[0].CompareSeries) != 1 {
		t.Fatalf("expected comparison series on the trend chart")
	}
}

func TestTableGroupByAndVisibleColumns(t *testing.T) {
	resolved := resolvedWindow("2024-03-01", "2024-03-10", false)
	resolved.State.GroupBy = DimStatus
	resolved.State.VisibleColumns = []string{m.TotalAppointments, "unknownColumn"}

	report, err := NewEngine(DefaultCostParams()).Build(domain.ReportAppointmentsCapacity, scenarioDataset(), resolved)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	table := report.Table
	if table.GroupBy != DimStatus {
		t.Fatalf("expected status grouping, got %s", table.GroupBy)
	}
	if len(table.Columns) != 1 || table.Columns[0].ID != m.TotalAppointments {
		t.Fatalf("unexpected columns %+v", table.Columns)
	}
	if len(table.Rows) != 2 || table.Rows[0].Label != domain.StatusCompleted || table.Rows[0].Values[m.TotalAppointments] != 2 {
		t.Fatalf("unexpected rows %+v", table.Rows)
	}
	drill := table.Rows[0].Drill
	if drill == nil || drill.Filter["status"] != domain.StatusCompleted || drill.Filter["startDate"] != "2024-03-01" {
		t.Fatalf("unexpected drill %+v", drill)
	}
}

func TestServiceMixSplitsLineRevenue(t *testing.T) {
	ds := scenarioDataset()
	ds.Appointments[0].Services = append(ds.Appointments[0].Services, domain.ServiceLine{
		ID: "svc-teeth", Name: "Teeth Brushing", Category: domain.AddOnCategory, Kind: domain.ServiceKindAddon, PriceCents: 1500, DurationMinutes: 15,
	})

	report, err := NewEngine(DefaultCostParams()).Build(domain.ReportServiceMix, ds, resolvedWindow("2024-03-01", "2024-03-10", false))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	rows := report.Table.Rows
	if len(rows) != 2 {
		t.Fatalf("expected 2 service rows, got %d", len(rows))
	}
	if rows[0].Label != "Bath & Brush" || rows[0].Values[colLineRevenue] != 20000 || rows[0].Values[colTimesSold] != 2 {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if share := rows[1].Values[colRevenueShare]; math.Abs(share-1500.0/21500.0) > 1e-9 {
		t.Fatalf("unexpected add-on share %v", share)
	}
}

func TestInventoryReportInsights(t *testing.T) {
	ds := scenarioDataset()
	ds.Inventory = []domain.InventoryItem{
		{ID: "inv-1", Name: "Oatmeal Shampoo", Category: "Shampoo", UnitCostCents: 150, QuantityOnHand: 2, ReorderLevel: 5, LinkedServiceIDs: []string{"svc-bath"}},
	}
	report, err := NewEngine(DefaultCostParams()).Build(domain.ReportInventoryUsage, ds, resolvedWindow("2024-03-01", "2024-03-10", false))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := kpiValue(t, report, m.InventoryUsageCost).Value; got != 300 {
		t.Fatalf("expected usage cost 300, got %v", got)
	}
	if got := kpiValue(t, report, m.LowStockItems).Value; got != 1 {
		t.Fatalf("expected one low stock item, got %v", got)
	}
	if len(report.Insights) != 1 || report.Insights[0].ID != "inventory-risk" {
		t.Fatalf("unexpected insights %+v", report.Insights)
	}
	if report.Table.Rows[0].Values[colUnitsUsed] != 2 {
		t.Fatalf("expected 2 units used, got %v", report.Table.Rows[0].Values[colUnitsUsed])
	}
}

func TestDimensionChartKeepsGroupsWithSharedLabels(t *testing.T) {
	ds := scenarioDataset()
	ds.Appointments[0].StaffName = ""
	ds.Appointments[1].StaffID = "s2"
	ds.Appointments[1].StaffName = ""

	report, err := NewEngine(DefaultCostParams()).Build(domain.ReportOwnerOverview, ds, resolvedWindow("2024-03-01", "2024-03-10", true))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var chart domain.ChartData
	for _, candidate := range report.Charts {
		if candidate.ID == "net-sales-by-staff" {
			chart = candidate
		}
	}
	points := chart.Series[0].Points
	if len(points) != 2 {
		t.Fatalf("expected one point per staff member, got %+v", points)
	}
	got := map[float64]bool{}
	for _, p := range points {
		if p.X != domain.UnknownLabel {
			t.Fatalf("expected unnamed staff labelled %s, got %q", domain.UnknownLabel, p.X)
		}
		got[p.Y] = true
	}
	// s1 settles t1 (9000 after discount) and t3; s2 settles t2.
	if !got[19000] || !got[10000] {
		t.Fatalf("expected separate totals per staff member, got %+v", points)
	}
	if len(chart.CompareSeries) != 1 || len(chart.CompareSeries[0].Points) != 2 {
		t.Fatalf("comparison must follow the primary groups, got %+v", chart.CompareSeries)
	}
}
