package reports

import (
	"github.com/JimmysRanch/126-sub001/internal/domain"
	m "github.com/JimmysRanch/126-sub001/internal/metrics"
)

// reportSpec is everything that differs between reports. Shared
// aggregates are computed once per window before any builder runs.
type reportSpec struct {
	title  string
	kpis   []string
	charts []chartBuilder
	table  tableBuilder
}

var (
	apptDims  = []string{DimStaff, DimService, DimCategory, DimChannel, DimPetSize, DimClientType, DimStatus, DimWeekday, DimDay}
	salesDims = []string{DimStaff, DimService, DimCategory, DimChannel, DimPetSize, DimClientType, DimPaymentMethod, DimWeekday, DimDay}
	msgDims   = []string{DimCampaign, DimMessageChannel, DimWeekday, DimDay}
)

var (
	txRows   = []string{domain.RowTransactions}
	apptRows = []string{domain.RowAppointments}
	bothRows = []string{domain.RowAppointments, domain.RowTransactions}
)

var catalog = map[string]reportSpec{
	domain.ReportOwnerOverview: {
		title: "Owner Overview",
		kpis:  []string{m.NetSales, m.ContributionMargin, m.ContributionMarginPct, m.AvgTicket, m.CompletedAppointments, m.Utilization, m.NoShowRate, m.Rebook7d},
		charts: []chartBuilder{
			dailyLine("net-sales-trend", "Net sales by day", m.NetSales),
			byDimension("net-sales-by-staff", "Net sales by staff", domain.ChartBar, DimStaff, m.NetSales),
			lineRevenue("revenue-by-category", "Service revenue by category", domain.ChartDonut, DimCategory),
		},
		table: groupTable("Performance by staff", DimStaff, salesDims,
			[]string{m.NetSales, m.CompletedAppointments, m.AvgTicket, m.BookedMinutes, m.Utilization}, bothRows),
	},
	domain.ReportTrueProfit: {
		title: "True Profit",
		kpis:  []string{m.NetSales, m.EstimatedCOGS, m.DirectLabor, m.ProcessingFees, m.ContributionMargin, m.ContributionMarginPct, m.GrossMarginPct},
		charts: []chartBuilder{
			metricBars("profit-bridge", "From net sales to contribution margin", m.NetSales, m.EstimatedCOGS, m.DirectLabor, m.ProcessingFees, m.ContributionMargin),
			dailyLine("margin-trend", "Contribution margin by day", m.ContributionMargin, m.NetSales),
			byDimension("margin-by-staff", "Contribution margin by staff", domain.ChartBar, DimStaff, m.ContributionMargin),
		},
		table: groupTable("Profit by category", DimCategory, salesDims,
			[]string{m.NetSales, m.EstimatedCOGS, m.DirectLabor, m.ProcessingFees, m.ContributionMargin, m.ContributionMarginPct}, bothRows),
	},
	domain.ReportSalesSummary: {
		title: "Sales Summary",
		kpis:  []string{m.GrossSales, m.Discounts, m.Refunds, m.NetSales, m.Taxes, m.Tips, m.TotalCollected, m.TransactionCount, m.AvgTicket},
		charts: []chartBuilder{
			dailyLine("sales-trend", "Gross and net sales by day", m.GrossSales, m.NetSales),
			metricBars("sales-mix", "Services and retail", m.ServiceRevenue, m.ProductRevenue, m.GiftCardSales),
			byDimension("sales-by-payment", "Net sales by payment method", domain.ChartDonut, DimPaymentMethod, m.NetSales),
		},
		table: groupTable("Sales by payment method", DimPaymentMethod, salesDims,
			[]string{m.NetSales, m.TransactionCount, m.GrossSales, m.Discounts, m.Refunds, m.Tips}, txRows),
	},
	domain.ReportFinanceReconciliation: {
		title: "Finance & Reconciliation",
		kpis:  []string{m.TotalCollected, m.NetSales, m.Taxes, m.Tips, m.Refunds, m.GiftCardSales, m.ProcessingFees},
		charts: []chartBuilder{
			stacked("collected-by-payment", "Collected by payment method", DimPaymentMethod, m.NetSales, m.Taxes, m.Tips),
			dailyLine("collected-trend", "Total collected by day", m.TotalCollected),
		},
		table: groupTable("Daily reconciliation", DimDay, []string{DimDay, DimPaymentMethod},
			[]string{m.TotalCollected, m.TransactionCount, m.NetSales, m.Taxes, m.Tips, m.Refunds, m.ProcessingFees}, txRows),
	},
	domain.ReportAppointmentsCapacity: {
		title: "Appointments & Capacity",
		kpis:  []string{m.TotalAppointments, m.CompletedAppointments, m.BookedMinutes, m.AvailableMinutes, m.Utilization, m.AvgAppointmentMinutes, m.RevenuePerBookedHour},
		charts: []chartBuilder{
			dailyLine("appointments-trend", "Appointments by day", m.TotalAppointments),
			weekdayHourHeatmap("busy-hours", "Bookings by weekday and hour"),
			byDimension("utilization-by-staff", "Utilization by staff", domain.ChartBar, DimStaff, m.Utilization),
		},
		table: groupTable("Capacity by staff", DimStaff, apptDims,
			[]string{m.TotalAppointments, m.CompletedAppointments, m.BookedMinutes, m.AvailableMinutes, m.Utilization}, apptRows),
	},
	domain.ReportNoShowsCancellations: {
		title: "No-Shows & Cancellations",
		kpis:  []string{m.NoShowAppointments, m.NoShowRate, m.CancelledAppointments, m.CancellationRate, m.TotalAppointments},
		charts: []chartBuilder{
			crossStack("status-by-weekday", "Appointment status by weekday", DimWeekday, DimStatus, false),
			byDimension("no-show-rate-by-channel", "No-show rate by booking channel", domain.ChartBar, DimChannel, m.NoShowRate),
			dailyLine("cancellations-trend", "Cancellations by day", m.CancelledAppointments, m.NoShowAppointments),
		},
		table: groupTable("No-shows and cancellations by staff", DimStaff, apptDims,
			[]string{m.NoShowAppointments, m.CancelledAppointments, m.TotalAppointments, m.NoShowRate, m.CancellationRate}, apptRows),
	},
	domain.ReportRetentionRebooking: {
		title: "Retention & Rebooking",
		kpis:  []string{m.Rebook24h, m.Rebook7d, m.Rebook30d, m.ReturnRate90, m.AvgDaysToReturn, m.NewClients, m.ReturningClients},
		charts: []chartBuilder{
			metricBars("rebook-windows", "Rebooking by window", m.Rebook24h, m.Rebook7d, m.Rebook30d, m.ReturnRate90),
			byDimension("rebook-by-staff", "7-day rebooking by staff", domain.ChartBar, DimStaff, m.Rebook7d),
			byDimension("clients-by-type", "Clients by type", domain.ChartDonut, DimClientType, m.UniqueClients),
		},
		table: groupTable("Rebooking by staff", DimStaff, apptDims,
			[]string{m.UniqueClients, m.Rebook7d, m.Rebook30d, m.ReturnRate90, m.AvgDaysToReturn}, []string{domain.RowClients, domain.RowAppointments}),
	},
	domain.ReportClientCohorts: {
		title: "Client Cohorts",
		kpis:  []string{m.UniqueClients, m.NewClients, m.ReturningClients, m.AvgRevenuePerClient, m.ReturnRate90},
		charts: []chartBuilder{
			cohortHeatmap("cohort-retention", "Share of each cohort visiting by month"),
			dailyLine("new-clients-trend", "New and returning clients by day", m.NewClients, m.ReturningClients),
		},
		table: cohortTable,
	},
	domain.ReportStaffPerformance: {
		title: "Staff Performance",
		kpis:  []string{m.NetSales, m.CompletedAppointments, m.Tips, m.AvgTicket, m.Utilization, m.RevenuePerBookedHour, m.DirectLabor},
		charts: []chartBuilder{
			byDimension("net-sales-by-staff", "Net sales by staff", domain.ChartBar, DimStaff, m.NetSales),
			staffScatter("staff-efficiency", "Utilization against revenue per booked hour", m.Utilization, m.RevenuePerBookedHour),
			byDimension("tips-by-staff", "Tips by staff", domain.ChartBar, DimStaff, m.Tips),
		},
		table: groupTable("Staff scorecard", DimStaff, []string{DimStaff},
			[]string{m.NetSales, m.CompletedAppointments, m.Tips, m.AvgTicket, m.BookedMinutes, m.Utilization, m.RevenuePerBookedHour, m.DirectLabor}, []string{domain.RowAppointments, domain.RowTransactions, domain.RowStaff}),
	},
	domain.ReportServiceMix: {
		title: "Service Mix",
		kpis:  []string{m.ServiceRevenue, m.ProductRevenue, m.CompletedAppointments, m.AvgTicket, m.AvgAppointmentMinutes},
		charts: []chartBuilder{
			lineRevenue("revenue-by-category", "Service revenue by category", domain.ChartDonut, DimCategory),
			lineRevenue("revenue-by-service", "Revenue by service", domain.ChartBar, DimService),
			crossStack("category-by-pet-size", "Service revenue by pet size", DimPetSize, DimCategory, true),
		},
		table: serviceMixTable,
	},
	domain.ReportInventoryUsage: {
		title: "Inventory Usage",
		kpis:  []string{m.InventoryValue, m.InventoryUsageCost, m.LowStockItems, m.EstimatedCOGS, m.ProductRevenue},
		charts: []chartBuilder{
			inventoryCategoryUsage("usage-by-category", "Supplies used by category"),
			stockLevels("low-stock", "Items at or below reorder level"),
		},
		table: inventoryTable,
	},
	domain.ReportMarketingMessaging: {
		title: "Marketing & Messaging",
		kpis:  []string{m.MessagesSent, m.MessageCost, m.DeliveryRate, m.ConfirmationRate, m.CostPerConfirmation},
		charts: []chartBuilder{
			byDimension("messages-by-campaign", "Messages by campaign", domain.ChartBar, DimCampaign, m.MessagesSent),
			byDimension("cost-by-channel", "Messaging cost by channel", domain.ChartDonut, DimMessageChannel, m.MessageCost),
			dailyLine("messages-trend", "Messages sent by day", m.MessagesSent),
		},
		table: groupTable("Campaign performance", DimCampaign, msgDims,
			[]string{m.MessagesSent, m.MessageCost, m.DeliveryRate, m.ConfirmationRate, m.CostPerConfirmation}, []string{domain.RowMessages}),
	},
}

// Title is the display name of a report, or "" when unknown.
func Title(reportID string) string {
	return catalog[reportID].title
}
