// Package metrics is the catalog of every metric the report engine emits,
// plus the helpers that format metric values for display.
package metrics

import (
	"fmt"
	"strings"

	"github.com/JimmysRanch/126-sub001/internal/domain"
)

const (
	GrossSales            = "grossSales"
	Discounts             = "discounts"
	Refunds               = "refunds"
	NetSales              = "netSales"
	Taxes                 = "taxes"
	Tips                  = "tips"
	GiftCardSales         = "giftCardSales"
	TotalCollected        = "totalCollected"
	ProcessingFees        = "processingFees"
	EstimatedCOGS         = "estimatedCogs"
	DirectLabor           = "directLabor"
	ContributionMargin    = "contributionMargin"
	GrossMarginPct        = "grossMarginPct"
	ContributionMarginPct = "contributionMarginPct"
	AvgTicket             = "avgTicket"
	ServiceRevenue        = "serviceRevenue"
	ProductRevenue        = "productRevenue"
	RevenuePerBookedHour  = "revenuePerBookedHour"
	TransactionCount      = "transactionCount"
	DiscountRate          = "discountRate"
	RefundRate            = "refundRate"
	TipRate               = "tipRate"

	TotalAppointments     = "totalAppointments"
	CompletedAppointments = "completedAppointments"
	CancelledAppointments = "cancelledAppointments"
	NoShowAppointments    = "noShowAppointments"
	NoShowRate            = "noShowRate"
	CancellationRate      = "cancellationRate"
	BookedMinutes         = "bookedMinutes"
	AvailableMinutes      = "availableMinutes"
	Utilization           = "utilization"
	AvgAppointmentMinutes = "avgAppointmentMinutes"

	UniqueClients       = "uniqueClients"
	NewClients          = "newClients"
	ReturningClients    = "returningClients"
	Rebook24h           = "rebook24h"
	Rebook7d            = "rebook7d"
	Rebook30d           = "rebook30d"
	ReturnRate90        = "returnRate90"
	AvgDaysToReturn     = "avgDaysToReturn"
	AvgRevenuePerClient = "avgRevenuePerClient"

	MessagesSent        = "messagesSent"
	MessageCost         = "messageCost"
	DeliveryRate        = "deliveryRate"
	ConfirmationRate    = "confirmationRate"
	CostPerConfirmation = "costPerConfirmation"

	InventoryValue     = "inventoryValue"
	InventoryUsageCost = "inventoryUsageCost"
	LowStockItems      = "lowStockItems"
)

const (
	basisCheckout = "Follows the selected time basis for transactions; appointments always use the service date."
	basisService  = "Always measured on the appointment service date."
)

var (
	txRows       = []string{domain.RowTransactions}
	apptRows     = []string{domain.RowAppointments}
	clientRows   = []string{domain.RowClients, domain.RowAppointments}
	messageRows  = []string{domain.RowMessages}
	stockRows    = []string{domain.RowInventory}
	staffRows    = []string{domain.RowStaff, domain.RowAppointments}
	txApptRows   = []string{domain.RowTransactions, domain.RowAppointments}
	txStockRows  = []string{domain.RowTransactions, domain.RowInventory}
	clientTxRows = []string{domain.RowClients, domain.RowTransactions}
)

var catalog = []domain.MetricDefinition{
	{ID: GrossSales, Label: "Gross Sales", Format: domain.FormatMoney, DrillRowTypes: txRows,
		Definition:    "Everything rung up before discounts and refunds.",
		Formula:       "sum(transaction subtotal)",
		Exclusions:    "Gift card sales when gift cards are toggled off.",
		TimeBasisNote: basisCheckout},
	{ID: Discounts, Label: "Discounts", Format: domain.FormatMoney, DrillRowTypes: txRows,
		Definition:    "Price reductions applied at checkout.",
		Formula:       "sum(transaction discount)",
		Exclusions:    "Zero when discounts are toggled off.",
		TimeBasisNote: basisCheckout},
	{ID: Refunds, Label: "Refunds", Format: domain.FormatMoney, DrillRowTypes: txRows,
		Definition:    "Money returned to clients on refunded transactions.",
		Formula:       "sum(refund amount where status = refunded)",
		Exclusions:    "Zero when refunds are toggled off.",
		TimeBasisNote: basisCheckout},
	{ID: NetSales, Label: "Net Sales", Format: domain.FormatMoney, DrillRowTypes: txRows,
		Definition:    "Revenue the business keeps from sales.",
		Formula:       "gross sales - discounts - refunds",
		Exclusions:    "Taxes and tips.",
		TimeBasisNote: basisCheckout},
	{ID: Taxes, Label: "Taxes Collected", Format: domain.FormatMoney, DrillRowTypes: txRows,
		Definition:    "Sales tax collected on behalf of the tax authority.",
		Formula:       "sum(transaction tax)",
		Exclusions:    "Zero when taxes are toggled off.",
		TimeBasisNote: basisCheckout},
	{ID: Tips, Label: "Tips", Format: domain.FormatMoney, DrillRowTypes: txRows,
		Definition:    "Gratuities paid at checkout.",
		Formula:       "sum(transaction tip)",
		Exclusions:    "Zero when tips are toggled off.",
		TimeBasisNote: basisCheckout},
	{ID: GiftCardSales, Label: "Gift Card Sales", Format: domain.FormatMoney, DrillRowTypes: txRows,
		Definition:    "Gift cards sold. They are a liability until redeemed.",
		Formula:       "sum(gift card line items)",
		TimeBasisNote: basisCheckout},
	{ID: TotalCollected, Label: "Total Collected", Format: domain.FormatMoney, DrillRowTypes: txRows,
		Definition:    "All money taken in across tenders.",
		Formula:       "net sales + taxes + tips",
		TimeBasisNote: basisCheckout},
	{ID: ProcessingFees, Label: "Processing Fees (est.)", Format: domain.FormatMoney, DrillRowTypes: txRows,
		Definition:    "Estimated card processing cost.",
		Formula:       "card rate x card transaction total + fixed fee per card transaction",
		Exclusions:    "Cash, check and other non-card tenders; fully refunded card transactions.",
		TimeBasisNote: basisCheckout},
	{ID: EstimatedCOGS, Label: "Est. COGS", Format: domain.FormatMoney, DrillRowTypes: txStockRows,
		Definition:    "Estimated cost of goods and supplies consumed.",
		Formula:       "COGS rate x service revenue + linked inventory unit cost per completed service + product unit cost x quantity",
		Exclusions:    "Inventory that is not linked to a service or product sale.",
		TimeBasisNote: basisCheckout},
	{ID: DirectLabor, Label: "Direct Labor (est.)", Format: domain.FormatMoney, DrillRowTypes: staffRows,
		Definition:    "Estimated groomer wages for completed appointments.",
		Formula:       "sum(appointment hours x assigned staff hourly rate)",
		Exclusions:    "Staff without an hourly rate count as 0.",
		TimeBasisNote: basisService},
	{ID: ContributionMargin, Label: "Contribution Margin", Format: domain.FormatMoney, DrillRowTypes: txRows,
		Definition:    "What is left of net sales after direct costs.",
		Formula:       "net sales - COGS - direct labor - processing fees",
		TimeBasisNote: basisCheckout},
	{ID: GrossMarginPct, Label: "Gross Margin %", Format: domain.FormatPercent, DrillRowTypes: txRows,
		Definition:    "Share of net sales left after cost of goods.",
		Formula:       "(net sales - COGS) / net sales",
		TimeBasisNote: basisCheckout},
	{ID: ContributionMarginPct, Label: "Contribution Margin %", Format: domain.FormatPercent, DrillRowTypes: txRows,
		Definition:    "Share of net sales left after all direct costs.",
		Formula:       "contribution margin / net sales",
		TimeBasisNote: basisCheckout},
	{ID: AvgTicket, Label: "Average Ticket", Format: domain.FormatMoney, DrillRowTypes: txApptRows,
		Definition:    "Net sales per completed appointment.",
		Formula:       "net sales / completed appointments",
		TimeBasisNote: basisCheckout},
	{ID: ServiceRevenue, Label: "Service Revenue", Format: domain.FormatMoney, DrillRowTypes: txRows,
		Definition:    "Sales of grooming services and add-ons.",
		Formula:       "sum(service line items), or subtotal when a transaction has no items",
		TimeBasisNote: basisCheckout},
	{ID: ProductRevenue, Label: "Retail Revenue", Format: domain.FormatMoney, DrillRowTypes: txRows,
		Definition:    "Sales of retail products.",
		Formula:       "sum(product line items)",
		TimeBasisNote: basisCheckout},
	{ID: RevenuePerBookedHour, Label: "Revenue per Booked Hour", Format: domain.FormatMoney, DrillRowTypes: apptRows,
		Definition:    "Net sales earned for each hour of booked grooming time.",
		Formula:       "net sales / (booked minutes / 60)",
		TimeBasisNote: basisService},
	{ID: TransactionCount, Label: "Transactions", Format: domain.FormatInt, DrillRowTypes: txRows,
		Definition:    "Number of checkouts.",
		Formula:       "count(transactions)",
		TimeBasisNote: basisCheckout},
	{ID: DiscountRate, Label: "Discount Rate", Format: domain.FormatPercent, DrillRowTypes: txRows,
		Definition: "Share of gross sales given away as discounts.",
		Formula:    "discounts / gross sales"},
	{ID: RefundRate, Label: "Refund Rate", Format: domain.FormatPercent, DrillRowTypes: txRows,
		Definition: "Share of gross sales refunded.",
		Formula:    "refunds / gross sales"},
	{ID: TipRate, Label: "Tip Rate", Format: domain.FormatPercent, DrillRowTypes: txRows,
		Definition: "Tips relative to net sales.",
		Formula:    "tips / net sales"},

	{ID: TotalAppointments, Label: "Appointments", Format: domain.FormatInt, DrillRowTypes: apptRows,
		Definition:    "All appointments in the period, any status.",
		Formula:       "count(appointments)",
		TimeBasisNote: basisService},
	{ID: CompletedAppointments, Label: "Completed Appointments", Format: domain.FormatInt, DrillRowTypes: apptRows,
		Definition:    "Appointments that were serviced.",
		Formula:       "count(appointments where status = completed)",
		TimeBasisNote: basisService},
	{ID: CancelledAppointments, Label: "Cancellations", Format: domain.FormatInt, DrillRowTypes: apptRows,
		Definition:    "Appointments cancelled before service.",
		Formula:       "count(appointments where status = cancelled)",
		TimeBasisNote: basisService},
	{ID: NoShowAppointments, Label: "No-Shows", Format: domain.FormatInt, DrillRowTypes: apptRows,
		Definition:    "Appointments where the client never arrived.",
		Formula:       "count(appointments where status = no-show)",
		TimeBasisNote: basisService},
	{ID: NoShowRate, Label: "No-Show Rate", Format: domain.FormatPercent, DrillRowTypes: apptRows,
		Definition:    "Share of booked appointments that were no-shows.",
		Formula:       "no-shows / appointments",
		TimeBasisNote: basisService},
	{ID: CancellationRate, Label: "Cancellation Rate", Format: domain.FormatPercent, DrillRowTypes: apptRows,
		Definition:    "Share of booked appointments that were cancelled.",
		Formula:       "cancellations / appointments",
		TimeBasisNote: basisService},
	{ID: BookedMinutes, Label: "Booked Time", Format: domain.FormatMinutes, DrillRowTypes: apptRows,
		Definition:    "Scheduled grooming time on appointments that were not cancelled.",
		Formula:       "sum(appointment duration) excluding cancelled",
		TimeBasisNote: basisService},
	{ID: AvailableMinutes, Label: "Available Time", Format: domain.FormatMinutes, DrillRowTypes: staffRows,
		Definition:    "Staff capacity in the period.",
		Formula:       "staff headcount x hours per day x 60 x days in range",
		TimeBasisNote: basisService},
	{ID: Utilization, Label: "Utilization", Format: domain.FormatPercent, DrillRowTypes: staffRows,
		Definition:    "How much of staff capacity was booked.",
		Formula:       "booked minutes / available minutes",
		TimeBasisNote: basisService},
	{ID: AvgAppointmentMinutes, Label: "Avg Appointment Length", Format: domain.FormatMinutes, DrillRowTypes: apptRows,
		Definition:    "Average scheduled length of non-cancelled appointments.",
		Formula:       "booked minutes / non-cancelled appointments",
		TimeBasisNote: basisService},

	{ID: UniqueClients, Label: "Clients Served", Format: domain.FormatInt, DrillRowTypes: clientRows,
		Definition:    "Distinct clients with a completed appointment.",
		Formula:       "count(distinct client on completed appointments)",
		TimeBasisNote: basisService},
	{ID: NewClients, Label: "New Clients", Format: domain.FormatInt, DrillRowTypes: clientRows,
		Definition:    "Clients whose first visit ever falls in the period.",
		Formula:       "count(distinct client on appointments marked new)",
		Exclusions:    "Clients whose only visits were cancelled before the period.",
		TimeBasisNote: basisService},
	{ID: ReturningClients, Label: "Returning Clients", Format: domain.FormatInt, DrillRowTypes: clientRows,
		Definition:    "Clients who had visited before this visit.",
		Formula:       "count(distinct client on appointments marked returning)",
		TimeBasisNote: basisService},
	{ID: Rebook24h, Label: "Rebook within 24h", Format: domain.FormatPercent, DrillRowTypes: clientRows,
		Definition:    "Clients whose next visit came within a day of the previous one.",
		Formula:       "clients with first return gap <= 1 day / clients with 2+ completed visits",
		TimeBasisNote: basisService},
	{ID: Rebook7d, Label: "Rebook within 7 days", Format: domain.FormatPercent, DrillRowTypes: clientRows,
		Definition:    "Clients whose next visit came within a week.",
		Formula:       "clients with first return gap <= 7 days / clients with 2+ completed visits",
		TimeBasisNote: basisService},
	{ID: Rebook30d, Label: "Rebook within 30 days", Format: domain.FormatPercent, DrillRowTypes: clientRows,
		Definition:    "Clients whose next visit came within a month.",
		Formula:       "clients with first return gap <= 30 days / clients with 2+ completed visits",
		TimeBasisNote: basisService},
	{ID: ReturnRate90, Label: "90-Day Return Rate", Format: domain.FormatPercent, DrillRowTypes: clientRows,
		Definition:    "Clients who came back within 90 days.",
		Formula:       "clients with first return gap <= 90 days / clients with 2+ completed visits",
		TimeBasisNote: basisService},
	{ID: AvgDaysToReturn, Label: "Avg Days to Return", Format: domain.FormatInt, DrillRowTypes: clientRows,
		Definition:    "Average days between a client's first and second visit in the period.",
		Formula:       "mean(first return gap in days)",
		TimeBasisNote: basisService},
	{ID: AvgRevenuePerClient, Label: "Revenue per Client", Format: domain.FormatMoney, DrillRowTypes: clientTxRows,
		Definition: "Net sales per distinct paying client.",
		Formula:    "net sales / distinct clients on transactions"},

	{ID: MessagesSent, Label: "Messages Sent", Format: domain.FormatInt, DrillRowTypes: messageRows,
		Definition: "Marketing and reminder messages sent.",
		Formula:    "count(messages)"},
	{ID: MessageCost, Label: "Messaging Cost", Format: domain.FormatMoney, DrillRowTypes: messageRows,
		Definition: "What the messages cost to send.",
		Formula:    "sum(message cost)"},
	{ID: DeliveryRate, Label: "Delivery Rate", Format: domain.FormatPercent, DrillRowTypes: messageRows,
		Definition: "Share of messages the carrier delivered.",
		Formula:    "delivered / sent"},
	{ID: ConfirmationRate, Label: "Confirmation Rate", Format: domain.FormatPercent, DrillRowTypes: messageRows,
		Definition: "Share of messages that got a confirmation.",
		Formula:    "confirmed / sent"},
	{ID: CostPerConfirmation, Label: "Cost per Confirmation", Format: domain.FormatMoney, DrillRowTypes: messageRows,
		Definition: "Messaging spend per confirmed appointment.",
		Formula:    "messaging cost / confirmed"},

	{ID: InventoryValue, Label: "Inventory Value", Format: domain.FormatMoney, DrillRowTypes: stockRows,
		Definition: "Cost value of stock on hand.",
		Formula:    "sum(unit cost x quantity on hand)",
		Exclusions: "Negative on-hand counts."},
	{ID: InventoryUsageCost, Label: "Supplies Used (est.)", Format: domain.FormatMoney, DrillRowTypes: stockRows,
		Definition:    "Cost of supplies consumed by completed services and product sales.",
		Formula:       "linked inventory unit cost per completed service + product unit cost x quantity",
		TimeBasisNote: basisService},
	{ID: LowStockItems, Label: "Low Stock Items", Format: domain.FormatInt, DrillRowTypes: stockRows,
		Definition: "Items at or below their reorder level.",
		Formula:    "count(items where on hand <= reorder level)"},
}

var byID = func() map[string]domain.MetricDefinition {
	index := make(map[string]domain.MetricDefinition, len(catalog))
	for _, def := range catalog {
		index[def.ID] = def
	}
	return index
}()

func Lookup(id string) (domain.MetricDefinition, bool) {
	def, ok := byID[id]
	return def, ok
}

// All returns the catalog in display order.
func All() []domain.MetricDefinition {
	out := make([]domain.MetricDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// ReferenceMarkdown is the metric glossary used by the help surface.
func ReferenceMarkdown() string {
	var b strings.Builder
	b.WriteString("# Metric reference\n\n")
	for _, def := range catalog {
		fmt.Fprintf(&b, "## %s\n\n", def.Label)
		fmt.Fprintf(&b, "%s\n\n", def.Definition)
		fmt.Fprintf(&b, "- **Formula:** `%s`\n", def.Formula)
		if def.Exclusions != "" {
			fmt.Fprintf(&b, "- **Excludes:** %s\n", def.Exclusions)
		}
		if def.TimeBasisNote != "" {
			fmt.Fprintf(&b, "- **Time basis:** %s\n", def.TimeBasisNote)
		}
		fmt.Fprintf(&b, "- **Format:** %s\n\n", def.Format)
	}
	return b.String()
}
