package reports

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/JimmysRanch/126-sub001/internal/domain"
	m "github.com/JimmysRanch/126-sub001/internal/metrics"
)

// slice is a subset of a window: the whole period or one group of it.
type slice struct {
	appts []domain.Appointment
	txs   []domain.Transaction
	msgs  []domain.Message
}

// aggregate computes every catalog metric over s. Money is in cents, ratios
// are fractions, and every division by an empty count yields 0.
func (c *buildContext) aggregate(s slice, days int, headcount int) map[string]float64 {
	state := c.state
	v := make(map[string]float64, 64)

	var gross, discounts, refunds, taxes, tips, giftCards, serviceRevenue, productRevenue, fees float64
	var productUsage int64
	payingClients := make(map[string]bool)
	for _, tx := range s.txs {
		sale := salesOf(state, tx)
		gross += sale.gross
		giftCards += float64(tx.GiftCardCents)
		discounts += sale.discount
		refunds += sale.refund
		if state.IncludeTaxes {
			taxes += float64(tx.TaxCents)
		}
		if state.IncludeTips {
			tips += float64(tx.TipCents)
		}
		// A refunded card sale has its processing fee returned.
		if isCard(tx.PaymentMethod) && tx.Status != domain.TxStatusRefunded {
			fees += c.params.CardFeeRate*float64(tx.TotalCents) + float64(c.params.CardFeeFixedCents)
		}
		if tx.ClientID != "" {
			payingClients[tx.ClientID] = true
		}

		if len(tx.Items) == 0 {
			serviceRevenue += float64(tx.SubtotalCents)
			continue
		}
		for _, item := range tx.Items {
			switch item.Kind {
			case domain.ItemKindService:
				serviceRevenue += float64(item.TotalCents)
			case domain.ItemKindProduct:
				productRevenue += float64(item.TotalCents)
				productUsage += c.productCost(item)
			}
		}
	}
	fees = math.Round(fees)

	net := gross - discounts - refunds
	v[m.GrossSales] = gross
	v[m.Discounts] = discounts
	v[m.Refunds] = refunds
	v[m.NetSales] = net
	v[m.Taxes] = taxes
	v[m.Tips] = tips
	v[m.GiftCardSales] = giftCards
	v[m.TotalCollected] = net + taxes + tips
	v[m.ProcessingFees] = fees
	v[m.ServiceRevenue] = serviceRevenue
	v[m.ProductRevenue] = productRevenue
	v[m.TransactionCount] = float64(len(s.txs))
	v[m.DiscountRate] = ratio(discounts, gross)
	v[m.RefundRate] = ratio(refunds, gross)
	v[m.TipRate] = ratio(tips, net)
	v[m.AvgRevenuePerClient] = ratio(net, float64(len(payingClients)))

	var total, completed, cancelled, noShows, booked, active float64
	var serviceUsage int64
	var laborCents float64
	served := make(map[string]bool)
	newClients := make(map[string]bool)
	returning := make(map[string]bool)
	for _, appt := range s.appts {
		total++
		switch appt.Status {
		case domain.StatusCompleted:
			completed++
			if appt.ClientID != "" {
				served[appt.ClientID] = true
			}
			serviceUsage += c.serviceCost(appt)
			laborCents += float64(appt.DurationMinutes()) / 60 * float64(c.staffByID[appt.StaffID].HourlyRateCents)
		case domain.StatusCancelled:
			cancelled++
		case domain.StatusNoShow:
			noShows++
		}
		if appt.Status == domain.StatusCancelled {
			continue
		}
		active++
		booked += float64(appt.DurationMinutes())
		if appt.ClientID == "" {
			continue
		}
		if appt.ClientType == domain.ClientTypeNew {
			newClients[appt.ClientID] = true
		} else {
			returning[appt.ClientID] = true
		}
	}

	usage := float64(serviceUsage + productUsage)
	cogs := math.Round(c.params.COGSRate*serviceRevenue) + usage
	labor := math.Round(laborCents)
	margin := net - cogs - labor - fees
	available := float64(headcount) * c.params.StaffHoursPerDay * 60 * float64(days)

	v[m.EstimatedCOGS] = cogs
	v[m.DirectLabor] = labor
	v[m.ContributionMargin] = margin
	v[m.GrossMarginPct] = ratio(net-cogs, net)
	v[m.ContributionMarginPct] = ratio(margin, net)
	v[m.AvgTicket] = ratio(net, completed)
	v[m.TotalAppointments] = total
	v[m.CompletedAppointments] = completed
	v[m.CancelledAppointments] = cancelled
	v[m.NoShowAppointments] = noShows
	v[m.NoShowRate] = ratio(noShows, total)
	v[m.CancellationRate] = ratio(cancelled, total)
	v[m.BookedMinutes] = booked
	v[m.AvailableMinutes] = available
	v[m.Utilization] = ratio(booked, available)
	v[m.AvgAppointmentMinutes] = ratio(booked, active)
	v[m.RevenuePerBookedHour] = ratio(net, booked/60)
	v[m.UniqueClients] = float64(len(served))
	v[m.NewClients] = float64(len(newClients))
	v[m.ReturningClients] = float64(len(returning))
	v[m.InventoryUsageCost] = usage

	rebook := rebooking(s.appts)
	v[m.Rebook24h] = rebook.within(1)
	v[m.Rebook7d] = rebook.within(7)
	v[m.Rebook30d] = rebook.within(30)
	v[m.ReturnRate90] = rebook.within(90)
	v[m.AvgDaysToReturn] = rebook.meanGap()

	var msgCost, delivered, confirmed float64
	for _, msg := range s.msgs {
		msgCost += float64(msg.CostCents)
		if msg.Delivered {
			delivered++
		}
		if msg.Confirmed {
			confirmed++
		}
	}
	sent := float64(len(s.msgs))
	v[m.MessagesSent] = sent
	v[m.MessageCost] = msgCost
	v[m.DeliveryRate] = ratio(delivered, sent)
	v[m.ConfirmationRate] = ratio(confirmed, sent)
	v[m.CostPerConfirmation] = ratio(msgCost, confirmed)

	var stockValue, lowStock float64
	for _, item := range c.ds.Inventory {
		if item.QuantityOnHand > 0 {
			stockValue += float64(item.UnitCostCents) * float64(item.QuantityOnHand)
		}
		if item.QuantityOnHand <= item.ReorderLevel {
			lowStock++
		}
	}
	v[m.InventoryValue] = stockValue
	v[m.LowStockItems] = lowStock
	return v
}

// saleParts is one transaction's share of gross sales, discounts and
// refunds under the filter toggles.
type saleParts struct {
	gross    float64
	discount float64
	refund   float64
}

func (p saleParts) net() float64 {
	return p.gross - p.discount - p.refund
}

func salesOf(state domain.FilterState, tx domain.Transaction) saleParts {
	p := saleParts{gross: float64(tx.SubtotalCents)}
	if !state.IncludeGiftCards {
		p.gross -= float64(tx.GiftCardCents)
	}
	if state.IncludeDiscounts {
		p.discount = float64(tx.DiscountCents)
	}
	if state.IncludeRefunds {
		p.refund = float64(tx.RefundCents)
	}
	return p
}

// serviceCost is the unit cost of inventory linked to each service line of
// a completed appointment.
func (c *buildContext) serviceCost(appt domain.Appointment) int64 {
	var cost int64
	for _, line := range appt.Services {
		if line.ID == "" {
			continue
		}
		for _, item := range c.ds.Inventory {
			for _, linked := range item.LinkedServiceIDs {
				if linked == line.ID {
					cost += item.UnitCostCents
				}
			}
		}
	}
	return cost
}

// productCost matches a retail line item to inventory by name.
func (c *buildContext) productCost(item domain.TransactionItem) int64 {
	for _, stock := range c.ds.Inventory {
		if strings.EqualFold(stock.Name, item.Name) {
			return stock.UnitCostCents * int64(item.Quantity)
		}
	}
	return 0
}

func isCard(method string) bool {
	lower := strings.ToLower(method)
	for _, marker := range []string{"card", "credit", "debit", "visa", "mastercard", "amex", "apple", "google"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func ratio(numerator float64, denominator float64) float64 {
	if denominator == 0 || math.IsNaN(denominator) {
		return 0
	}
	out := numerator / denominator
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0
	}
	return out
}

// rebookStats holds the first return gap, in days, of every client with at
// least two completed visit dates.
type rebookStats struct {
	gaps []int
}

func rebooking(appts []domain.Appointment) rebookStats {
	visits := make(map[string]map[string]bool)
	for _, appt := range appts {
		if appt.Status != domain.StatusCompleted || appt.ClientID == "" || appt.ServiceDate == "" {
			continue
		}
		if visits[appt.ClientID] == nil {
			visits[appt.ClientID] = make(map[string]bool)
		}
		visits[appt.ClientID][appt.ServiceDate] = true
	}

	clients := make([]string, 0, len(visits))
	for id := range visits {
		clients = append(clients, id)
	}
	sort.Strings(clients)

	stats := rebookStats{gaps: make([]int, 0, len(clients))}
	for _, id := range clients {
		if len(visits[id]) < 2 {
			continue
		}
		dates := make([]string, 0, len(visits[id]))
		for date := range visits[id] {
			dates = append(dates, date)
		}
		sort.Strings(dates)
		if gap, ok := dayGap(dates[0], dates[1]); ok {
			stats.gaps = append(stats.gaps, gap)
		}
	}
	return stats
}

func (r rebookStats) within(days int) float64 {
	hits := 0
	for _, gap := range r.gaps {
		if gap <= days {
			hits++
		}
	}
	return ratio(float64(hits), float64(len(r.gaps)))
}

func (r rebookStats) meanGap() float64 {
	total := 0
	for _, gap := range r.gaps {
		total += gap
	}
	return ratio(float64(total), float64(len(r.gaps)))
}

func dayGap(from string, to string) (int, bool) {
	start, errStart := time.Parse("2006-01-02", from)
	end, errEnd := time.Parse("2006-01-02", to)
	if errStart != nil || errEnd != nil {
		return 0, false
	}
	return int(math.Round(end.Sub(start).Hours() / 24)), true
}
