// Package drill resolves a drill request back to the normalized rows behind
// an aggregate.
package drill

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/JimmysRanch/126-sub001/internal/domain"
	"github.com/JimmysRanch/126-sub001/internal/filters"
	"github.com/JimmysRanch/126-sub001/internal/metrics"
)

// Filter keys understood by Resolve. Keys that do not apply to a row type
// are ignored for that type. The report's multi-select selections travel
// under the query codec's names (staff, services, payments, ...) and
// narrow every row type the way the report itself does.
const (
	KeyStartDate      = "startDate"
	KeyEndDate        = "endDate"
	KeyStaffID        = "staffId"
	KeyServiceID      = "serviceId"
	KeyServiceName    = "serviceName"
	KeyCategory       = "category"
	KeyStatus         = "status"
	KeyChannel        = "channel"
	KeyPaymentMethod  = "paymentMethod"
	KeyTransactionID  = "transactionId"
	KeyAppointmentID  = "appointmentId"
	KeyClientID       = "clientId"
	KeyClientType     = "clientType"
	KeyPetSize        = "petSize"
	KeyWeekday        = "weekday"
	KeyCampaign       = "campaign"
	KeyMessageChannel = "messageChannel"
	KeyInventoryID    = "inventoryId"
	KeyTimeBasis      = filters.ScopeTimeBasis
)

var (
	appointmentColumns = []string{"id", "date", "time", "client", "pet", "petSize", "staff", "services", "status", "channel", "clientType", "total", "tip"}
	transactionColumns = []string{"id", "date", "client", "appointmentId", "paymentMethod", "status", "subtotal", "discount", "refund", "tax", "tip", "total"}
	clientColumns      = []string{"id", "name", "type", "createdAt", "city", "state", "referralSource", "visits"}
	staffColumns       = []string{"id", "name", "role", "hourlyRate", "status", "appointments"}
	inventoryColumns   = []string{"id", "name", "category", "onHand", "reorderLevel", "unitCost", "stockValue"}
	messageColumns     = []string{"id", "sentAt", "channel", "type", "campaign", "cost", "delivered", "confirmed"}
)

// Resolve returns one row set per requested row type, in request order.
// Unknown row types yield an empty set.
func Resolve(req domain.DrillRequest, ds domain.Dataset) domain.DrillResult {
	r := newResolver(req.Filter, ds)
	result := domain.DrillResult{Title: req.Title, Sets: make([]domain.DrillRowSet, 0, len(req.RowTypes))}
	for _, rowType := range req.RowTypes {
		switch rowType {
		case domain.RowAppointments:
			result.Sets = append(result.Sets, r.appointments())
		case domain.RowTransactions:
			result.Sets = append(result.Sets, r.transactions())
		case domain.RowClients:
			result.Sets = append(result.Sets, r.clients())
		case domain.RowStaff:
			result.Sets = append(result.Sets, r.staff())
		case domain.RowInventory:
			result.Sets = append(result.Sets, r.inventory())
		case domain.RowMessages:
			result.Sets = append(result.Sets, r.messages())
		default:
			result.Sets = append(result.Sets, domain.DrillRowSet{RowType: rowType, Columns: []string{}, Rows: []map[string]string{}})
		}
	}
	return result
}

type resolver struct {
	filter    map[string]string
	ds        domain.Dataset
	apptByID  map[string]domain.Appointment
	basis     string
	scopeAppt func(domain.Appointment) bool
	scopeTx   func(domain.Transaction) bool
}

func newResolver(filter map[string]string, ds domain.Dataset) *resolver {
	cleaned := make(map[string]string, len(filter))
	for key, value := range filter {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			cleaned[key] = trimmed
		}
	}
	r := &resolver{filter: cleaned, ds: ds, apptByID: make(map[string]domain.Appointment, len(ds.Appointments))}
	for _, appt := range ds.Appointments {
		r.apptByID[appt.ID] = appt
	}
	if scope, ok := filters.ScopeFromFilter(cleaned); ok {
		r.basis = scope.TimeBasis
		// Dates are checked by inRange; the scope only narrows selections.
		resolved := filters.Resolved{State: scope}
		r.scopeAppt = resolved.AppointmentPredicate(filters.Unbounded)
		r.scopeTx = resolved.TransactionPredicate(filters.Unbounded, r.apptByID)
	}
	return r
}

// txDate is the date a transaction is reported under: its linked
// appointment's service date under the service basis, otherwise its own.
func (r *resolver) txDate(tx domain.Transaction) string {
	if r.basis == domain.TimeBasisService && tx.AppointmentID != "" {
		if appt, ok := r.apptByID[tx.AppointmentID]; ok && appt.ServiceDate != "" {
			return appt.ServiceDate
		}
	}
	return tx.Date
}

// match reports whether key is absent or equals one of values. An empty
// value matches the Unknown label report groups use for it.
func (r *resolver) match(key string, values ...string) bool {
	want, ok := r.filter[key]
	if !ok {
		return true
	}
	for _, value := range values {
		if value == "" {
			value = domain.UnknownLabel
		}
		if strings.EqualFold(want, value) {
			return true
		}
	}
	return false
}

func (r *resolver) inRange(date string) bool {
	if start, ok := r.filter[KeyStartDate]; ok && (date == "" || date < start) {
		return false
	}
	if end, ok := r.filter[KeyEndDate]; ok && (date == "" || date > end) {
		return false
	}
	return true
}

func weekday(date string) string {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return strconv.Itoa(int(day.Weekday()))
}

func (r *resolver) appointmentMatches(appt domain.Appointment) bool {
	if !r.inRange(appt.ServiceDate) {
		return false
	}
	if r.scopeAppt != nil && !r.scopeAppt(appt) {
		return false
	}
	serviceIDs := make([]string, 0, len(appt.Services))
	names := make([]string, 0, len(appt.Services))
	categories := make([]string, 0, len(appt.Services))
	for _, line := range appt.Services {
		serviceIDs = append(serviceIDs, line.ID)
		names = append(names, line.Name)
		categories = append(categories, line.Category)
	}
	return r.match(KeyAppointmentID, appt.ID) &&
		r.match(KeyStaffID, appt.StaffID) &&
		r.match(KeyServiceID, serviceIDs...) &&
		r.match(KeyServiceName, names...) &&
		r.match(KeyCategory, categories...) &&
		r.match(KeyStatus, appt.Status) &&
		r.match(KeyChannel, appt.Channel) &&
		r.match(KeyClientID, appt.ClientID) &&
		r.match(KeyClientType, appt.ClientType) &&
		r.match(KeyPetSize, appt.PetSize) &&
		r.match(KeyWeekday, weekday(appt.ServiceDate)) &&
		r.linkedTransactionMatches(appt.ID)
}

// linkedTransactionMatches applies transaction-only keys to an appointment
// through the transactions that settle it.
func (r *resolver) linkedTransactionMatches(apptID string) bool {
	_, byTx := r.filter[KeyTransactionID]
	_, byMethod := r.filter[KeyPaymentMethod]
	if !byTx && !byMethod {
		return true
	}
	for _, tx := range r.ds.Transactions {
		if tx.AppointmentID == apptID && r.match(KeyTransactionID, tx.ID) && r.match(KeyPaymentMethod, tx.PaymentMethod) {
			return true
		}
	}
	return false
}

func (r *resolver) transactionMatches(tx domain.Transaction) bool {
	date := r.txDate(tx)
	if !r.inRange(date) {
		return false
	}
	if r.scopeTx != nil && !r.scopeTx(tx) {
		return false
	}
	if !(r.match(KeyTransactionID, tx.ID) &&
		r.match(KeyAppointmentID, tx.AppointmentID) &&
		r.match(KeyClientID, tx.ClientID) &&
		r.match(KeyPaymentMethod, tx.PaymentMethod) &&
		r.match(KeyStatus, tx.Status) &&
		r.match(KeyWeekday, weekday(date))) {
		return false
	}

	names := make([]string, 0, len(tx.Items))
	categories := make([]string, 0, len(tx.Items))
	for _, item := range tx.Items {
		names = append(names, item.Name)
		categories = append(categories, item.Category)
	}
	appt, linked := r.apptByID[tx.AppointmentID]
	if tx.AppointmentID == "" {
		linked = false
	}
	if linked {
		for _, line := range appt.Services {
			names = append(names, line.Name)
			categories = append(categories, line.Category)
		}
	}
	if !r.match(KeyServiceName, names...) || !r.match(KeyCategory, categories...) {
		return false
	}

	for _, key := range []string{KeyStaffID, KeyServiceID, KeyChannel, KeyClientType, KeyPetSize} {
		if _, ok := r.filter[key]; ok && !linked {
			return false
		}
	}
	if !linked {
		return true
	}
	serviceIDs := make([]string, 0, len(appt.Services))
	for _, line := range appt.Services {
		serviceIDs = append(serviceIDs, line.ID)
	}
	return r.match(KeyStaffID, appt.StaffID) &&
		r.match(KeyServiceID, serviceIDs...) &&
		r.match(KeyChannel, appt.Channel) &&
		r.match(KeyClientType, appt.ClientType) &&
		r.match(KeyPetSize, appt.PetSize)
}

func (r *resolver) matchingAppointments() []domain.Appointment {
	out := make([]domain.Appointment, 0)
	for _, appt := range r.ds.Appointments {
		if r.appointmentMatches(appt) {
			out = append(out, appt)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ServiceDate != out[j].ServiceDate {
			return out[i].ServiceDate < out[j].ServiceDate
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *resolver) appointments() domain.DrillRowSet {
	appts := r.matchingAppointments()
	rows := make([]map[string]string, 0, len(appts))
	for _, appt := range appts {
		services := make([]string, 0, len(appt.Services))
		for _, line := range appt.Services {
			services = append(services, line.Name)
		}
		rows = append(rows, map[string]string{
			"id":         appt.ID,
			"date":       displayDate(appt.ServiceDate),
			"time":       strings.Trim(appt.StartTime+"-"+appt.EndTime, "-"),
			"client":     appt.ClientName,
			"pet":        appt.PetName,
			"petSize":    appt.PetSize,
			"staff":      appt.StaffName,
			"services":   strings.Join(services, ", "),
			"status":     appt.Status,
			"channel":    appt.Channel,
			"clientType": appt.ClientType,
			"total":      money(appt.TotalCents),
			"tip":        money(appt.TipCents),
		})
	}
	return domain.DrillRowSet{RowType: domain.RowAppointments, Columns: appointmentColumns, Rows: rows}
}

func (r *resolver) transactions() domain.DrillRowSet {
	txs := make([]domain.Transaction, 0)
	for _, tx := range r.ds.Transactions {
		if r.transactionMatches(tx) {
			txs = append(txs, tx)
		}
	}
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Date != txs[j].Date {
			return txs[i].Date < txs[j].Date
		}
		return txs[i].ID < txs[j].ID
	})

	rows := make([]map[string]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, map[string]string{
			"id":            tx.ID,
			"date":          displayDate(tx.Date),
			"client":        tx.ClientName,
			"appointmentId": tx.AppointmentID,
			"paymentMethod": tx.PaymentMethod,
			"status":        tx.Status,
			"subtotal":      money(tx.SubtotalCents),
			"discount":      money(tx.DiscountCents),
			"refund":        money(tx.RefundCents),
			"tax":           money(tx.TaxCents),
			"tip":           money(tx.TipCents),
			"total":         money(tx.TotalCents),
		})
	}
	return domain.DrillRowSet{RowType: domain.RowTransactions, Columns: transactionColumns, Rows: rows}
}

// clients returns the clients behind the matching appointments, or every
// client when no appointment-level key is set.
func (r *resolver) clients() domain.DrillRowSet {
	scoped := r.scopedToAppointments()
	visits := make(map[string]int)
	for _, appt := range r.matchingAppointments() {
		if appt.Status == domain.StatusCompleted {
			visits[appt.ClientID]++
		} else if _, ok := visits[appt.ClientID]; !ok {
			visits[appt.ClientID] = 0
		}
	}

	clients := make([]domain.Client, 0)
	for _, client := range r.ds.Clients {
		if _, seen := visits[client.ID]; scoped && !seen {
			continue
		}
		if !r.match(KeyClientID, client.ID) {
			continue
		}
		if !scoped && !r.match(KeyClientType, client.Type) {
			continue
		}
		clients = append(clients, client)
	}
	sort.SliceStable(clients, func(i, j int) bool {
		if clients[i].Name != clients[j].Name {
			return clients[i].Name < clients[j].Name
		}
		return clients[i].ID < clients[j].ID
	})

	rows := make([]map[string]string, 0, len(clients))
	for _, client := range clients {
		rows = append(rows, map[string]string{
			"id":             client.ID,
			"name":           client.Name,
			"type":           client.Type,
			"createdAt":      displayDate(client.CreatedAt),
			"city":           client.City,
			"state":          client.State,
			"referralSource": client.ReferralSource,
			"visits":         strconv.Itoa(visits[client.ID]),
		})
	}
	return domain.DrillRowSet{RowType: domain.RowClients, Columns: clientColumns, Rows: rows}
}

func (r *resolver) scopedToAppointments() bool {
	for _, key := range []string{KeyStartDate, KeyEndDate, KeyStaffID, KeyServiceID, KeyServiceName, KeyCategory,
		KeyStatus, KeyChannel, KeyAppointmentID, KeyPetSize, KeyWeekday, KeyTransactionID, KeyPaymentMethod} {
		if _, ok := r.filter[key]; ok {
			return true
		}
	}
	return false
}

func (r *resolver) staff() domain.DrillRowSet {
	counts := make(map[string]int)
	for _, appt := range r.matchingAppointments() {
		counts[appt.StaffID]++
	}
	rows := make([]map[string]string, 0, len(r.ds.Staff))
	members := append([]domain.Staff(nil), r.ds.Staff...)
	sort.SliceStable(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	for _, member := range members {
		if !r.match(KeyStaffID, member.ID) {
			continue
		}
		rate := ""
		if member.HasHourlyRate {
			rate = money(member.HourlyRateCents) + "/hr"
		}
		rows = append(rows, map[string]string{
			"id":           member.ID,
			"name":         member.Name,
			"role":         member.Role,
			"hourlyRate":   rate,
			"status":       member.Status,
			"appointments": strconv.Itoa(counts[member.ID]),
		})
	}
	return domain.DrillRowSet{RowType: domain.RowStaff, Columns: staffColumns, Rows: rows}
}

func (r *resolver) inventory() domain.DrillRowSet {
	items := append([]domain.InventoryItem(nil), r.ds.Inventory...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		if !r.match(KeyInventoryID, item.ID) || !r.match(KeyCategory, item.Category) || !r.match(KeyServiceID, item.LinkedServiceIDs...) {
			continue
		}
		var value int64
		if item.QuantityOnHand > 0 {
			value = item.UnitCostCents * int64(item.QuantityOnHand)
		}
		rows = append(rows, map[string]string{
			"id":           item.ID,
			"name":         item.Name,
			"category":     item.Category,
			"onHand":       strconv.Itoa(item.QuantityOnHand),
			"reorderLevel": strconv.Itoa(item.ReorderLevel),
			"unitCost":     money(item.UnitCostCents),
			"stockValue":   money(value),
		})
	}
	return domain.DrillRowSet{RowType: domain.RowInventory, Columns: inventoryColumns, Rows: rows}
}

func (r *resolver) messages() domain.DrillRowSet {
	msgs := make([]domain.Message, 0)
	for _, msg := range r.ds.Messages {
		if !r.inRange(msg.SentDate) {
			continue
		}
		if r.match(KeyCampaign, msg.Campaign) &&
			r.match(KeyMessageChannel, msg.Channel) &&
			r.match(KeyClientID, msg.ClientID) &&
			r.match(KeyAppointmentID, msg.AppointmentID) &&
			r.match(KeyWeekday, weekday(msg.SentDate)) {
			msgs = append(msgs, msg)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].SentAt != msgs[j].SentAt {
			return msgs[i].SentAt < msgs[j].SentAt
		}
		return msgs[i].ID < msgs[j].ID
	})

	rows := make([]map[string]string, 0, len(msgs))
	for _, msg := range msgs {
		rows = append(rows, map[string]string{
			"id":        msg.ID,
			"sentAt":    displayDate(msg.SentDate),
			"channel":   msg.Channel,
			"type":      msg.Type,
			"campaign":  msg.Campaign,
			"cost":      money(msg.CostCents),
			"delivered": strconv.FormatBool(msg.Delivered),
			"confirmed": strconv.FormatBool(msg.Confirmed),
		})
	}
	return domain.DrillRowSet{RowType: domain.RowMessages, Columns: messageColumns, Rows: rows}
}

func money(cents int64) string {
	return metrics.FormatValue(float64(cents), domain.FormatMoney)
}

// displayDate renders an ISO day as "Mar 5, 2024"; anything else passes
// through.
func displayDate(value string) string {
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return value
	}
	return day.Format("Jan 2, 2006")
}
