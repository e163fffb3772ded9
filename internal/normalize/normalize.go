// Package normalize turns raw records from the booking and checkout systems
// into the canonical Dataset used by every report. It is total: malformed
// fields degrade to zero values or "Unknown" and nothing is ever rejected.
package normalize

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JimmysRanch/126-sub001/internal/domain"
)

// MinServiceMinutes is the floor applied to every service line duration.
const MinServiceMinutes = 15

var hundred = decimal.NewFromInt(100)

func Normalize(raw domain.RawDataset) domain.Dataset {
	visits := buildVisitIndex(raw.Appointments)

	ds := domain.Dataset{
		Appointments: make([]domain.Appointment, 0, len(raw.Appointments)),
		Transactions: make([]domain.Transaction, 0, len(raw.Transactions)),
		Clients:      make([]domain.Client, 0, len(raw.Clients)),
		Staff:        make([]domain.Staff, 0, len(raw.Staff)),
		Inventory:    make([]domain.InventoryItem, 0, len(raw.Inventory)),
		Messages:     make([]domain.Message, 0, len(raw.Messages)),
	}

	for _, appt := range raw.Appointments {
		ds.Appointments = append(ds.Appointments, normalizeAppointment(appt, visits))
	}
	for _, tx := range raw.Transactions {
		ds.Transactions = append(ds.Transactions, normalizeTransaction(tx))
	}
	for _, client := range raw.Clients {
		ds.Clients = append(ds.Clients, normalizeClient(client, visits))
	}
	for _, member := range raw.Staff {
		ds.Staff = append(ds.Staff, normalizeStaff(member))
	}
	for _, item := range raw.Inventory {
		ds.Inventory = append(ds.Inventory, normalizeInventory(item))
	}
	for _, msg := range raw.Messages {
		ds.Messages = append(ds.Messages, normalizeMessage(msg))
	}

	return ds
}

// visitIndex records, per client, the first and last non-cancelled visit
// date across the whole dataset. Appointment.ClientType and Client.Type are
// both derived from it so the two always agree.
type visitIndex struct {
	first map[string]string
	last  map[string]string
}

func buildVisitIndex(appointments []domain.RawAppointment) visitIndex {
	idx := visitIndex{first: map[string]string{}, last: map[string]string{}}
	for _, appt := range appointments {
		clientID := strings.TrimSpace(appt.ClientID)
		date := ISODate(appt.Date)
		if clientID == "" || date == "" || AppointmentStatus(appt.Status) == domain.StatusCancelled {
			continue
		}
		if current, ok := idx.first[clientID]; !ok || date < current {
			idx.first[clientID] = date
		}
		if current, ok := idx.last[clientID]; !ok || date > current {
			idx.last[clientID] = date
		}
	}
	return idx
}

func (idx visitIndex) clientTypeOn(clientID string, date string) string {
	first, ok := idx.first[clientID]
	if !ok || date == "" || date == first {
		return domain.ClientTypeNew
	}
	return domain.ClientTypeReturning
}

func normalizeAppointment(raw domain.RawAppointment, visits visitIndex) domain.Appointment {
	clientID := strings.TrimSpace(raw.ClientID)
	date := ISODate(raw.Date)

	lines := make([]domain.ServiceLine, 0, len(raw.Services))
	var servicesTotal int64
	for _, svc := range raw.Services {
		line := normalizeServiceLine(svc)
		servicesTotal += line.PriceCents
		lines = append(lines, line)
	}

	total := nonNegative(Cents(raw.TotalPrice))
	if total == 0 {
		total = servicesTotal
	}

	return domain.Appointment{
		ID:          strings.TrimSpace(raw.ID),
		ClientID:    clientID,
		ClientName:  defaultString(raw.ClientName, domain.UnknownLabel),
		PetID:       strings.TrimSpace(raw.PetID),
		PetName:     defaultString(raw.PetName, domain.UnknownLabel),
		PetSize:     PetSize(raw.PetWeightCategory),
		StaffID:     strings.TrimSpace(raw.GroomerID),
		StaffName:   defaultString(raw.GroomerName, domain.UnknownLabel),
		ServiceDate: date,
		StartTime:   strings.TrimSpace(raw.StartTime),
		EndTime:     strings.TrimSpace(raw.EndTime),
		Status:      AppointmentStatus(raw.Status),
		Channel:     InferChannel(raw.Notes),
		ClientType:  visits.clientTypeOn(clientID, date),
		Services:    lines,
		TotalCents:  total,
		TipCents:    nonNegative(Cents(raw.TipAmount)),
		CreatedAt:   strings.TrimSpace(raw.CreatedAt),
	}
}

func normalizeServiceLine(raw domain.RawService) domain.ServiceLine {
	kind := domain.ServiceKindMain
	if strings.EqualFold(strings.TrimSpace(raw.Type), domain.ServiceKindAddon) ||
		strings.EqualFold(strings.TrimSpace(raw.Type), "add-on") {
		kind = domain.ServiceKindAddon
	}

	duration := Int(raw.Duration)
	if duration < MinServiceMinutes {
		duration = MinServiceMinutes
	}

	name := defaultString(raw.ServiceName, domain.UnknownLabel)
	return domain.ServiceLine{
		ID:              strings.TrimSpace(raw.ServiceID),
		Name:            name,
		Category:        InferCategory(name, kind),
		Kind:            kind,
		PriceCents:      nonNegative(Cents(raw.Price)),
		DurationMinutes: duration,
	}
}

func normalizeTransaction(raw domain.RawTransaction) domain.Transaction {
	status := TransactionStatus(raw.Status)

	items := make([]domain.TransactionItem, 0, len(raw.Items))
	var giftCards int64
	for _, rawItem := range raw.Items {
		item := normalizeTransactionItem(rawItem)
		if item.Kind == domain.ItemKindGiftCard {
			giftCards += item.TotalCents
		}
		items = append(items, item)
	}

	total := nonNegative(Cents(raw.Total))
	var refund int64
	if status == domain.TxStatusRefunded {
		refund = nonNegative(Cents(raw.RefundAmount))
		if refund == 0 {
			refund = total
		}
	}

	return domain.Transaction{
		ID:            strings.TrimSpace(raw.ID),
		AppointmentID: strings.TrimSpace(raw.AppointmentID),
		ClientID:      strings.TrimSpace(raw.ClientID),
		ClientName:    defaultString(raw.ClientName, domain.UnknownLabel),
		Date:          ISODate(raw.Date),
		Status:        status,
		PaymentMethod: PaymentMethod(raw.PaymentMethod),
		SubtotalCents: nonNegative(Cents(raw.Subtotal)),
		DiscountCents: nonNegative(Cents(raw.Discount)),
		RefundCents:   refund,
		TaxCents:      nonNegative(Cents(raw.Tax)),
		TipCents:      nonNegative(Cents(raw.Tip)),
		TotalCents:    total,
		GiftCardCents: giftCards,
		Items:         items,
	}
}

func normalizeTransactionItem(raw domain.RawTransactionItem) domain.TransactionItem {
	kind := strings.ToLower(strings.TrimSpace(raw.Type))
	switch kind {
	case "gift_card", "gift card", "gift-card", domain.ItemKindGiftCard:
		kind = domain.ItemKindGiftCard
	case domain.ItemKindProduct, "retail":
		kind = domain.ItemKindProduct
	default:
		kind = domain.ItemKindService
	}

	qty := Int(raw.Quantity)
	if qty < 1 {
		qty = 1
	}
	total := nonNegative(Cents(raw.Total))
	if total == 0 {
		total = nonNegative(Cents(raw.Price)) * int64(qty)
	}

	return domain.TransactionItem{
		Kind:       kind,
		Name:       defaultString(raw.Name, domain.UnknownLabel),
		Category:   defaultString(raw.Category, domain.UnknownLabel),
		Quantity:   qty,
		TotalCents: total,
	}
}

func normalizeClient(raw domain.RawClient, visits visitIndex) domain.Client {
	id := strings.TrimSpace(raw.ID)
	clientType := domain.ClientTypeNew
	if last, ok := visits.last[id]; ok {
		clientType = visits.clientTypeOn(id, last)
	}

	return domain.Client{
		ID:             id,
		Name:           defaultString(raw.Name, domain.UnknownLabel),
		CreatedAt:      ISODate(raw.CreatedAt),
		City:           strings.TrimSpace(raw.Address.City),
		State:          strings.TrimSpace(raw.Address.State),
		Zip:            strings.TrimSpace(raw.Address.Zip),
		Type:           clientType,
		ReferralSource: defaultString(raw.ReferralSource, domain.UnknownLabel),
	}
}

func normalizeStaff(raw domain.RawStaff) domain.Staff {
	rate, ok := parseDecimal(raw.HourlyRate)
	var rateCents int64
	if ok {
		rateCents = nonNegative(rate.Mul(hundred).Round(0).IntPart())
	}

	status := strings.ToLower(strings.TrimSpace(raw.Status))
	if status == "" {
		status = "active"
	}

	return domain.Staff{
		ID:              strings.TrimSpace(raw.ID),
		Name:            defaultString(raw.Name, domain.UnknownLabel),
		Role:            defaultString(raw.Role, domain.UnknownLabel),
		HourlyRateCents: rateCents,
		HasHourlyRate:   ok,
		Status:          status,
	}
}

func normalizeInventory(raw domain.RawInventoryItem) domain.InventoryItem {
	linked := make([]string, 0, len(raw.LinkedServiceIDs))
	for _, id := range raw.LinkedServiceIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			linked = append(linked, trimmed)
		}
	}
	sort.Strings(linked)

	return domain.InventoryItem{
		ID:               strings.TrimSpace(raw.ID),
		Name:             defaultString(raw.Name, domain.UnknownLabel),
		Category:         defaultString(raw.Category, domain.UnknownLabel),
		UnitCostCents:    nonNegative(Cents(raw.UnitCost)),
		QuantityOnHand:   Int(raw.QuantityOnHand),
		ReorderLevel:     Int(raw.ReorderLevel),
		LinkedServiceIDs: linked,
	}
}

func normalizeMessage(raw domain.RawMessage) domain.Message {
	msgType := strings.ToLower(strings.TrimSpace(raw.Type))
	if msgType != "reminder" {
		msgType = "marketing"
	}

	return domain.Message{
		ID:            strings.TrimSpace(raw.ID),
		Channel:       strings.ToLower(defaultString(raw.Channel, domain.UnknownLabel)),
		Type:          msgType,
		Campaign:      defaultString(raw.Campaign, domain.UnknownLabel),
		SentAt:        strings.TrimSpace(raw.SentAt),
		SentDate:      ISODate(raw.SentAt),
		CostCents:     nonNegative(Cents(raw.Cost)),
		Delivered:     raw.Delivered,
		Confirmed:     raw.Confirmed,
		ClientID:      strings.TrimSpace(raw.ClientID),
		AppointmentID: strings.TrimSpace(raw.AppointmentID),
	}
}

// Cents converts a decimal currency amount to integer minor units, rounding
// half away from zero. Anything unparseable is 0.
func Cents(raw domain.RawNumber) int64 {
	d, ok := parseDecimal(string(raw))
	if !ok {
		return 0
	}
	return d.Mul(hundred).Round(0).IntPart()
}

// Int parses a whole number, rounding fractional input. Anything unparseable
// is 0.
func Int(raw domain.RawNumber) int {
	d, ok := parseDecimal(string(raw))
	if !ok {
		return 0
	}
	return int(d.Round(0).IntPart())
}

func parseDecimal(value string) (decimal.Decimal, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(value))
	cleaned = strings.NewReplacer("$", "", ",", "", "/hr", "", "/hour", "", " ", "").Replace(cleaned)
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ISODate returns the calendar-day prefix of a date or timestamp string, or
// "" when it does not start with a valid YYYY-MM-DD.
func ISODate(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) < 10 {
		return ""
	}
	day := trimmed[:10]
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return ""
	}
	return day
}

func AppointmentStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	switch status {
	case "":
		return domain.StatusScheduled
	case "canceled", "cancel":
		return domain.StatusCancelled
	case "no_show", "noshow", "no show":
		return domain.StatusNoShow
	case "complete", "done", "checked-out", "checked_out":
		return domain.StatusCompleted
	}
	return status
}

func TransactionStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	switch status {
	case "", "paid", "complete", "settled":
		return domain.TxStatusCompleted
	case "refund", "refunded", "partially_refunded":
		return domain.TxStatusRefunded
	}
	return status
}

func PaymentMethod(value string) string {
	method := strings.ToLower(strings.TrimSpace(value))
	if method == "" {
		return domain.UnknownLabel
	}
	return method
}

func PetSize(value string) string {
	size := strings.ToLower(strings.TrimSpace(value))
	if size == "" {
		return domain.UnknownLabel
	}
	return size
}

// InferCategory is a keyword heuristic over the service name; add-ons are
// always grouped together regardless of name.
func InferCategory(name string, kind string) string {
	if kind == domain.ServiceKindAddon {
		return domain.AddOnCategory
	}
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "bath"):
		return "Bath"
	case strings.Contains(lower, "trim"):
		return "Trim"
	case strings.Contains(lower, "full"):
		return "Full Groom"
	default:
		return "Grooming"
	}
}

func InferChannel(notes string) string {
	lower := strings.ToLower(notes)
	switch {
	case strings.Contains(lower, "online"):
		return "online"
	case strings.Contains(lower, "walk"):
		return "walk-in"
	default:
		return "phone"
	}
}

func defaultString(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func nonNegative(value int64) int64 {
	if value < 0 {
		return 0
	}
	return value
}
