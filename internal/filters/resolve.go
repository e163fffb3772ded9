// Package filters resolves a FilterState into concrete date ranges and row
// predicates, and encodes filter state to and from query strings.
package filters

import (
	"strings"
	"time"

	"github.com/JimmysRanch/126-sub001/internal/domain"
)

const dayLayout = "2006-01-02"

// Range is an inclusive span of ISO calendar days.
type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Unbounded contains every dated record.
var Unbounded = Range{Start: "0000-01-01", End: "9999-12-31"}

func (r Range) Contains(date string) bool {
	return date != "" && date >= r.Start && date <= r.End
}

// Days is the inclusive number of calendar days in the range.
func (r Range) Days() int {
	start, errStart := time.Parse(dayLayout, r.Start)
	end, errEnd := time.Parse(dayLayout, r.End)
	if errStart != nil || errEnd != nil || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// Resolved is a FilterState bound to concrete ranges. Comparison is nil
// unless compare mode is on.
type Resolved struct {
	State      domain.FilterState
	Primary    Range
	Comparison *Range
}

// Resolve binds state to calendar days in loc as of now. The timezone is an
// argument so resolution stays a pure function of its inputs.
func Resolve(state domain.FilterState, now time.Time, loc *time.Location) Resolved {
	start, end := ResolveRange(state, now, loc)
	resolved := Resolved{
		State:   state,
		Primary: Range{Start: start, End: end},
	}
	if state.CompareMode {
		compStart, compEnd := ComparisonWindow(start, end)
		resolved.Comparison = &Range{Start: compStart, End: compEnd}
	}
	return resolved
}

// ResolveRange maps the state's date preset to an inclusive [start, end]
// pair of calendar days in loc.
func ResolveRange(state domain.FilterState, now time.Time, loc *time.Location) (string, string) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	var start, end time.Time
	switch state.DatePreset {
	case domain.PresetToday:
		start, end = today, today
	case domain.PresetYesterday:
		start = today.AddDate(0, 0, -1)
		end = start
	case domain.PresetLast7:
		start, end = today.AddDate(0, 0, -6), today
	case domain.PresetThisWeek:
		start, end = today.AddDate(0, 0, -int(today.Weekday())), today
	case domain.PresetLast90:
		start, end = today.AddDate(0, 0, -89), today
	case domain.PresetThisMonth:
		start, end = monthStart, today
	case domain.PresetLastMonth:
		start, end = monthStart.AddDate(0, -1, 0), monthStart.AddDate(0, 0, -1)
	case domain.PresetQuarter:
		start, end = monthStart.AddDate(0, -2, 0), monthStart.AddDate(0, 1, -1)
	case domain.PresetYTD:
		start, end = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), today
	case domain.PresetCustom:
		customStart, okStart := parseDay(state.StartDate)
		customEnd, okEnd := parseDay(state.EndDate)
		switch {
		case okStart && okEnd:
			start, end = customStart, customEnd
		case okStart:
			start, end = customStart, customStart
		case okEnd:
			start, end = customEnd, customEnd
		default:
			start, end = today.AddDate(0, 0, -29), today
		}
	default:
		start, end = today.AddDate(0, 0, -29), today
	}

	if end.Before(start) {
		start, end = end, start
	}
	return start.Format(dayLayout), end.Format(dayLayout)
}

// ComparisonWindow returns the equal-length period that ends the day before
// start.
func ComparisonWindow(start string, end string) (string, string) {
	startDay, okStart := parseDay(start)
	endDay, okEnd := parseDay(end)
	if !okStart || !okEnd {
		return "", ""
	}
	diffDays := int(endDay.Sub(startDay).Hours() / 24)
	compEnd := startDay.AddDate(0, 0, -1)
	compStart := compEnd.AddDate(0, 0, -diffDays)
	return compStart.Format(dayLayout), compEnd.Format(dayLayout)
}

func parseDay(value string) (time.Time, bool) {
	parsed, err := time.Parse(dayLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// AppointmentPredicate matches appointments by service date within rng plus
// every dimension selection in the state. Time basis does not change the
// appointment date used.
func (r Resolved) AppointmentPredicate(rng Range) func(domain.Appointment) bool {
	state := r.State
	return func(appt domain.Appointment) bool {
		if !rng.Contains(appt.ServiceDate) {
			return false
		}
		if !matchesAny(state.AppointmentStatuses, appt.Status) {
			return false
		}
		return appointmentDimensions(state, appt, nil)
	}
}

// TransactionPredicate matches transactions within rng. With the service
// time basis a transaction takes its linked appointment's date. Appointment
// dimensions apply through the linked appointment; services and categories
// also match the transaction's own line items.
func (r Resolved) TransactionPredicate(rng Range, appointments map[string]domain.Appointment) func(domain.Transaction) bool {
	state := r.State
	return func(tx domain.Transaction) bool {
		linked, hasLink := appointments[tx.AppointmentID]
		if tx.AppointmentID == "" {
			hasLink = false
		}

		date := tx.Date
		if state.TimeBasis == domain.TimeBasisService && hasLink && linked.ServiceDate != "" {
			date = linked.ServiceDate
		}
		if !rng.Contains(date) {
			return false
		}
		if !matchesAny(state.PaymentMethods, tx.PaymentMethod) {
			return false
		}

		if hasLink {
			return appointmentDimensions(state, linked, tx.Items)
		}
		if len(state.Staff) > 0 || len(state.PetSizes) > 0 || len(state.Channels) > 0 || len(state.ClientTypes) > 0 {
			return false
		}
		return itemDimensions(state, tx.Items)
	}
}

// Apply returns the appointments and transactions of ds that fall inside
// rng and match the state's selections.
func (r Resolved) Apply(ds domain.Dataset, rng Range) ([]domain.Appointment, []domain.Transaction) {
	byID := make(map[string]domain.Appointment, len(ds.Appointments))
	for _, appt := range ds.Appointments {
		byID[appt.ID] = appt
	}

	matchAppt := r.AppointmentPredicate(rng)
	appts := make([]domain.Appointment, 0, len(ds.Appointments))
	for _, appt := range ds.Appointments {
		if matchAppt(appt) {
			appts = append(appts, appt)
		}
	}

	matchTx := r.TransactionPredicate(rng, byID)
	txs := make([]domain.Transaction, 0, len(ds.Transactions))
	for _, tx := range ds.Transactions {
		if matchTx(tx) {
			txs = append(txs, tx)
		}
	}
	return appts, txs
}

func appointmentDimensions(state domain.FilterState, appt domain.Appointment, items []domain.TransactionItem) bool {
	if !matchesAny(state.Staff, appt.StaffID) {
		return false
	}
	if !matchesAny(state.PetSizes, appt.PetSize) {
		return false
	}
	if !matchesAny(state.Channels, appt.Channel) {
		return false
	}
	if !matchesAny(state.ClientTypes, appt.ClientType) {
		return false
	}

	if len(state.Services) > 0 {
		values := make([]string, 0, len(appt.Services)*2+len(items))
		for _, line := range appt.Services {
			values = append(values, line.ID, line.Name)
		}
		for _, item := range items {
			values = append(values, item.Name)
		}
		if !matchesAny(state.Services, values...) {
			return false
		}
	}
	if len(state.Categories) > 0 {
		values := make([]string, 0, len(appt.Services)+len(items))
		for _, line := range appt.Services {
			values = append(values, line.Category)
		}
		for _, item := range items {
			values = append(values, item.Category)
		}
		if !matchesAny(state.Categories, values...) {
			return false
		}
	}
	return true
}

func itemDimensions(state domain.FilterState, items []domain.TransactionItem) bool {
	if len(state.Services) > 0 {
		names := make([]string, 0, len(items))
		for _, item := range items {
			names = append(names, item.Name)
		}
		if !matchesAny(state.Services, names...) {
			return false
		}
	}
	if len(state.Categories) > 0 {
		categories := make([]string, 0, len(items))
		for _, item := range items {
			categories = append(categories, item.Category)
		}
		if !matchesAny(state.Categories, categories...) {
			return false
		}
	}
	return true
}

// matchesAny is OR within one dimension; an empty selection matches
// everything.
func matchesAny(selected []string, values ...string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, want := range selected {
		for _, value := range values {
			if strings.EqualFold(strings.TrimSpace(want), value) {
				return true
			}
		}
	}
	return false
}
