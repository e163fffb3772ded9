package reports

import (
	"strings"

	"github.com/JimmysRanch/126-sub001/internal/domain"
	"github.com/JimmysRanch/126-sub001/internal/filters"
	"github.com/JimmysRanch/126-sub001/internal/metrics"
)

// window is one filtered period with its aggregates computed once.
type window struct {
	rng    filters.Range
	appts  []domain.Appointment
	txs    []domain.Transaction
	msgs   []domain.Message
	values map[string]float64
}

type buildContext struct {
	reportID  string
	state     domain.FilterState
	ds        domain.Dataset
	params    CostParams
	apptByID  map[string]domain.Appointment
	staffByID map[string]domain.Staff
	headcount int
	primary   *window
	compare   *window
}

func newBuildContext(reportID string, ds domain.Dataset, resolved filters.Resolved, params CostParams) *buildContext {
	c := &buildContext{
		reportID:  reportID,
		state:     resolved.State,
		ds:        ds,
		params:    params,
		apptByID:  make(map[string]domain.Appointment, len(ds.Appointments)),
		staffByID: make(map[string]domain.Staff, len(ds.Staff)),
	}
	for _, appt := range ds.Appointments {
		c.apptByID[appt.ID] = appt
	}
	for _, member := range ds.Staff {
		c.staffByID[member.ID] = member
	}
	c.headcount = c.countHeadcount()

	c.primary = c.newWindow(resolved, resolved.Primary)
	if resolved.Comparison != nil {
		c.compare = c.newWindow(resolved, *resolved.Comparison)
	}
	return c
}

func (c *buildContext) newWindow(resolved filters.Resolved, rng filters.Range) *window {
	appts, txs := resolved.Apply(c.ds, rng)
	msgs := make([]domain.Message, 0)
	for _, msg := range c.ds.Messages {
		if rng.Contains(msg.SentDate) {
			msgs = append(msgs, msg)
		}
	}
	w := &window{rng: rng, appts: appts, txs: txs, msgs: msgs}
	w.values = c.aggregate(slice{appts: appts, txs: txs, msgs: msgs}, rng.Days(), c.headcount)
	return w
}

// countHeadcount is the number of active staff, narrowed to the staff
// selection when one is set.
func (c *buildContext) countHeadcount() int {
	selected := make(map[string]bool, len(c.state.Staff))
	for _, id := range c.state.Staff {
		selected[strings.ToLower(strings.TrimSpace(id))] = true
	}
	count := 0
	for _, member := range c.ds.Staff {
		if !activeStaff(member) {
			continue
		}
		if len(selected) > 0 && !selected[strings.ToLower(member.ID)] {
			continue
		}
		count++
	}
	return count
}

func activeStaff(member domain.Staff) bool {
	switch member.Status {
	case "inactive", "terminated", "archived":
		return false
	}
	return true
}

// txDate is the date a transaction is bucketed on under the current time
// basis.
func (c *buildContext) txDate(tx domain.Transaction) string {
	if c.state.TimeBasis == domain.TimeBasisService && tx.AppointmentID != "" {
		if appt, ok := c.apptByID[tx.AppointmentID]; ok && appt.ServiceDate != "" {
			return appt.ServiceDate
		}
	}
	return tx.Date
}

func (c *buildContext) kpi(id string) domain.KPIValue {
	value := c.primary.values[id]
	if c.compare == nil {
		return metrics.KPI(id, value, nil)
	}
	previous := c.compare.values[id]
	return metrics.KPI(id, value, &previous)
}

// drillWindow scopes filter to w's dates and the report's own selections
// so a drill returns exactly the rows behind the aggregate.
func (c *buildContext) drillWindow(w *window, filter map[string]string) map[string]string {
	out := filters.ScopeFilter(c.state)
	out["startDate"] = w.rng.Start
	out["endDate"] = w.rng.End
	for key, value := range filter {
		out[key] = value
	}
	return out
}
