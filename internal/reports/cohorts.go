package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/JimmysRanch/126-sub001/internal/domain"
	"github.com/JimmysRanch/126-sub001/internal/filters"
)

const cohortMonths = 6

const (
	colCohortClients = "cohortClients"
	colReturned      = "returnedClients"
	colRetention     = "retentionRate"
	colCohortSales   = "cohortNetSales"
)

// cohort is the clients whose first visit ever fell in one month.
type cohort struct {
	month   string
	start   string
	end     string
	clients []string
	// active[i] counts clients with a completed visit i months after the
	// cohort month.
	active   [cohortMonths]float64
	returned float64
}

// firstVisits maps each client to their first non-cancelled visit in the
// whole dataset, the same rule that marks appointments new.
func firstVisits(appts []domain.Appointment) map[string]string {
	first := make(map[string]string)
	for _, appt := range appts {
		if appt.Status == domain.StatusCancelled || appt.ClientID == "" || appt.ServiceDate == "" {
			continue
		}
		if current, ok := first[appt.ClientID]; !ok || appt.ServiceDate < current {
			first[appt.ClientID] = appt.ServiceDate
		}
	}
	return first
}

func monthsBetween(from time.Time, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// cohorts builds one cohort per month whose new clients fall inside the
// primary window, sorted by month. First visits come from the whole
// dataset; membership and later visits only count appointments that match
// the report's selections.
func (c *buildContext) cohorts() []*cohort {
	first := firstVisits(c.ds.Appointments)
	byMonth := make(map[string]*cohort)
	members := make(map[string]bool)
	for _, appt := range c.primary.appts {
		if appt.Status == domain.StatusCancelled || appt.ClientID == "" || members[appt.ClientID] {
			continue
		}
		date, ok := first[appt.ClientID]
		if !ok || appt.ServiceDate != date {
			continue
		}
		members[appt.ClientID] = true
		month := date[:7]
		co, ok := byMonth[month]
		if !ok {
			co = &cohort{month: month}
			byMonth[month] = co
		}
		co.clients = append(co.clients, appt.ClientID)
	}

	inScope := filters.Resolved{State: c.state}.AppointmentPredicate(filters.Unbounded)
	completed := make(map[string][]string)
	for _, appt := range c.ds.Appointments {
		if !members[appt.ClientID] || appt.Status != domain.StatusCompleted || !inScope(appt) {
			continue
		}
		completed[appt.ClientID] = append(completed[appt.ClientID], appt.ServiceDate)
	}

	out := make([]*cohort, 0, len(byMonth))
	for _, co := range byMonth {
		sort.Strings(co.clients)
		monthStart, _ := time.Parse("2006-01", co.month)
		co.start = maxDate(monthStart.Format("2006-01-02"), c.primary.rng.Start)
		co.end = minDate(monthStart.AddDate(0, 1, -1).Format("2006-01-02"), c.primary.rng.End)

		for _, clientID := range co.clients {
			var seen [cohortMonths]bool
			cameBack := false
			for _, date := range completed[clientID] {
				visit, err := time.Parse("2006-01-02", date)
				if err != nil {
					continue
				}
				if date > first[clientID] {
					cameBack = true
				}
				offset := monthsBetween(monthStart, visit)
				if offset >= 0 && offset < cohortMonths && !seen[offset] {
					seen[offset] = true
					co.active[offset]++
				}
			}
			if cameBack {
				co.returned++
			}
		}
		out = append(out, co)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].month < out[j].month })
	return out
}

func maxDate(a string, b string) string {
	if a > b {
		return a
	}
	return b
}

func minDate(a string, b string) string {
	if a < b {
		return a
	}
	return b
}

func cohortTable(c *buildContext) domain.TableData {
	sales := make(map[string]float64)
	for _, tx := range c.primary.txs {
		sales[tx.ClientID] += salesOf(c.state, tx).net()
	}

	cohorts := c.cohorts()
	rows := make([]domain.TableRow, 0, len(cohorts))
	for _, co := range cohorts {
		var net float64
		for _, clientID := range co.clients {
			net += sales[clientID]
		}
		size := float64(len(co.clients))
		rows = append(rows, domain.TableRow{
			ID:    rowID("cohort", co.month),
			Label: co.month,
			Values: map[string]float64{
				colCohortClients: size,
				colReturned:      co.returned,
				colRetention:     ratio(co.returned, size),
				colCohortSales:   net,
			},
			Drill: &domain.DrillRequest{
				Title:    "Cohort " + co.month,
				RowTypes: []string{domain.RowClients, domain.RowAppointments},
				Filter: c.drillWindow(c.primary, map[string]string{
					"clientType": domain.ClientTypeNew,
					"startDate":  co.start,
					"endDate":    co.end,
				}),
			},
		})
	}

	return domain.TableData{
		Title:   "Client cohorts by first visit",
		GroupBy: "cohort",
		Columns: []domain.TableColumn{
			column(colCohortClients, "New Clients", domain.FormatInt),
			column(colReturned, "Came Back", domain.FormatInt),
			column(colRetention, "Retention", domain.FormatPercent),
			column(colCohortSales, "Net Sales in Period", domain.FormatMoney),
		},
		Rows: rows,
	}
}

// cohortHeatmap plots, per cohort, the share of clients active N months
// after their first visit.
func cohortHeatmap(id string, title string) chartBuilder {
	return func(c *buildContext) domain.ChartData {
		cohorts := c.cohorts()
		series := make([]domain.ChartSeries, 0, len(cohorts))
		for _, co := range cohorts {
			size := float64(len(co.clients))
			points := make([]domain.ChartPoint, 0, cohortMonths)
			for offset := 0; offset < cohortMonths; offset++ {
				points = append(points, domain.ChartPoint{
					X:      fmt.Sprintf("Month %d", offset),
					XValue: float64(offset),
					Y:      ratio(co.active[offset], size),
				})
			}
			series = append(series, domain.ChartSeries{Name: co.month, Points: points})
		}
		return newChart(id, title, domain.ChartHeatmap, domain.FormatPercent, series, nil)
	}
}
