package reports

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/JimmysRanch/126-sub001/internal/domain"
	"github.com/JimmysRanch/126-sub001/internal/metrics"
)

type chartBuilder func(*buildContext) domain.ChartData

func formatOf(metricID string) string {
	if def, ok := metrics.Lookup(metricID); ok {
		return def.Format
	}
	return domain.FormatInt
}

func ariaLabel(kind string, title string, series []domain.ChartSeries) string {
	points := 0
	for _, s := range series {
		points += len(s.Points)
	}
	return fmt.Sprintf("%s chart: %s, %d series, %d points", kind, title, len(series), points)
}

func newChart(id string, title string, kind string, format string, series []domain.ChartSeries, compare []domain.ChartSeries) domain.ChartData {
	return domain.ChartData{
		ID:            id,
		Title:         title,
		Kind:          kind,
		Format:        format,
		Series:        series,
		CompareSeries: compare,
		AriaLabel:     ariaLabel(kind, title, series),
	}
}

// dailyLine plots each metric per calendar day. The comparison series is
// aligned by day offset and carries its own dates.
func dailyLine(id string, title string, metricIDs ...string) chartBuilder {
	return func(c *buildContext) domain.ChartData {
		series := make([]domain.ChartSeries, 0, len(metricIDs))
		for _, metricID := range metricIDs {
			series = append(series, c.daySeries(c.primary, metricID))
		}
		var compare []domain.ChartSeries
		if c.compare != nil {
			compare = []domain.ChartSeries{c.daySeries(c.compare, metricIDs[0])}
		}
		return newChart(id, title, domain.ChartLine, formatOf(metricIDs[0]), series, compare)
	}
}

func (c *buildContext) daySeries(w *window, metricID string) domain.ChartSeries {
	dim := dimensions[DimDay]
	byDay := make(map[string]*group)
	for _, g := range c.groupBy(w, dim) {
		byDay[g.key] = g
	}
	keys := dayKeys(w.rng)
	points := make([]domain.ChartPoint, 0, len(keys))
	for i, day := range keys {
		y := 0.0
		if g, ok := byDay[day]; ok {
			y = c.groupValues(w, dim, g)[metricID]
		}
		points = append(points, domain.ChartPoint{X: day, XValue: float64(i), Y: y})
	}
	return domain.ChartSeries{Name: metrics.Label(metricID), Points: points}
}

// byDimension plots one metric per group of dim.
func byDimension(id string, title string, kind string, dimID string, metricID string) chartBuilder {
	return func(c *buildContext) domain.ChartData {
		dim := dimensions[dimID]
		primary, order := c.dimensionSeries(c.primary, dim, metricID, nil)
		var compare []domain.ChartSeries
		if c.compare != nil && kind != domain.ChartDonut {
			series, _ := c.dimensionSeries(c.compare, dim, metricID, order)
			compare = []domain.ChartSeries{series}
		}
		return newChart(id, title, kind, formatOf(metricID), []domain.ChartSeries{primary}, compare)
	}
}

// dimensionSeries aggregates metricID per group, one point per group key
// labelled with the group's label. With order set the series follows those
// groups and fills missing ones with 0. It returns the groups it plotted.
func (c *buildContext) dimensionSeries(w *window, dim dimension, metricID string, order []member) (domain.ChartSeries, []member) {
	values := make(map[string]float64)
	plotted := make([]member, 0)
	for _, g := range c.groupBy(w, dim) {
		values[g.key] = c.groupValues(w, dim, g)[metricID]
		plotted = append(plotted, member{g.key, g.label})
	}
	if order != nil {
		plotted = order
	}
	points := make([]domain.ChartPoint, 0, len(plotted))
	for _, mem := range plotted {
		points = append(points, domain.ChartPoint{X: mem.label, Y: values[mem.key]})
	}
	return domain.ChartSeries{Name: metrics.Label(metricID), Points: points}, plotted
}

// metricBars is a single bar series with one bar per metric.
func metricBars(id string, title string, metricIDs ...string) chartBuilder {
	return func(c *buildContext) domain.ChartData {
		build := func(w *window) domain.ChartSeries {
			points := make([]domain.ChartPoint, 0, len(metricIDs))
			for _, metricID := range metricIDs {
				points = append(points, domain.ChartPoint{X: metrics.Label(metricID), Y: w.values[metricID]})
			}
			return domain.ChartSeries{Name: title, Points: points}
		}
		var compare []domain.ChartSeries
		if c.compare != nil {
			compare = []domain.ChartSeries{build(c.compare)}
		}
		return newChart(id, title, domain.ChartBar, formatOf(metricIDs[0]), []domain.ChartSeries{build(c.primary)}, compare)
	}
}

// stacked plots one series per stack metric across the groups of dim.
func stacked(id string, title string, dimID string, stackIDs ...string) chartBuilder {
	return func(c *buildContext) domain.ChartData {
		dim := dimensions[dimID]
		groups := c.groupBy(c.primary, dim)
		series := make([]domain.ChartSeries, 0, len(stackIDs))
		for _, stackID := range stackIDs {
			points := make([]domain.ChartPoint, 0, len(groups))
			for _, g := range groups {
				points = append(points, domain.ChartPoint{X: g.label, Y: c.groupValues(c.primary, dim, g)[stackID]})
			}
			series = append(series, domain.ChartSeries{Name: metrics.Label(stackID), Points: points})
		}
		return newChart(id, title, domain.ChartStackedBar, formatOf(stackIDs[0]), series, nil)
	}
}

// crossStack splits each group of outer by the members of inner, counting
// appointments or summing service line revenue.
func crossStack(id string, title string, outerID string, innerID string, lineRevenue bool) chartBuilder {
	return func(c *buildContext) domain.ChartData {
		outer := dimensions[outerID]
		inner := dimensions[innerID]
		groups := c.groupBy(c.primary, outer)

		cells := make(map[string]map[string]float64)
		innerLabels := make(map[string]bool)
		for _, g := range groups {
			cells[g.label] = make(map[string]float64)
			for _, appt := range g.appts {
				if lineRevenue {
					if appt.Status != domain.StatusCompleted {
						continue
					}
					for _, line := range appt.Services {
						label := line.Category
						if innerID == DimService {
							label = line.Name
						}
						cells[g.label][label] += float64(line.PriceCents)
						innerLabels[label] = true
					}
					continue
				}
				for _, mem := range inner.appt(appt) {
					label := mem.label
					if label == "" {
						label = domain.UnknownLabel
					}
					cells[g.label][label]++
					innerLabels[label] = true
				}
			}
		}

		names := make([]string, 0, len(innerLabels))
		for label := range innerLabels {
			names = append(names, label)
		}
		sort.Strings(names)
		series := make([]domain.ChartSeries, 0, len(names))
		for _, name := range names {
			points := make([]domain.ChartPoint, 0, len(groups))
			for _, g := range groups {
				points = append(points, domain.ChartPoint{X: g.label, Y: cells[g.label][name]})
			}
			series = append(series, domain.ChartSeries{Name: name, Points: points})
		}
		format := domain.FormatInt
		if lineRevenue {
			format = domain.FormatMoney
		}
		return newChart(id, title, domain.ChartStackedBar, format, series, nil)
	}
}

// weekdayHourHeatmap counts booked appointments by weekday and start hour.
// Each weekday is a series whose points are hours.
func weekdayHourHeatmap(id string, title string) chartBuilder {
	return func(c *buildContext) domain.ChartData {
		counts := make(map[int]map[int]float64)
		hours := make(map[int]bool)
		for _, appt := range c.primary.appts {
			if appt.Status == domain.StatusCancelled {
				continue
			}
			wd := weekdayMember(appt.ServiceDate)
			hour, ok := startHour(appt.StartTime)
			if len(wd) == 0 || !ok {
				continue
			}
			day := int(wd[0].key[0] - '0')
			if counts[day] == nil {
				counts[day] = make(map[int]float64)
			}
			counts[day][hour]++
			hours[hour] = true
		}

		hourList := make([]int, 0, len(hours))
		for hour := range hours {
			hourList = append(hourList, hour)
		}
		sort.Ints(hourList)

		series := make([]domain.ChartSeries, 0, len(weekdays))
		for day, name := range weekdays {
			points := make([]domain.ChartPoint, 0, len(hourList))
			for _, hour := range hourList {
				points = append(points, domain.ChartPoint{X: fmt.Sprintf("%02d:00", hour), XValue: float64(hour), Y: counts[day][hour]})
			}
			series = append(series, domain.ChartSeries{Name: name, Points: points})
		}
		return newChart(id, title, domain.ChartHeatmap, domain.FormatInt, series, nil)
	}
}

func startHour(value string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}

// staffScatter places each staff member at (x metric, y metric).
func staffScatter(id string, title string, xID string, yID string) chartBuilder {
	return func(c *buildContext) domain.ChartData {
		dim := dimensions[DimStaff]
		groups := c.groupBy(c.primary, dim)
		points := make([]domain.ChartPoint, 0, len(groups))
		for _, g := range groups {
			values := c.groupValues(c.primary, dim, g)
			points = append(points, domain.ChartPoint{
				X:      g.label,
				XValue: values[xID],
				Y:      values[yID],
				Extra:  map[string]float64{metrics.CompletedAppointments: values[metrics.CompletedAppointments]},
			})
		}
		series := []domain.ChartSeries{{Name: metrics.Label(yID) + " vs " + metrics.Label(xID), Points: points}}
		return newChart(id, title, domain.ChartScatter, formatOf(yID), series, nil)
	}
}
