package reports

import (
	"sort"

	"github.com/JimmysRanch/126-sub001/internal/domain"
)

// lineRevenue plots service line revenue of completed visits grouped by
// service name or category.
func lineRevenue(id string, title string, kind string, dimID string) chartBuilder {
	return func(c *buildContext) domain.ChartData {
		build := func(w *window) map[string]float64 {
			totals := make(map[string]float64)
			for _, appt := range w.appts {
				if appt.Status != domain.StatusCompleted {
					continue
				}
				for _, line := range appt.Services {
					key := line.Name
					if dimID == DimCategory {
						key = line.Category
					}
					totals[key] += float64(line.PriceCents)
				}
			}
			return totals
		}

		primary := build(c.primary)
		labels := make([]string, 0, len(primary))
		for label := range primary {
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool {
			if primary[labels[i]] != primary[labels[j]] {
				return primary[labels[i]] > primary[labels[j]]
			}
			return labels[i] < labels[j]
		})

		points := func(totals map[string]float64) []domain.ChartPoint {
			out := make([]domain.ChartPoint, 0, len(labels))
			for _, label := range labels {
				out = append(out, domain.ChartPoint{X: label, Y: totals[label]})
			}
			return out
		}
		series := []domain.ChartSeries{{Name: "Service Revenue", Points: points(primary)}}
		var compare []domain.ChartSeries
		if c.compare != nil && kind != domain.ChartDonut {
			compare = []domain.ChartSeries{{Name: "Service Revenue", Points: points(build(c.compare))}}
		}
		return newChart(id, title, kind, domain.FormatMoney, series, compare)
	}
}

// inventoryCategoryUsage sums estimated usage cost per inventory category.
func inventoryCategoryUsage(id string, title string) chartBuilder {
	return func(c *buildContext) domain.ChartData {
		used := c.inventoryUse(c.primary)
		totals := make(map[string]float64)
		for _, item := range c.ds.Inventory {
			totals[item.Category] += used[item.ID] * float64(item.UnitCostCents)
		}
		labels := make([]string, 0, len(totals))
		for label := range totals {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		points := make([]domain.ChartPoint, 0, len(labels))
		for _, label := range labels {
			points = append(points, domain.ChartPoint{X: label, Y: totals[label]})
		}
		series := []domain.ChartSeries{{Name: "Usage Cost", Points: points}}
		return newChart(id, title, domain.ChartBar, domain.FormatMoney, series, nil)
	}
}

// stockLevels compares on-hand quantity against reorder level for items at
// or below it.
func stockLevels(id string, title string) chartBuilder {
	return func(c *buildContext) domain.ChartData {
		items := make([]domain.InventoryItem, 0)
		for _, item := range c.ds.Inventory {
			if item.QuantityOnHand <= item.ReorderLevel {
				items = append(items, item)
			}
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

		onHand := make([]domain.ChartPoint, 0, len(items))
		reorder := make([]domain.ChartPoint, 0, len(items))
		for _, item := range items {
			onHand = append(onHand, domain.ChartPoint{X: item.Name, Y: float64(item.QuantityOnHand)})
			reorder = append(reorder, domain.ChartPoint{X: item.Name, Y: float64(item.ReorderLevel)})
		}
		series := []domain.ChartSeries{
			{Name: "On Hand", Points: onHand},
			{Name: "Reorder Level", Points: reorder},
		}
		return newChart(id, title, domain.ChartBar, domain.FormatInt, series, nil)
	}
}
