package reports

import (
	"sort"
	"strings"

	"github.com/JimmysRanch/126-sub001/internal/domain"
	"github.com/JimmysRanch/126-sub001/internal/metrics"
)

type tableBuilder func(*buildContext) domain.TableData

func metricColumn(id string) domain.TableColumn {
	return column(id, metrics.Label(id), formatOf(id))
}

func column(id string, label string, format string) domain.TableColumn {
	return domain.TableColumn{ID: id, Label: label, Format: format, Align: "right"}
}

func rowID(prefix string, key string) string {
	if key == "" {
		key = "unknown"
	}
	return prefix + ":" + strings.ToLower(key)
}

// sortRows puts the largest first column first; ties go by label.
func sortRows(rows []domain.TableRow, firstColumn string) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Values[firstColumn], rows[j].Values[firstColumn]
		if a != b {
			return a > b
		}
		return rows[i].Label < rows[j].Label
	})
}

// groupTable aggregates metric columns per group of a dimension. The
// filter's GroupBy overrides defaultDim when it is one of allowed.
func groupTable(title string, defaultDim string, allowed []string, columnIDs []string, rowTypes []string) tableBuilder {
	return func(c *buildContext) domain.TableData {
		dimID := defaultDim
		for _, candidate := range allowed {
			if candidate == c.state.GroupBy {
				dimID = candidate
			}
		}
		dim := dimensions[dimID]

		columns := make([]domain.TableColumn, 0, len(columnIDs))
		for _, id := range columnIDs {
			columns = append(columns, metricColumn(id))
		}

		groups := c.groupBy(c.primary, dim)
		rows := make([]domain.TableRow, 0, len(groups))
		for _, g := range groups {
			all := c.groupValues(c.primary, dim, g)
			values := make(map[string]float64, len(columnIDs))
			for _, id := range columnIDs {
				values[id] = all[id]
			}
			rows = append(rows, domain.TableRow{
				ID:     rowID(dim.id, g.key),
				Label:  g.label,
				Values: values,
				Drill: &domain.DrillRequest{
					Title:    dim.label + ": " + g.label,
					RowTypes: append([]string(nil), rowTypes...),
					Filter:   c.drillFilter(c.primary, dim, g),
				},
			})
		}
		if !dim.ordered && len(columnIDs) > 0 {
			sortRows(rows, columnIDs[0])
		}
		return domain.TableData{Title: title, GroupBy: dim.id, Columns: columns, Rows: rows}
	}
}

const (
	colTimesSold     = "timesSold"
	colLineRevenue   = "lineRevenue"
	colAvgPrice      = "avgPrice"
	colRevenueShare  = "revenueShare"
	colScheduledTime = "scheduledMinutes"
)

// serviceMixTable works on the service lines of completed visits, so a
// visit with two services splits its revenue instead of counting twice.
func serviceMixTable(c *buildContext) domain.TableData {
	dim := dimensions[DimService]
	if c.state.GroupBy == DimCategory {
		dim = dimensions[DimCategory]
	}

	type lineTotals struct {
		label   string
		count   float64
		revenue float64
		minutes float64
	}
	totals := make(map[string]*lineTotals)
	var revenue float64
	for _, appt := range c.primary.appts {
		if appt.Status != domain.StatusCompleted {
			continue
		}
		for _, line := range appt.Services {
			key := line.Name
			if dim.id == DimCategory {
				key = line.Category
			}
			t, ok := totals[key]
			if !ok {
				t = &lineTotals{label: key}
				totals[key] = t
			}
			t.count++
			t.revenue += float64(line.PriceCents)
			t.minutes += float64(line.DurationMinutes)
			revenue += float64(line.PriceCents)
		}
	}

	rows := make([]domain.TableRow, 0, len(totals))
	for key, t := range totals {
		rows = append(rows, domain.TableRow{
			ID:    rowID(dim.id, key),
			Label: t.label,
			Values: map[string]float64{
				colTimesSold:     t.count,
				colLineRevenue:   t.revenue,
				colAvgPrice:      ratio(t.revenue, t.count),
				colRevenueShare:  ratio(t.revenue, revenue),
				colScheduledTime: t.minutes,
			},
			Drill: &domain.DrillRequest{
				Title:    dim.label + ": " + t.label,
				RowTypes: []string{domain.RowAppointments},
				Filter:   c.drillWindow(c.primary, map[string]string{dim.drillKey: key, "status": domain.StatusCompleted}),
			},
		})
	}
	sortRows(rows, colLineRevenue)

	return domain.TableData{
		Title:   "Service mix",
		GroupBy: dim.id,
		Columns: []domain.TableColumn{
			column(colTimesSold, "Times Sold", domain.FormatInt),
			column(colLineRevenue, "Revenue", domain.FormatMoney),
			column(colAvgPrice, "Avg Price", domain.FormatMoney),
			column(colRevenueShare, "Share of Revenue", domain.FormatPercent),
			column(colScheduledTime, "Scheduled Time", domain.FormatMinutes),
		},
		Rows: rows,
	}
}

const (
	colOnHand       = "onHand"
	colReorderLevel = "reorderLevel"
	colUnitCost     = "unitCost"
	colStockValue   = "stockValue"
	colUnitsUsed    = "unitsUsed"
	colUsageCost    = "usageCost"
)

// inventoryUse counts units consumed in the window per inventory item:
// one per linked service line on a completed visit plus retail quantities.
func (c *buildContext) inventoryUse(w *window) map[string]float64 {
	used := make(map[string]float64, len(c.ds.Inventory))
	for _, appt := range w.appts {
		if appt.Status != domain.StatusCompleted {
			continue
		}
		for _, line := range appt.Services {
			for _, item := range c.ds.Inventory {
				for _, linked := range item.LinkedServiceIDs {
					if line.ID != "" && linked == line.ID {
						used[item.ID]++
					}
				}
			}
		}
	}
	for _, tx := range w.txs {
		for _, txItem := range tx.Items {
			if txItem.Kind != domain.ItemKindProduct {
				continue
			}
			for _, item := range c.ds.Inventory {
				if strings.EqualFold(item.Name, txItem.Name) {
					used[item.ID] += float64(txItem.Quantity)
					break
				}
			}
		}
	}
	return used
}

func inventoryTable(c *buildContext) domain.TableData {
	used := c.inventoryUse(c.primary)
	rows := make([]domain.TableRow, 0, len(c.ds.Inventory))
	for _, item := range c.ds.Inventory {
		onHand := float64(item.QuantityOnHand)
		stockValue := 0.0
		if onHand > 0 {
			stockValue = onHand * float64(item.UnitCostCents)
		}
		rows = append(rows, domain.TableRow{
			ID:    rowID("inventory", item.ID),
			Label: item.Name,
			Values: map[string]float64{
				colOnHand:       onHand,
				colReorderLevel: float64(item.ReorderLevel),
				colUnitCost:     float64(item.UnitCostCents),
				colStockValue:   stockValue,
				colUnitsUsed:    used[item.ID],
				colUsageCost:    used[item.ID] * float64(item.UnitCostCents),
			},
			Drill: &domain.DrillRequest{
				Title:    "Inventory: " + item.Name,
				RowTypes: []string{domain.RowInventory},
				Filter:   map[string]string{"inventoryId": item.ID},
			},
		})
	}
	sortRows(rows, colUsageCost)

	return domain.TableData{
		Title:   "Inventory usage",
		GroupBy: "item",
		Columns: []domain.TableColumn{
			column(colOnHand, "On Hand", domain.FormatInt),
			column(colReorderLevel, "Reorder Level", domain.FormatInt),
			column(colUnitCost, "Unit Cost", domain.FormatMoney),
			column(colStockValue, "Stock Value", domain.FormatMoney),
			column(colUnitsUsed, "Units Used", domain.FormatInt),
			column(colUsageCost, "Usage Cost", domain.FormatMoney),
		},
		Rows: rows,
	}
}
