// Package reports computes KPI scorecards, chart series and grouped tables
// for each report from a normalized dataset and a resolved filter.
package reports

import (
	"errors"
	"sort"

	"github.com/JimmysRanch/126-sub001/internal/domain"
	"github.com/JimmysRanch/126-sub001/internal/filters"
	"github.com/JimmysRanch/126-sub001/internal/insights"
	"github.com/JimmysRanch/126-sub001/internal/metrics"
)

var ErrUnknownReport = errors.New("unknown report")

// CostParams are the business's estimate inputs for derived costs.
type CostParams struct {
	COGSRate          float64
	CardFeeRate       float64
	CardFeeFixedCents int64
	StaffHoursPerDay  float64
}

func DefaultCostParams() CostParams {
	return CostParams{
		COGSRate:          0.15,
		CardFeeRate:       0.029,
		CardFeeFixedCents: 30,
		StaffHoursPerDay:  8,
	}
}

// Engine is stateless apart from its cost parameters; Build is safe to call
// concurrently.
type Engine struct {
	params CostParams
}

func NewEngine(params CostParams) *Engine {
	defaults := DefaultCostParams()
	if params.COGSRate < 0 {
		params.COGSRate = defaults.COGSRate
	}
	if params.CardFeeRate < 0 {
		params.CardFeeRate = defaults.CardFeeRate
	}
	if params.CardFeeFixedCents < 0 {
		params.CardFeeFixedCents = defaults.CardFeeFixedCents
	}
	if params.StaffHoursPerDay <= 0 {
		params.StaffHoursPerDay = defaults.StaffHoursPerDay
	}
	return &Engine{params: params}
}

func (e *Engine) Params() CostParams {
	return e.params
}

// IDs lists every report the engine can build, sorted.
func IDs() []string {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func Known(reportID string) bool {
	_, ok := catalog[reportID]
	return ok
}

// Build computes one report. It returns ErrUnknownReport for ids outside
// the catalog and never fails otherwise.
func (e *Engine) Build(reportID string, ds domain.Dataset, resolved filters.Resolved) (domain.ReportData, error) {
	spec, ok := catalog[reportID]
	if !ok {
		return domain.ReportData{}, ErrUnknownReport
	}

	ctx := newBuildContext(reportID, ds, resolved, e.params)
	out := domain.ReportData{
		ReportID:  reportID,
		StartDate: resolved.Primary.Start,
		EndDate:   resolved.Primary.End,
		KPIs:      make([]domain.KPIValue, 0, len(spec.kpis)),
		Charts:    make([]domain.ChartData, 0, len(spec.charts)),
	}
	if ctx.compare != nil {
		out.CompareStartDate = ctx.compare.rng.Start
		out.CompareEndDate = ctx.compare.rng.End
	}

	for _, id := range spec.kpis {
		out.KPIs = append(out.KPIs, ctx.kpi(id))
	}
	for _, chart := range spec.charts {
		out.Charts = append(out.Charts, chart(ctx))
	}
	out.Table = spec.table(ctx)
	out.Table.Columns, out.Table.Rows = visibleColumns(out.Table.Columns, out.Table.Rows, resolved.State.VisibleColumns)

	in := insights.Input{
		ReportID:      reportID,
		StartDate:     ctx.primary.rng.Start,
		EndDate:       ctx.primary.rng.End,
		Scope:         filters.ScopeFilter(resolved.State),
		HasComparison: ctx.compare != nil,
		KPIs:          ctx.signalKPIs(out.KPIs),
		Appointments:  ctx.primary.appts,
		Transactions:  ctx.primary.txs,
	}
	if ctx.compare != nil {
		in.CompareAppointments = ctx.compare.appts
		in.CompareTransactions = ctx.compare.txs
	}
	out.Insights = insights.Generate(in)
	return out, nil
}

// signalKPIs adds the metrics the insight rules read when the report itself
// does not show them.
func (c *buildContext) signalKPIs(kpis []domain.KPIValue) []domain.KPIValue {
	merged := append([]domain.KPIValue(nil), kpis...)
	have := make(map[string]bool, len(kpis))
	for _, kpi := range kpis {
		have[kpi.ID] = true
	}
	for _, id := range []string{metrics.ContributionMarginPct, metrics.Rebook7d, metrics.LowStockItems} {
		if !have[id] {
			merged = append(merged, c.kpi(id))
		}
	}
	return merged
}

func visibleColumns(columns []domain.TableColumn, rows []domain.TableRow, visible []string) ([]domain.TableColumn, []domain.TableRow) {
	if len(visible) == 0 {
		return columns, rows
	}
	keep := make(map[string]bool, len(visible))
	for _, id := range visible {
		keep[id] = true
	}
	trimmed := make([]domain.TableColumn, 0, len(columns))
	for _, col := range columns {
		if keep[col.ID] {
			trimmed = append(trimmed, col)
		}
	}
	if len(trimmed) == 0 {
		return columns, rows
	}
	for i := range rows {
		values := make(map[string]float64, len(trimmed))
		for _, col := range trimmed {
			values[col.ID] = rows[i].Values[col.ID]
		}
		rows[i].Values = values
	}
	return trimmed, rows
}
