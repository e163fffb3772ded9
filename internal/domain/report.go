package domain

// FilterState is the user's report query. It is treated as an immutable value:
// resolvers and codecs return modified copies instead of mutating it.
type FilterState struct {
	DatePreset          string   `json:"datePreset"`
	StartDate           string   `json:"startDate,omitempty"`
	EndDate             string   `json:"endDate,omitempty"`
	TimeBasis           string   `json:"timeBasis"`
	Staff               []string `json:"staff,omitempty"`
	Services            []string `json:"services,omitempty"`
	Categories          []string `json:"categories,omitempty"`
	PetSizes            []string `json:"petSizes,omitempty"`
	Channels            []string `json:"channels,omitempty"`
	ClientTypes         []string `json:"clientTypes,omitempty"`
	AppointmentStatuses []string `json:"appointmentStatuses,omitempty"`
	PaymentMethods      []string `json:"paymentMethods,omitempty"`
	IncludeDiscounts    bool     `json:"includeDiscounts"`
	IncludeRefunds      bool     `json:"includeRefunds"`
	IncludeTips         bool     `json:"includeTips"`
	IncludeTaxes        bool     `json:"includeTaxes"`
	IncludeGiftCards    bool     `json:"includeGiftCards"`
	CompareMode         bool     `json:"compareMode"`
	GroupBy             string   `json:"groupBy,omitempty"`
	VisibleColumns      []string `json:"visibleColumns,omitempty"`
}

const (
	TimeBasisService     = "service"
	TimeBasisCheckout    = "checkout"
	TimeBasisTransaction = "transaction"
)

const (
	PresetToday     = "today"
	PresetYesterday = "yesterday"
	PresetLast7     = "last7"
	PresetThisWeek  = "thisWeek"
	PresetLast30    = "last30"
	PresetLast90    = "last90"
	PresetThisMonth = "thisMonth"
	PresetLastMonth = "lastMonth"
	PresetQuarter   = "quarter"
	PresetYTD       = "ytd"
	PresetCustom    = "custom"
)

const (
	FormatMoney   = "money"
	FormatPercent = "percent"
	FormatInt     = "int"
	FormatMinutes = "minutes"
)

const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

const (
	ChartLine       = "line"
	ChartBar        = "bar"
	ChartStackedBar = "stacked-bar"
	ChartDonut      = "donut"
	ChartScatter    = "scatter"
	ChartHeatmap    = "heatmap"
)

const (
	RowAppointments = "appointments"
	RowTransactions = "transactions"
	RowClients      = "clients"
	RowStaff        = "staff"
	RowInventory    = "inventory"
	RowMessages     = "messages"
)

type KPIValue struct {
	ID             string   `json:"id"`
	Label          string   `json:"label"`
	Value          float64  `json:"value"`
	Formatted      string   `json:"formatted"`
	Delta          *float64 `json:"delta,omitempty"`
	FormattedDelta string   `json:"formattedDelta,omitempty"`
	Trend          string   `json:"trend,omitempty"`
	Format         string   `json:"format"`
	Tooltip        string   `json:"tooltip,omitempty"`
	DrillRowTypes  []string `json:"drillRowTypes,omitempty"`
}

type ChartPoint struct {
	X      string             `json:"x"`
	XValue float64            `json:"xValue,omitempty"`
	Y      float64            `json:"y"`
	Extra  map[string]float64 `json:"extra,omitempty"`
}

type ChartSeries struct {
	Name   string       `json:"name"`
	Points []ChartPoint `json:"points"`
}

type ChartData struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Kind          string        `json:"kind"`
	Format        string        `json:"format"`
	Series        []ChartSeries `json:"series"`
	CompareSeries []ChartSeries `json:"compareSeries,omitempty"`
	AriaLabel     string        `json:"ariaLabel"`
}

type TableColumn struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Format string `json:"format"`
	Align  string `json:"align"`
}

type TableRow struct {
	ID     string             `json:"id"`
	Label  string             `json:"label"`
	Values map[string]float64 `json:"values"`
	Drill  *DrillRequest      `json:"drill,omitempty"`
}

type TableData struct {
	Title   string        `json:"title"`
	GroupBy string        `json:"groupBy"`
	Columns []TableColumn `json:"columns"`
	Rows    []TableRow    `json:"rows"`
}

type InsightsItem struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	MetricID    string        `json:"metricId,omitempty"`
	Delta       *float64      `json:"delta,omitempty"`
	Action      string        `json:"action,omitempty"`
	Drill       *DrillRequest `json:"drill,omitempty"`
}

// DrillRequest points from an aggregate back to the rows that produced it.
// Filter keys are business field names; absent keys impose no constraint.
type DrillRequest struct {
	Title    string            `json:"title"`
	RowTypes []string          `json:"rowTypes"`
	Filter   map[string]string `json:"filter"`
}

type DrillRowSet struct {
	RowType string              `json:"rowType"`
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

type DrillResult struct {
	Title string        `json:"title"`
	Sets  []DrillRowSet `json:"sets"`
}

type ReportData struct {
	ReportID         string         `json:"reportId"`
	StartDate        string         `json:"startDate"`
	EndDate          string         `json:"endDate"`
	CompareStartDate string         `json:"compareStartDate,omitempty"`
	CompareEndDate   string         `json:"compareEndDate,omitempty"`
	KPIs             []KPIValue     `json:"kpis"`
	Charts           []ChartData    `json:"charts"`
	Table            TableData      `json:"table"`
	Insights         []InsightsItem `json:"insights"`
}

type MetricDefinition struct {
	ID            string   `json:"id"`
	Label         string   `json:"label"`
	Definition    string   `json:"definition"`
	Formula       string   `json:"formula"`
	Exclusions    string   `json:"exclusions,omitempty"`
	TimeBasisNote string   `json:"timeBasisNote,omitempty"`
	Format        string   `json:"format"`
	DrillRowTypes []string `json:"drillRowTypes,omitempty"`
}

const (
	ReportOwnerOverview         = "owner-overview"
	ReportTrueProfit            = "true-profit"
	ReportSalesSummary          = "sales-summary"
	ReportFinanceReconciliation = "finance-reconciliation"
	ReportAppointmentsCapacity  = "appointments-capacity"
	ReportNoShowsCancellations  = "no-shows-cancellations"
	ReportRetentionRebooking    = "retention-rebooking"
	ReportClientCohorts         = "client-cohorts"
	ReportStaffPerformance      = "staff-performance"
	ReportServiceMix            = "service-mix"
	ReportInventoryUsage        = "inventory-usage"
	ReportMarketingMessaging    = "marketing-messaging"
)

type ReportSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type FilterDefaults struct {
	ReportID string      `json:"reportId"`
	State    FilterState `json:"state"`
	Query    string      `json:"query"`
}
