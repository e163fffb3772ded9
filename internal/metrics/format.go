package metrics

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/JimmysRanch/126-sub001/internal/domain"
)

var printer = message.NewPrinter(language.English)

// FormatValue renders a metric value for display. Money values are in minor
// units; percent values are ratios.
func FormatValue(value float64, format string) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	switch format {
	case domain.FormatMoney:
		return formatMoney(value)
	case domain.FormatPercent:
		return fmt.Sprintf("%.1f%%", value*100)
	case domain.FormatMinutes:
		return fmt.Sprintf("%d min", int64(math.Round(value)))
	default:
		return printer.Sprintf("%d", int64(math.Round(value)))
	}
}

// FormatDelta is FormatValue with an explicit sign.
func FormatDelta(delta float64, format string) string {
	switch {
	case delta > 0:
		return "+" + FormatValue(delta, format)
	case delta < 0:
		return "-" + FormatValue(-delta, format)
	default:
		return FormatValue(0, format)
	}
}

// Trend classifies a delta; a nil delta is flat.
func Trend(delta *float64) string {
	switch {
	case delta == nil:
		return domain.TrendFlat
	case *delta > 0:
		return domain.TrendUp
	case *delta < 0:
		return domain.TrendDown
	default:
		return domain.TrendFlat
	}
}

func formatMoney(cents float64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + "$" + printer.Sprintf("%.2f", math.Round(cents)/100)
}

// Tooltip assembles definition, formula, exclusions and time-basis note.
// Unknown ids have no tooltip.
func Tooltip(id string) string {
	def, ok := Lookup(id)
	if !ok {
		return ""
	}
	parts := []string{def.Definition, "Formula: " + def.Formula}
	if def.Exclusions != "" {
		parts = append(parts, "Excludes: "+def.Exclusions)
	}
	if def.TimeBasisNote != "" {
		parts = append(parts, "Time basis: "+def.TimeBasisNote)
	}
	return strings.Join(parts, " ")
}

// Label falls back to the raw id for metrics missing from the catalog.
func Label(id string) string {
	if def, ok := Lookup(id); ok {
		return def.Label
	}
	return id
}

// KPI wraps a computed value as a KPIValue. previous is nil when there is no
// comparison window.
func KPI(id string, value float64, previous *float64) domain.KPIValue {
	def, ok := Lookup(id)
	format := domain.FormatInt
	var drill []string
	if ok {
		format = def.Format
		drill = append([]string(nil), def.DrillRowTypes...)
	}
	value = finite(value)

	kpi := domain.KPIValue{
		ID:            id,
		Label:         Label(id),
		Value:         value,
		Formatted:     FormatValue(value, format),
		Format:        format,
		Tooltip:       Tooltip(id),
		DrillRowTypes: drill,
	}
	if previous != nil {
		delta := value - finite(*previous)
		kpi.Delta = &delta
		kpi.FormattedDelta = FormatDelta(delta, format)
	}
	kpi.Trend = Trend(kpi.Delta)
	return kpi
}

func finite(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}
