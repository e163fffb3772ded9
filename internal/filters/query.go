package filters

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	"github.com/JimmysRanch/126-sub001/internal/domain"
)

const (
	paramPreset      = "preset"
	paramStart       = "start"
	paramEnd         = "end"
	paramBasis       = "basis"
	paramStaff       = "staff"
	paramServices    = "services"
	paramCategories  = "categories"
	paramPetSizes    = "petSizes"
	paramChannels    = "channels"
	paramClientTypes = "clientTypes"
	paramStatuses    = "statuses"
	paramPayments    = "payments"
	paramDiscounts   = "discounts"
	paramRefunds     = "refunds"
	paramTips        = "tips"
	paramTaxes       = "taxes"
	paramGiftCards   = "giftCards"
	paramCompare     = "compare"
	paramGroupBy     = "groupBy"
	paramColumns     = "columns"
)

// DefaultState is the filter a report opens with when nothing was supplied.
func DefaultState(reportID string) domain.FilterState {
	state := domain.FilterState{
		DatePreset:       domain.PresetLast30,
		TimeBasis:        domain.TimeBasisCheckout,
		IncludeDiscounts: true,
		IncludeRefunds:   true,
		IncludeTips:      true,
		IncludeTaxes:     true,
		IncludeGiftCards: true,
	}

	switch reportID {
	case domain.ReportOwnerOverview, domain.ReportTrueProfit:
		state.CompareMode = true
	case domain.ReportFinanceReconciliation:
		state.TimeBasis = domain.TimeBasisTransaction
	case domain.ReportAppointmentsCapacity, domain.ReportNoShowsCancellations,
		domain.ReportStaffPerformance, domain.ReportServiceMix:
		state.TimeBasis = domain.TimeBasisService
	case domain.ReportRetentionRebooking, domain.ReportClientCohorts:
		state.DatePreset = domain.PresetLast90
		state.TimeBasis = domain.TimeBasisService
	case domain.ReportSalesSummary:
		state.CompareMode = true
	}
	return state
}

// Encode writes state as query parameters. Multi-selects are comma-joined
// and omitted when empty; toggles are always the literal "true"/"false".
func Encode(state domain.FilterState) url.Values {
	values := url.Values{}
	values.Set(paramPreset, state.DatePreset)
	if state.StartDate != "" {
		values.Set(paramStart, state.StartDate)
	}
	if state.EndDate != "" {
		values.Set(paramEnd, state.EndDate)
	}
	values.Set(paramBasis, state.TimeBasis)

	setList(values, paramStaff, state.Staff)
	setList(values, paramServices, state.Services)
	setList(values, paramCategories, state.Categories)
	setList(values, paramPetSizes, state.PetSizes)
	setList(values, paramChannels, state.Channels)
	setList(values, paramClientTypes, state.ClientTypes)
	setList(values, paramStatuses, state.AppointmentStatuses)
	setList(values, paramPayments, state.PaymentMethods)

	setBool(values, paramDiscounts, state.IncludeDiscounts)
	setBool(values, paramRefunds, state.IncludeRefunds)
	setBool(values, paramTips, state.IncludeTips)
	setBool(values, paramTaxes, state.IncludeTaxes)
	setBool(values, paramGiftCards, state.IncludeGiftCards)
	setBool(values, paramCompare, state.CompareMode)

	if state.GroupBy != "" {
		values.Set(paramGroupBy, state.GroupBy)
	}
	setList(values, paramColumns, state.VisibleColumns)
	return values
}

// Decode reads state from query parameters, falling back to the report's
// defaults for anything missing or unparseable.
func Decode(values url.Values, reportID string) domain.FilterState {
	state := DefaultState(reportID)

	if preset := strings.TrimSpace(values.Get(paramPreset)); preset != "" {
		state.DatePreset = preset
	}
	if start := strings.TrimSpace(values.Get(paramStart)); start != "" {
		state.StartDate = start
	}
	if end := strings.TrimSpace(values.Get(paramEnd)); end != "" {
		state.EndDate = end
	}
	switch basis := strings.TrimSpace(values.Get(paramBasis)); basis {
	case domain.TimeBasisService, domain.TimeBasisCheckout, domain.TimeBasisTransaction:
		state.TimeBasis = basis
	}

	state.Staff = getList(values, paramStaff, state.Staff)
	state.Services = getList(values, paramServices, state.Services)
	state.Categories = getList(values, paramCategories, state.Categories)
	state.PetSizes = getList(values, paramPetSizes, state.PetSizes)
	state.Channels = getList(values, paramChannels, state.Channels)
	state.ClientTypes = getList(values, paramClientTypes, state.ClientTypes)
	state.AppointmentStatuses = getList(values, paramStatuses, state.AppointmentStatuses)
	state.PaymentMethods = getList(values, paramPayments, state.PaymentMethods)

	state.IncludeDiscounts = getBool(values, paramDiscounts, state.IncludeDiscounts)
	state.IncludeRefunds = getBool(values, paramRefunds, state.IncludeRefunds)
	state.IncludeTips = getBool(values, paramTips, state.IncludeTips)
	state.IncludeTaxes = getBool(values, paramTaxes, state.IncludeTaxes)
	state.IncludeGiftCards = getBool(values, paramGiftCards, state.IncludeGiftCards)
	state.CompareMode = getBool(values, paramCompare, state.CompareMode)

	if groupBy := strings.TrimSpace(values.Get(paramGroupBy)); groupBy != "" {
		state.GroupBy = groupBy
	}
	state.VisibleColumns = getList(values, paramColumns, state.VisibleColumns)

	// A preset-less explicit range is a custom range.
	if values.Get(paramPreset) == "" && (state.StartDate != "" || state.EndDate != "") {
		state.DatePreset = domain.PresetCustom
	}
	return state
}

// Hash is a stable fingerprint of state for cache keys. Selection order does
// not affect it.
func Hash(state domain.FilterState) string {
	canonical := state
	canonical.Staff = sortedCopy(state.Staff)
	canonical.Services = sortedCopy(state.Services)
	canonical.Categories = sortedCopy(state.Categories)
	canonical.PetSizes = sortedCopy(state.PetSizes)
	canonical.Channels = sortedCopy(state.Channels)
	canonical.ClientTypes = sortedCopy(state.ClientTypes)
	canonical.AppointmentStatuses = sortedCopy(state.AppointmentStatuses)
	canonical.PaymentMethods = sortedCopy(state.PaymentMethods)

	sum := sha1.Sum([]byte(Encode(canonical).Encode()))
	return hex.EncodeToString(sum[:])
}

func setList(values url.Values, key string, list []string) {
	cleaned := make([]string, 0, len(list))
	for _, item := range list {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return
	}
	values.Set(key, strings.Join(cleaned, ","))
}

func getList(values url.Values, key string, fallback []string) []string {
	raw, ok := values[key]
	if !ok || len(raw) == 0 {
		return fallback
	}
	list := make([]string, 0, 4)
	for _, part := range strings.Split(raw[0], ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	if len(list) == 0 {
		return nil
	}
	return list
}

func setBool(values url.Values, key string, value bool) {
	if value {
		values.Set(key, "true")
		return
	}
	values.Set(key, "false")
}

func getBool(values url.Values, key string, fallback bool) bool {
	switch strings.TrimSpace(values.Get(key)) {
	case "true":
		return true
	case "false":
		return false
	default:
		return fallback
	}
}

func sortedCopy(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	out := append([]string(nil), list...)
	sort.Strings(out)
	return out
}

// ScopeTimeBasis is the drill filter key carrying the report's time basis.
const ScopeTimeBasis = "timeBasis"

var scopeParams = []string{
	paramStaff, paramServices, paramCategories, paramPetSizes,
	paramChannels, paramClientTypes, paramStatuses, paramPayments,
}

// ScopeFilter returns the drill filter entries that reproduce state's
// multi-select selections and time basis. Lists are comma-joined with the
// same names the query codec uses.
func ScopeFilter(state domain.FilterState) map[string]string {
	values := Encode(state)
	out := map[string]string{}
	if state.TimeBasis != "" {
		out[ScopeTimeBasis] = state.TimeBasis
	}
	for _, key := range scopeParams {
		if value := values.Get(key); value != "" {
			out[key] = value
		}
	}
	return out
}

// ScopeFromFilter rebuilds the selections a drill filter carries. ok is
// false when the filter names neither a selection nor a time basis.
func ScopeFromFilter(filter map[string]string) (domain.FilterState, bool) {
	state := domain.FilterState{TimeBasis: domain.TimeBasisCheckout}
	found := false
	switch basis := strings.TrimSpace(filter[ScopeTimeBasis]); basis {
	case domain.TimeBasisService, domain.TimeBasisCheckout, domain.TimeBasisTransaction:
		state.TimeBasis = basis
		found = true
	}

	values := url.Values{}
	for _, key := range scopeParams {
		if value := strings.TrimSpace(filter[key]); value != "" {
			values.Set(key, value)
			found = true
		}
	}
	state.Staff = getList(values, paramStaff, nil)
	state.Services = getList(values, paramServices, nil)
	state.Categories = getList(values, paramCategories, nil)
	state.PetSizes = getList(values, paramPetSizes, nil)
	state.Channels = getList(values, paramChannels, nil)
	state.ClientTypes = getList(values, paramClientTypes, nil)
	state.AppointmentStatuses = getList(values, paramStatuses, nil)
	state.PaymentMethods = getList(values, paramPayments, nil)
	return state, found
}
