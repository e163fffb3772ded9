package filters

import (
	"reflect"
	"testing"

	"github.com/JimmysRanch/126-sub001/internal/domain"
)

func TestScopeFilterRoundTrip(t *testing.T) {
	state := DefaultState(domain.ReportSalesSummary)
	state.TimeBasis = domain.TimeBasisService
	state.Staff = []string{"s1", " s2 "}
	state.PaymentMethods = []string{"cash"}
	state.IncludeRefunds = false

	filter := ScopeFilter(state)
	if filter["staff"] != "s1,s2" || filter["payments"] != "cash" || filter[ScopeTimeBasis] != domain.TimeBasisService {
		t.Fatalf("unexpected scope filter %+v", filter)
	}
	if _, ok := filter["refunds"]; ok {
		t.Fatalf("toggles do not belong in a drill scope: %+v", filter)
	}

	back, ok := ScopeFromFilter(filter)
	if !ok {
		t.Fatalf("expected a scope to be found")
	}
	if !reflect.DeepEqual(back.Staff, []string{"s1", "s2"}) || !reflect.DeepEqual(back.PaymentMethods, []string{"cash"}) || back.TimeBasis != domain.TimeBasisService {
		t.Fatalf("unexpected scope %+v", back)
	}
	if back.Services != nil || back.Channels != nil {
		t.Fatalf("unselected lists must stay empty: %+v", back)
	}

	if _, ok := ScopeFromFilter(map[string]string{"startDate": "2024-03-01", "staffId": "s1"}); ok {
		t.Fatalf("a filter without scope keys must not produce a scope")
	}
}
