package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/JimmysRanch/126-sub001/internal/domain"
	"github.com/JimmysRanch/126-sub001/internal/store"
)

func TestReplaceAndLoadDatasetRoundTrip(t *testing.T) {
	databaseURL := os.Getenv("REPORTING_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set REPORTING_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	stamp := time.Now().UnixNano()
	businessID := fmt.Sprintf("it-salon-%d", stamp)
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM dataset_imports WHERE business_id = $1`, businessID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM report_datasets WHERE business_id = $1`, businessID)
	})

	if _, err := s.DatasetVersion(ctx, businessID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before import, got %v", err)
	}

	raw := domain.RawDataset{
		Appointments: []domain.RawAppointment{
			{ID: "apt-1", ClientID: "cli-1", Date: "2024-03-05", Status: "completed", TotalPrice: "45.00"},
			{ID: "apt-2", ClientID: "cli-1", Date: "2024-03-19", Status: "cancelled", TotalPrice: "45.00"},
		},
		Transactions: []domain.RawTransaction{{ID: "txn-1", AppointmentID: "apt-1", Subtotal: "45.00", Total: "51.75", Tip: "6.75"}},
		Staff:        []domain.RawStaff{{ID: "stf-1", Name: "Riley", HourlyRate: "$22/hr"}},
	}
	record := domain.DatasetImport{ID: fmt.Sprintf("imp-%d", stamp), Version: "v1", ImportedBy: "owner"}
	if err := s.ReplaceDataset(ctx, businessID, raw, record); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := s.ReplaceDataset(ctx, businessID, raw, record); !errors.Is(err, store.ErrInvalidDataset) {
		t.Fatalf("expected duplicate import id to be rejected, got %v", err)
	}

	loaded, version, err := s.LoadDataset(ctx, businessID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if version != "v1" {
		t.Fatalf("expected version v1, got %q", version)
	}
	if len(loaded.Appointments) != 2 || loaded.Appointments[0].ID != "apt-1" || loaded.Appointments[1].ID != "apt-2" {
		t.Fatalf("unexpected appointments %+v", loaded.Appointments)
	}
	if loaded.Transactions[0].Tip != "6.75" || loaded.Staff[0].HourlyRate != "$22/hr" {
		t.Fatalf("raw values were not preserved: %+v %+v", loaded.Transactions[0], loaded.Staff[0])
	}

	imports, err := s.ListImports(ctx, businessID, 10)
	if err != nil {
		t.Fatalf("list imports: %v", err)
	}
	if len(imports) != 1 || imports[0].Counts.Appointments != 2 || imports[0].Counts.Transactions != 1 {
		t.Fatalf("unexpected imports %+v", imports)
	}
}
