package drill

import (
	"testing"

	"github.com/JimmysRanch/126-sub001/internal/domain"
)

func drillDataset() domain.Dataset {
	return domain.Dataset{
		Appointments: []domain.Appointment{
			{ID: "a1", ClientID: "c1", ClientName: "Avery", StaffID: "s1", StaffName: "Riley", ServiceDate: "2024-03-05", StartTime: "09:00", EndTime: "10:00",
				Status: domain.StatusCompleted, Channel: "phone", ClientType: domain.ClientTypeNew,
				Services: []domain.ServiceLine{{ID: "svc-bath", Name: "Bath & Brush", Category: "Bath"}}, TotalCents: 6500},
			{ID: "a2", ClientID: "c2", ClientName: "Blake", StaffID: "s2", StaffName: "Sam", ServiceDate: "2024-03-06", StartTime: "11:00", EndTime: "12:30",
				Status: domain.StatusCancelled, Channel: "online", ClientType: domain.ClientTypeNew,
				Services: []domain.ServiceLine{{ID: "svc-full", Name: "Full Groom", Category: "Full Groom"}}, TotalCents: 9000},
			{ID: "a3", ClientID: "c1", ClientName: "Avery", StaffID: "s1", StaffName: "Riley", ServiceDate: "2024-04-02", StartTime: "09:00", EndTime: "10:00",
				Status: domain.StatusCompleted, Channel: "phone", ClientType: domain.ClientTypeReturning,
				Services: []domain.ServiceLine{{ID: "svc-bath", Name: "Bath & Brush", Category: "Bath"}}, TotalCents: 6500},
		},
		Transactions: []domain.Transaction{
			{ID: "t1", AppointmentID: "a1", ClientID: "c1", ClientName: "Avery", Date: "2024-03-05", Status: domain.TxStatusCompleted, PaymentMethod: "card", SubtotalCents: 6500, TotalCents: 6500},
			{ID: "t3", AppointmentID: "a3", ClientID: "c1", ClientName: "Avery", Date: "2024-04-02", Status: domain.TxStatusCompleted, PaymentMethod: "cash", SubtotalCents: 6500, TotalCents: 6500},
			{ID: "t4", ClientID: "c3", ClientName: "Casey", Date: "2024-03-07", Status: domain.TxStatusCompleted, PaymentMethod: "card", SubtotalCents: 2400, TotalCents: 2400,
				Items: []domain.TransactionItem{{Kind: domain.ItemKindProduct, Name: "Oatmeal Shampoo", Category: "Retail", Quantity: 1, TotalCents: 2400}}},
		},
		Clients: []domain.Client{
			{ID: "c1", Name: "Avery", Type: domain.ClientTypeReturning},
			{ID: "c2", Name: "Blake", Type: domain.ClientTypeNew},
			{ID: "c3", Name: "Casey", Type: domain.ClientTypeNew},
		},
		Staff: []domain.Staff{
			{ID: "s1", Name: "Riley", HourlyRateCents: 2200, HasHourlyRate: true, Status: "active"},
			{ID: "s2", Name: "Sam", Status: "active"},
		},
		Inventory: []domain.InventoryItem{
			{ID: "inv-1", Name: "Oatmeal Shampoo", Category: "Shampoo", UnitCostCents: 150, QuantityOnHand: 4, LinkedServiceIDs: []string{"svc-bath"}},
			{ID: "inv-2", Name: "Ear Cleaner", Category: "Care", UnitCostCents: 80, QuantityOnHand: 10},
		},
		Messages: []domain.Message{
			{ID: "m1", Campaign: "Spring", Channel: "sms", SentAt: "2024-03-01T10:00:00Z", SentDate: "2024-03-01", CostCents: 2, Delivered: true},
			{ID: "m2", Campaign: "Reminder", Channel: "email", SentAt: "2024-03-02T10:00:00Z", SentDate: "2024-03-02", CostCents: 1},
		},
	}
}

func TestResolveAppointmentsByStaffAndWindow(t *testing.T) {
	result := Resolve(domain.DrillRequest{
		Title:    "Staff: Riley",
		RowTypes: []string{domain.RowAppointments},
		Filter:   map[string]string{KeyStaffID: "s1", KeyStartDate: "2024-03-01", KeyEndDate: "2024-03-31"},
	}, drillDataset())

	if result.Title != "Staff: Riley" || len(result.Sets) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	rows := result.Sets[0].Rows
	if len(rows) != 1 || rows[0]["id"] != "a1" {
		t.Fatalf("expected only a1, got %+v", rows)
	}
	if rows[0]["total"] != "$65.00" || rows[0]["date"] != "Mar 5, 2024" {
		t.Fatalf("unexpected formatting %+v", rows[0])
	}
}

func TestEmptyFilterReturnsEverything(t *testing.T) {
	result := Resolve(domain.DrillRequest{
		RowTypes: []string{domain.RowTransactions, domain.RowMessages, domain.RowInventory},
		Filter:   map[string]string{},
	}, drillDataset())
	if len(result.Sets) != 3 {
		t.Fatalf("expected 3 sets, got %d", len(result.Sets))
	}
	if len(result.Sets[0].Rows) != 3 || len(result.Sets[1].Rows) != 2 || len(result.Sets[2].Rows) != 2 {
		t.Fatalf("unexpected row counts %d/%d/%d", len(result.Sets[0].Rows), len(result.Sets[1].Rows), len(result.Sets[2].Rows))
	}
}

func TestTransactionsThroughLinkedAppointment(t *testing.T) {
	result := Resolve(domain.DrillRequest{
		RowTypes: []string{domain.RowTransactions},
		Filter:   map[string]string{KeyStaffID: "s1", KeyPaymentMethod: "card"},
	}, drillDataset())
	rows := result.Sets[0].Rows
	if len(rows) != 1 || rows[0]["id"] != "t1" {
		t.Fatalf("expected only t1, got %+v", rows)
	}
}

func TestTransactionsByItemName(t *testing.T) {
	result := Resolve(domain.DrillRequest{
		RowTypes: []string{domain.RowTransactions},
		Filter:   map[string]string{KeyServiceName: "oatmeal shampoo"},
	}, drillDataset())
	rows := result.Sets[0].Rows
	if len(rows) != 1 || rows[0]["id"] != "t4" {
		t.Fatalf("expected only t4, got %+v", rows)
	}
}

func TestAppointmentsByPaymentMethod(t *testing.T) {
	result := Resolve(domain.DrillRequest{
		RowTypes: []string{domain.RowAppointments},
		Filter:   map[string]string{KeyPaymentMethod: "cash"},
	}, drillDataset())
	rows := result.Sets[0].Rows
	if len(rows) != 1 || rows[0]["id"] != "a3" {
		t.Fatalf("expected only a3, got %+v", rows)
	}
}

func TestClientsFollowMatchingAppointments(t *testing.T) {
	result := Resolve(domain.DrillRequest{
		RowTypes: []string{domain.RowClients},
		Filter:   map[string]string{KeyClientType: domain.ClientTypeNew, KeyStartDate: "2024-03-01", KeyEndDate: "2024-03-31"},
	}, drillDataset())
	rows := result.Sets[0].Rows
	if len(rows) != 2 || rows[0]["id"] != "c1" || rows[1]["id"] != "c2" {
		t.Fatalf("expected c1 and c2, got %+v", rows)
	}
	if rows[0]["visits"] != "1" || rows[1]["visits"] != "0" {
		t.Fatalf("unexpected visit counts %+v", rows)
	}
}

func TestMessagesAndInventoryKeys(t *testing.T) {
	result := Resolve(domain.DrillRequest{
		RowTypes: []string{domain.RowMessages, domain.RowInventory, "unknown"},
		Filter:   map[string]string{KeyCampaign: "Spring", KeyServiceID: "svc-bath"},
	}, drillDataset())
	if rows := result.Sets[0].Rows; len(rows) != 1 || rows[0]["id"] != "m1" || rows[0]["cost"] != "$0.02" {
		t.Fatalf("unexpected messages %+v", rows)
	}
	if rows := result.Sets[1].Rows; len(rows) != 1 || rows[0]["id"] != "inv-1" || rows[0]["stockValue"] != "$6.00" {
		t.Fatalf("unexpected inventory %+v", rows)
	}
	if set := result.Sets[2]; set.RowType != "unknown" || len(set.Rows) != 0 {
		t.Fatalf("unexpected set for unknown row type %+v", set)
	}
}

func TestStaffRows(t *testing.T) {
	result := Resolve(domain.DrillRequest{
		RowTypes: []string{domain.RowStaff},
		Filter:   map[string]string{KeyStatus: domain.StatusCompleted},
	}, drillDataset())
	rows := result.Sets[0].Rows
	if len(rows) != 2 || rows[0]["name"] != "Riley" || rows[0]["appointments"] != "2" || rows[0]["hourlyRate"] != "$22.00/hr" {
		t.Fatalf("unexpected staff rows %+v", rows)
	}
}

func TestScopeKeysNarrowEveryRowType(t *testing.T) {
	result := Resolve(domain.DrillRequest{
		RowTypes: []string{domain.RowTransactions, domain.RowAppointments},
		Filter:   map[string]string{"staff": "s2,s1", "payments": "card", KeyStartDate: "2024-03-01", KeyEndDate: "2024-03-31"},
	}, drillDataset())

	// t4 is unlinked, so a staff selection drops it.
	txs := result.Sets[0].Rows
	if len(txs) != 1 || txs[0]["id"] != "t1" {
		t.Fatalf("expected only t1, got %+v", txs)
	}
	// Payment selections narrow transactions only; a3 falls outside the window.
	appts := result.Sets[1].Rows
	if len(appts) != 2 || appts[0]["id"] != "a1" || appts[1]["id"] != "a2" {
		t.Fatalf("expected a1 and a2, got %+v", appts)
	}
}

func TestTimeBasisMovesTransactionsToServiceDate(t *testing.T) {
	ds := drillDataset()
	ds.Transactions[0].Date = "2024-03-20"
	filter := map[string]string{KeyStartDate: "2024-03-05", KeyEndDate: "2024-03-05"}

	result := Resolve(domain.DrillRequest{RowTypes: []string{domain.RowTransactions}, Filter: filter}, ds)
	if len(result.Sets[0].Rows) != 0 {
		t.Fatalf("checkout basis must use the transaction date, got %+v", result.Sets[0].Rows)
	}

	filter[KeyTimeBasis] = domain.TimeBasisService
	filter[KeyWeekday] = "2"
	result = Resolve(domain.DrillRequest{RowTypes: []string{domain.RowTransactions}, Filter: filter}, ds)
	if rows := result.Sets[0].Rows; len(rows) != 1 || rows[0]["id"] != "t1" {
		t.Fatalf("service basis must place t1 on its appointment's date, got %+v", rows)
	}
}

func TestUnknownLabelMatchesEmptyValues(t *testing.T) {
	ds := drillDataset()
	ds.Appointments[1].Channel = ""
	result := Resolve(domain.DrillRequest{
		RowTypes: []string{domain.RowAppointments},
		Filter:   map[string]string{KeyChannel: domain.UnknownLabel},
	}, ds)
	if rows := result.Sets[0].Rows; len(rows) != 1 || rows[0]["id"] != "a2" {
		t.Fatalf("expected only a2, got %+v", rows)
	}
}
