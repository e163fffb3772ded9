package memory

import (
	"fmt"
	"time"

	"github.com/JimmysRanch/126-sub001/internal/domain"
)

const seedDays = 120

type seedService struct {
	id      string
	name    string
	price   float64
	minutes int
}

var (
	seedMainServices = []seedService{
		{id: "svc-bath", name: "Bath & Brush", price: 45, minutes: 60},
		{id: "svc-full", name: "Full Groom", price: 85, minutes: 120},
		{id: "svc-puppy", name: "Puppy Trim", price: 55, minutes: 75},
	}
	seedAddOns = []seedService{
		{id: "svc-nails", name: "Nail Trim", price: 15, minutes: 15},
		{id: "svc-teeth", name: "Teeth Brushing", price: 12, minutes: 15},
	}
	seedStaff = []domain.RawStaff{
		{ID: "stf-riley", Name: "Riley Park", Role: "Senior Groomer", HourlyRate: "$24.00/hr", Status: "active"},
		{ID: "stf-sam", Name: "Sam Ortiz", Role: "Groomer", HourlyRate: "19.50", Status: "active"},
		{ID: "stf-jo", Name: "Jo Bennett", Role: "Bather", HourlyRate: "", Status: "active"},
		{ID: "stf-alex", Name: "Alex Kim", Role: "Groomer", HourlyRate: "18", Status: "inactive"},
	}
	seedClientNames = []string{
		"Avery Collins", "Blake Hughes", "Casey Morgan", "Dana Price", "Emerson Lee", "Finley Ross",
		"Gray Turner", "Harper Diaz", "Indy Patel", "Jordan Brooks", "Kendall Shaw", "Logan Reyes",
		"Morgan Ellis", "Noel Foster", "Oakley Grant", "Parker Wells",
	}
	seedPets       = []string{"Biscuit", "Luna", "Milo", "Pepper", "Rosie", "Tank", "Waffles", "Ziggy"}
	seedPetSizes   = []string{"small", "medium", "large", "xl"}
	seedPayments   = []string{"card", "cash", "credit_card", "card", "check"}
	seedReferrals  = []string{"Google", "Instagram", "Friend", "Walk-by"}
	seedCampaigns  = []string{"Spring Refresh", "Win-back", "Holiday Bows"}
	seedStartTimes = []string{"09:00", "11:30", "14:00"}
)

func money(value float64) domain.RawNumber {
	return domain.RawNumber(fmt.Sprintf("%.2f", value))
}

func clientID(i int) string {
	return fmt.Sprintf("cli-%02d", i+1)
}

// SeedDataset builds a deterministic demo salon whose records span the
// seedDays days ending on today. Raw field conventions mirror what the
// booking system exports: decimal dollars, string hourly rates, free-text
// notes.
func SeedDataset(today time.Time) domain.RawDataset {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	start := day.AddDate(0, 0, -(seedDays - 1))

	raw := domain.RawDataset{Staff: append([]domain.RawStaff(nil), seedStaff...)}
	for i, name := range seedClientNames {
		raw.Clients = append(raw.Clients, domain.RawClient{
			ID:             clientID(i),
			Name:           name,
			CreatedAt:      start.AddDate(0, 0, -30+i).Format(time.RFC3339),
			Address:        domain.RawAddress{City: "Austin", State: "TX", Zip: fmt.Sprintf("787%02d", i)},
			ReferralSource: seedReferrals[i%len(seedReferrals)],
		})
	}

	n := 0
	for offset := 0; offset < seedDays; offset++ {
		date := start.AddDate(0, 0, offset)
		if date.Weekday() == time.Sunday {
			continue
		}
		slots := 2
		if offset%3 == 0 {
			slots = 3
		}
		for slot := 0; slot < slots; slot++ {
			n++
			seedVisit(&raw, n, date, slot, date.Equal(day))
		}
	}

	for i := 0; i < seedDays; i += 10 {
		date := start.AddDate(0, 0, i)
		campaign := seedCampaigns[(i/10)%len(seedCampaigns)]
		for c := 0; c < 6; c++ {
			client := (i + c*3) % len(seedClientNames)
			raw.Messages = append(raw.Messages, domain.RawMessage{
				ID:        fmt.Sprintf("msg-mkt-%03d-%d", i, c),
				Channel:   "email",
				Type:      "marketing",
				Campaign:  campaign,
				SentAt:    date.Add(10 * time.Hour).Format(time.RFC3339),
				Cost:      "0.01",
				Delivered: c != 5,
				Confirmed: c%3 == 0,
				ClientID:  clientID(client),
			})
		}
	}

	raw.Inventory = []domain.RawInventoryItem{
		{ID: "inv-shampoo", Name: "Hypoallergenic Shampoo (gal)", Category: "Shampoo", UnitCost: "1.80", QuantityOnHand: "14", ReorderLevel: "6", LinkedServiceIDs: []string{"svc-bath", "svc-full", "svc-puppy"}},
		{ID: "inv-conditioner", Name: "Detangling Conditioner", Category: "Conditioner", UnitCost: "1.25", QuantityOnHand: "4", ReorderLevel: "5", LinkedServiceIDs: []string{"svc-full"}},
		{ID: "inv-grinder", Name: "Nail Grinder Bands", Category: "Tools", UnitCost: "0.40", QuantityOnHand: "30", ReorderLevel: "10", LinkedServiceIDs: []string{"svc-nails"}},
		{ID: "inv-toothpaste", Name: "Enzymatic Toothpaste", Category: "Dental", UnitCost: "0.65", QuantityOnHand: "2", ReorderLevel: "3", LinkedServiceIDs: []string{"svc-teeth"}},
		{ID: "inv-retail-shampoo", Name: "Oatmeal Shampoo", Category: "Retail", UnitCost: "7.50", QuantityOnHand: "9", ReorderLevel: "4"},
		{ID: "inv-bandana", Name: "Bandana", Category: "Retail", UnitCost: "1.10", QuantityOnHand: "0", ReorderLevel: "8"},
	}
	return raw
}

func seedVisit(raw *domain.RawDataset, n int, date time.Time, slot int, isToday bool) {
	client := (n * 7) % len(seedClientNames)
	staff := seedStaff[n%3]
	primary := seedMainServices[n%len(seedMainServices)]
	services := []domain.RawService{{
		ServiceID: primary.id, ServiceName: primary.name, Price: money(primary.price),
		Duration: domain.RawNumber(fmt.Sprint(primary.minutes)), Type: "main",
	}}
	minutes := primary.minutes
	subtotal := primary.price
	if n%4 == 0 {
		addOn := seedAddOns[(n/4)%len(seedAddOns)]
		services = append(services, domain.RawService{
			ServiceID: addOn.id, ServiceName: addOn.name, Price: money(addOn.price),
			Duration: domain.RawNumber(fmt.Sprint(addOn.minutes)), Type: "addon",
		})
		minutes += addOn.minutes
		subtotal += addOn.price
	}

	status := "completed"
	switch {
	case isToday:
		status = "scheduled"
	case n%11 == 0:
		status = "cancelled"
	case n%13 == 0:
		status = "no-show"
	}
	notes := ""
	switch {
	case n%5 == 0:
		notes = "Booked online"
	case n%7 == 0:
		notes = "Walk-in, no appointment"
	}

	startAt, _ := time.Parse("15:04", seedStartTimes[slot])
	endAt := startAt.Add(time.Duration(minutes) * time.Minute)
	tip := 0.0
	if status == "completed" && n%3 != 0 {
		tip = float64(int(subtotal*0.15*100)) / 100
	}

	apptID := fmt.Sprintf("apt-%04d", n)
	raw.Appointments = append(raw.Appointments, domain.RawAppointment{
		ID:                apptID,
		ClientID:          clientID(client),
		ClientName:        seedClientNames[client],
		PetID:             fmt.Sprintf("pet-%02d", client+1),
		PetName:           seedPets[client%len(seedPets)],
		PetWeightCategory: seedPetSizes[client%len(seedPetSizes)],
		GroomerID:         staff.ID,
		GroomerName:       staff.Name,
		Date:              date.Format("2006-01-02"),
		StartTime:         startAt.Format("15:04"),
		EndTime:           endAt.Format("15:04"),
		Status:            status,
		Notes:             notes,
		Services:          services,
		TotalPrice:        money(subtotal),
		TipAmount:         money(tip),
		CreatedAt:         date.AddDate(0, 0, -7).Format(time.RFC3339),
	})

	if status != "cancelled" && status != "no-show" {
		raw.Messages = append(raw.Messages, domain.RawMessage{
			ID:            "msg-rem-" + apptID,
			Channel:       "sms",
			Type:          "reminder",
			Campaign:      "Appointment Reminder",
			SentAt:        date.AddDate(0, 0, -1).Add(17 * time.Hour).Format(time.RFC3339),
			Cost:          "0.02",
			Delivered:     n%19 != 0,
			Confirmed:     status == "completed",
			ClientID:      clientID(client),
			AppointmentID: apptID,
		})
	}
	if status != "completed" {
		return
	}

	items := make([]domain.RawTransactionItem, 0, len(services)+1)
	for _, svc := range services {
		items = append(items, domain.RawTransactionItem{Type: "service", Name: svc.ServiceName, Quantity: "1", Price: svc.Price, Total: svc.Price, Category: "Grooming"})
	}
	tax := 0.0
	if n%5 == 0 {
		items = append(items, domain.RawTransactionItem{Type: "product", Name: "Oatmeal Shampoo", Quantity: "1", Price: "18.00", Total: "18.00", Category: "Retail"})
		subtotal += 18
		tax = 1.49
	}
	if n%23 == 0 {
		items = append(items, domain.RawTransactionItem{Type: "gift_card", Name: "Gift Card", Quantity: "1", Price: "50.00", Total: "50.00", Category: "Gift Cards"})
		subtotal += 50
	}
	discount := 0.0
	if n%6 == 0 {
		discount = 5
	}
	txStatus := "paid"
	refund := domain.RawNumber("")
	if n%17 == 0 {
		txStatus = "refunded"
		refund = money(subtotal - discount)
	}
	raw.Transactions = append(raw.Transactions, domain.RawTransaction{
		ID:            fmt.Sprintf("txn-%04d", n),
		AppointmentID: apptID,
		ClientID:      clientID(client),
		ClientName:    seedClientNames[client],
		Date:          date.Format("2006-01-02"),
		Status:        txStatus,
		PaymentMethod: seedPayments[n%len(seedPayments)],
		Subtotal:      money(subtotal),
		Discount:      money(discount),
		RefundAmount:  refund,
		Tax:           money(tax),
		Tip:           money(tip),
		Total:         money(subtotal - discount + tax + tip),
		Items:         items,
	})
}
