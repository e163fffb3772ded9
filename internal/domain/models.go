package domain

import "time"

type ServiceLine struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	Kind            string `json:"kind"`
	PriceCents      int64  `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes"`
}

type Appointment struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"client_id"`
	ClientName  string        `json:"client_name"`
	PetID       string        `json:"pet_id"`
	PetName     string        `json:"pet_name"`
	PetSize     string        `json:"pet_size"`
	StaffID     string        `json:"staff_id"`
	StaffName   string        `json:"staff_name"`
	ServiceDate string        `json:"service_date"`
	StartTime   string        `json:"start_time"`
	EndTime     string        `json:"end_time"`
	Status      string        `json:"status"`
	Channel     string        `json:"channel"`
	ClientType  string        `json:"client_type"`
	Services    []ServiceLine `json:"services"`
	TotalCents  int64         `json:"total_cents"`
	TipCents    int64         `json:"tip_cents"`
	CreatedAt   string        `json:"created_at"`
}

// DurationMinutes is the scheduled length of the visit: end minus start when
// both times parse, otherwise the sum of the service line durations.
func (a Appointment) DurationMinutes() int {
	start, errStart := time.Parse("15:04", a.StartTime)
	end, errEnd := time.Parse("15:04", a.EndTime)
	if errStart == nil && errEnd == nil && end.After(start) {
		return int(end.Sub(start).Minutes())
	}
	total := 0
	for _, line := range a.Services {
		total += line.DurationMinutes
	}
	return total
}

type TransactionItem struct {
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Quantity   int    `json:"quantity"`
	TotalCents int64  `json:"total_cents"`
}

type Transaction struct {
	ID            string            `json:"id"`
	AppointmentID string            `json:"appointment_id,omitempty"`
	ClientID      string            `json:"client_id"`
	ClientName    string            `json:"client_name"`
	Date          string            `json:"date"`
	Status        string            `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	SubtotalCents int64             `json:"subtotal_cents"`
	DiscountCents int64             `json:"discount_cents"`
	RefundCents   int64             `json:"refund_cents"`
	TaxCents      int64             `json:"tax_cents"`
	TipCents      int64             `json:"tip_cents"`
	TotalCents    int64             `json:"total_cents"`
	GiftCardCents int64             `json:"gift_card_cents"`
	Items         []TransactionItem `json:"items"`
}

type Client struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	CreatedAt      string `json:"created_at"`
	City           string `json:"city"`
	State          string `json:"state"`
	Zip            string `json:"zip"`
	Type           string `json:"type"`
	ReferralSource string `json:"referral_source"`
}

type Staff struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	HourlyRateCents int64  `json:"hourly_rate_cents"`
	HasHourlyRate   bool   `json:"has_hourly_rate"`
	Status          string `json:"status"`
}

type InventoryItem struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	UnitCostCents    int64    `json:"unit_cost_cents"`
	QuantityOnHand   int      `json:"quantity_on_hand"`
	ReorderLevel     int      `json:"reorder_level"`
	LinkedServiceIDs []string `json:"linked_service_ids"`
}

type Message struct {
	ID            string `json:"id"`
	Channel       string `json:"channel"`
	Type          string `json:"type"`
	Campaign      string `json:"campaign"`
	SentAt        string `json:"sent_at"`
	SentDate      string `json:"sent_date"`
	CostCents     int64  `json:"cost_cents"`
	Delivered     bool   `json:"delivered"`
	Confirmed     bool   `json:"confirmed"`
	ClientID      string `json:"client_id,omitempty"`
	AppointmentID string `json:"appointment_id,omitempty"`
}

// Dataset is one normalized snapshot. It is derived from a RawDataset on every
// computation pass and never mutated afterwards.
type Dataset struct {
	Appointments []Appointment   `json:"appointments"`
	Transactions []Transaction   `json:"transactions"`
	Clients      []Client        `json:"clients"`
	Staff        []Staff         `json:"staff"`
	Inventory    []InventoryItem `json:"inventory"`
	Messages     []Message       `json:"messages"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

// ManagerUser is the public view of a manager account.
type ManagerUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type ManagerCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// DatasetImport records one replacement of a business's raw dataset.
type DatasetImport struct {
	ID         string        `json:"id"`
	BusinessID string        `json:"business_id"`
	Version    string        `json:"version"`
	ImportedBy string        `json:"imported_by"`
	Counts     DatasetCounts `json:"counts"`
	CreatedAt  time.Time     `json:"created_at"`
}

type ImportResponse struct {
	BusinessID string        `json:"business_id"`
	Version    string        `json:"version"`
	ImportID   string        `json:"import_id"`
	Counts     DatasetCounts `json:"counts"`
}

type DatasetCounts struct {
	Appointments int `json:"appointments"`
	Transactions int `json:"transactions"`
	Clients      int `json:"clients"`
	Staff        int `json:"staff"`
	Inventory    int `json:"inventory"`
	Messages     int `json:"messages"`
}

const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusScheduled = "scheduled"
	StatusNoShow    = "no-show"
)

const (
	TxStatusCompleted = "completed"
	TxStatusRefunded  = "refunded"
	TxStatusPending   = "pending"
)

const (
	ClientTypeNew       = "new"
	ClientTypeReturning = "returning"
)

const (
	ServiceKindMain  = "main"
	ServiceKindAddon = "addon"
)

const (
	ItemKindService  = "service"
	ItemKindProduct  = "product"
	ItemKindGiftCard = "giftcard"
)

const (
	RoleOwner   = "owner"
	RoleManager = "manager"
)

const (
	UnknownLabel  = "Unknown"
	AddOnCategory = "Add-ons"
)
