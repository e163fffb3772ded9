package domain

import (
	"encoding/json"
	"strings"
)

// RawNumber holds a numeric field exactly as the source system sent it. It
// accepts JSON numbers, numeric strings, null and anything else without
// failing; interpretation is left to the normalizer.
type RawNumber string

func (n *RawNumber) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*n = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = ""
			return nil
		}
		*n = RawNumber(s)
		return nil
	}
	*n = RawNumber(trimmed)
	return nil
}

type RawService struct {
	ServiceID   string    `json:"serviceId"`
	ServiceName string    `json:"serviceName"`
	Price       RawNumber `json:"price"`
	Duration    RawNumber `json:"duration"`
	Type        string    `json:"type"`
}

type RawAppointment struct {
	ID                string       `json:"id"`
	ClientID          string       `json:"clientId"`
	ClientName        string       `json:"clientName"`
	PetID             string       `json:"petId"`
	PetName           string       `json:"petName"`
	PetWeightCategory string       `json:"petWeightCategory"`
	GroomerID         string       `json:"groomerId"`
	GroomerName       string       `json:"groomerName"`
	Date              string       `json:"date"`
	StartTime         string       `json:"startTime"`
	EndTime           string       `json:"endTime"`
	Status            string       `json:"status"`
	Notes             string       `json:"notes"`
	Services          []RawService `json:"services"`
	TotalPrice        RawNumber    `json:"totalPrice"`
	TipAmount         RawNumber    `json:"tipAmount"`
	CreatedAt         string       `json:"createdAt"`
}

type RawTransactionItem struct {
	Type     string    `json:"type"`
	Name     string    `json:"name"`
	Quantity RawNumber `json:"quantity"`
	Price    RawNumber `json:"price"`
	Total    RawNumber `json:"total"`
	Category string    `json:"category"`
}

type RawTransaction struct {
	ID            string               `json:"id"`
	AppointmentID string               `json:"appointmentId"`
	ClientID      string               `json:"clientId"`
	ClientName    string               `json:"clientName"`
	Date          string               `json:"date"`
	Status        string               `json:"status"`
	PaymentMethod string               `json:"paymentMethod"`
	Subtotal      RawNumber            `json:"subtotal"`
	Discount      RawNumber            `json:"discount"`
	RefundAmount  RawNumber            `json:"refundAmount"`
	Tax           RawNumber            `json:"tax"`
	Tip           RawNumber            `json:"tip"`
	Total         RawNumber            `json:"total"`
	Items         []RawTransactionItem `json:"items"`
}

type RawAddress struct {
	City  string `json:"city"`
	State string `json:"state"`
	Zip   string `json:"zip"`
}

type RawClient struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	CreatedAt      string     `json:"createdAt"`
	Address        RawAddress `json:"address"`
	ReferralSource string     `json:"referralSource"`
}

type RawStaff struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	HourlyRate string `json:"hourlyRate"`
	Status     string `json:"status"`
}

type RawInventoryItem struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	UnitCost         RawNumber `json:"unitCost"`
	QuantityOnHand   RawNumber `json:"quantityOnHand"`
	ReorderLevel     RawNumber `json:"reorderLevel"`
	LinkedServiceIDs []string  `json:"linkedServiceIds"`
}

type RawMessage struct {
	ID            string    `json:"id"`
	Channel       string    `json:"channel"`
	Type          string    `json:"type"`
	Campaign      string    `json:"campaign"`
	SentAt        string    `json:"sentAt"`
	Cost          RawNumber `json:"cost"`
	Delivered     bool      `json:"delivered"`
	Confirmed     bool      `json:"confirmed"`
	ClientID      string    `json:"clientId"`
	AppointmentID string    `json:"appointmentId"`
}

// RawDataset is the import envelope: every collection as the source system
// stores it.
type RawDataset struct {
	Appointments []RawAppointment   `json:"appointments"`
	Transactions []RawTransaction   `json:"transactions"`
	Clients      []RawClient        `json:"clients"`
	Staff        []RawStaff         `json:"staff"`
	Inventory    []RawInventoryItem `json:"inventory"`
	Messages     []RawMessage       `json:"messages"`
}
