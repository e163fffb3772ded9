package reports

import (
	"sort"
	"time"

	"github.com/JimmysRanch/126-sub001/internal/domain"
	"github.com/JimmysRanch/126-sub001/internal/filters"
)

const (
	DimStaff          = "staff"
	DimService        = "service"
	DimCategory       = "category"
	DimChannel        = "channel"
	DimPetSize        = "petSize"
	DimClientType     = "clientType"
	DimStatus         = "status"
	DimPaymentMethod  = "paymentMethod"
	DimDay            = "day"
	DimWeekday        = "weekday"
	DimCampaign       = "campaign"
	DimMessageChannel = "messageChannel"
)

type member struct {
	key   string
	label string
}

// dimension maps records to the group(s) they belong to. A nil mapper means
// the record kind is not grouped by this dimension.
type dimension struct {
	id       string
	label    string
	drillKey string
	ordered  bool
	appt     func(domain.Appointment) []member
	tx       func(*buildContext, domain.Transaction) []member
	msg      func(domain.Message) []member
}

var weekdays = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var dimensions = map[string]dimension{
	DimStaff: {id: DimStaff, label: "Staff", drillKey: "staffId",
		appt: func(a domain.Appointment) []member { return []member{{a.StaffID, a.StaffName}} },
		tx:   linkedAppointment(func(a domain.Appointment) []member { return []member{{a.StaffID, a.StaffName}} }, nil)},
	DimService: {id: DimService, label: "Service", drillKey: "serviceName",
		appt: serviceMembers,
		tx:   linkedAppointment(serviceMembers, itemNames)},
	DimCategory: {id: DimCategory, label: "Category", drillKey: "category",
		appt: categoryMembers,
		tx:   linkedAppointment(categoryMembers, itemCategories)},
	DimChannel: {id: DimChannel, label: "Booking Channel", drillKey: "channel",
		appt: func(a domain.Appointment) []member { return []member{{a.Channel, a.Channel}} },
		tx:   linkedAppointment(func(a domain.Appointment) []member { return []member{{a.Channel, a.Channel}} }, nil)},
	DimPetSize: {id: DimPetSize, label: "Pet Size", drillKey: "petSize",
		appt: func(a domain.Appointment) []member { return []member{{a.PetSize, a.PetSize}} },
		tx:   linkedAppointment(func(a domain.Appointment) []member { return []member{{a.PetSize, a.PetSize}} }, nil)},
	DimClientType: {id: DimClientType, label: "Client Type", drillKey: "clientType",
		appt: func(a domain.Appointment) []member { return []member{{a.ClientType, a.ClientType}} },
		tx:   linkedAppointment(func(a domain.Appointment) []member { return []member{{a.ClientType, a.ClientType}} }, nil)},
	DimStatus: {id: DimStatus, label: "Status", drillKey: "status",
		appt: func(a domain.Appointment) []member { return []member{{a.Status, a.Status}} },
		tx:   func(_ *buildContext, t domain.Transaction) []member { return []member{{t.Status, t.Status}} }},
	DimPaymentMethod: {id: DimPaymentMethod, label: "Payment Method", drillKey: "paymentMethod",
		tx: func(_ *buildContext, t domain.Transaction) []member { return []member{{t.PaymentMethod, t.PaymentMethod}} }},
	DimDay: {id: DimDay, label: "Date", ordered: true,
		appt: func(a domain.Appointment) []member { return []member{{a.ServiceDate, a.ServiceDate}} },
		tx: func(c *buildContext, t domain.Transaction) []member {
			date := c.txDate(t)
			return []member{{date, date}}
		},
		msg: func(msg domain.Message) []member { return []member{{msg.SentDate, msg.SentDate}} }},
	DimWeekday: {id: DimWeekday, label: "Weekday", drillKey: "weekday", ordered: true,
		appt: func(a domain.Appointment) []member { return weekdayMember(a.ServiceDate) },
		tx: func(c *buildContext, t domain.Transaction) []member {
			return weekdayMember(c.txDate(t))
		},
		msg: func(msg domain.Message) []member { return weekdayMember(msg.SentDate) }},
	DimCampaign: {id: DimCampaign, label: "Campaign", drillKey: "campaign",
		msg: func(msg domain.Message) []member { return []member{{msg.Campaign, msg.Campaign}} }},
	DimMessageChannel: {id: DimMessageChannel, label: "Message Channel", drillKey: "messageChannel",
		msg: func(msg domain.Message) []member { return []member{{msg.Channel, msg.Channel}} }},
}

// linkedAppointment groups a transaction through its appointment, falling
// back to its own line items when it has none.
func linkedAppointment(fromAppt func(domain.Appointment) []member, fromItems func([]domain.TransactionItem) []member) func(*buildContext, domain.Transaction) []member {
	return func(c *buildContext, t domain.Transaction) []member {
		if appt, ok := c.apptByID[t.AppointmentID]; ok && t.AppointmentID != "" {
			return fromAppt(appt)
		}
		if fromItems != nil {
			if members := fromItems(t.Items); len(members) > 0 {
				return members
			}
		}
		return []member{{"", domain.UnknownLabel}}
	}
}

func serviceMembers(a domain.Appointment) []member {
	out := make([]member, 0, len(a.Services))
	for _, line := range a.Services {
		out = append(out, member{line.Name, line.Name})
	}
	return out
}

func categoryMembers(a domain.Appointment) []member {
	out := make([]member, 0, len(a.Services))
	for _, line := range a.Services {
		out = append(out, member{line.Category, line.Category})
	}
	return out
}

func itemNames(items []domain.TransactionItem) []member {
	out := make([]member, 0, len(items))
	for _, item := range items {
		if item.Kind == domain.ItemKindService {
			out = append(out, member{item.Name, item.Name})
		}
	}
	return out
}

func itemCategories(items []domain.TransactionItem) []member {
	out := make([]member, 0, len(items))
	for _, item := range items {
		out = append(out, member{item.Category, item.Category})
	}
	return out
}

func weekdayMember(date string) []member {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil
	}
	wd := int(day.Weekday())
	return []member{{string(rune('0' + wd)), weekdays[wd]}}
}

type group struct {
	key   string
	label string
	slice
}

// groupBy splits w along dim. Records that map to several members (a visit
// with two services) are counted in each.
func (c *buildContext) groupBy(w *window, dim dimension) []*group {
	index := make(map[string]*group)
	add := func(members []member) []*group {
		seen := make(map[string]bool, len(members))
		out := make([]*group, 0, len(members))
		for _, mem := range members {
			if seen[mem.key] {
				continue
			}
			seen[mem.key] = true
			g, ok := index[mem.key]
			if !ok {
				label := mem.label
				if label == "" {
					label = domain.UnknownLabel
				}
				g = &group{key: mem.key, label: label}
				index[mem.key] = g
			}
			out = append(out, g)
		}
		return out
	}

	if dim.appt != nil {
		for _, appt := range w.appts {
			for _, g := range add(dim.appt(appt)) {
				g.appts = append(g.appts, appt)
			}
		}
	}
	if dim.tx != nil {
		for _, tx := range w.txs {
			for _, g := range add(dim.tx(c, tx)) {
				g.txs = append(g.txs, tx)
			}
		}
	}
	if dim.msg != nil {
		for _, msg := range w.msgs {
			for _, g := range add(dim.msg(msg)) {
				g.msgs = append(g.msgs, msg)
			}
		}
	}

	groups := make([]*group, 0, len(index))
	for _, g := range index {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if dim.ordered || groups[i].label == groups[j].label {
			return groups[i].key < groups[j].key
		}
		return groups[i].label < groups[j].label
	})
	return groups
}

// groupValues aggregates one group. Staff groups get a headcount of one and
// day groups a single day of capacity.
func (c *buildContext) groupValues(w *window, dim dimension, g *group) map[string]float64 {
	days := w.rng.Days()
	headcount := c.headcount
	switch dim.id {
	case DimStaff:
		headcount = 0
		if member, ok := c.staffByID[g.key]; ok && activeStaff(member) {
			headcount = 1
		}
	case DimDay:
		days = 1
	case DimWeekday:
		days = weekdayCount(w.rng, g.key)
	}
	return c.aggregate(g.slice, days, headcount)
}

func weekdayCount(rng filters.Range, key string) int {
	start, errStart := time.Parse("2006-01-02", rng.Start)
	end, errEnd := time.Parse("2006-01-02", rng.End)
	if errStart != nil || errEnd != nil {
		return 0
	}
	count := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if string(rune('0'+int(day.Weekday()))) == key {
			count++
		}
	}
	return count
}

// dayKeys lists every calendar day of rng in order.
func dayKeys(rng filters.Range) []string {
	start, errStart := time.Parse("2006-01-02", rng.Start)
	end, errEnd := time.Parse("2006-01-02", rng.End)
	if errStart != nil || errEnd != nil {
		return nil
	}
	out := make([]string, 0, rng.Days())
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		out = append(out, day.Format("2006-01-02"))
	}
	return out
}

// drillFilter narrows the window to one group.
func (c *buildContext) drillFilter(w *window, dim dimension, g *group) map[string]string {
	if dim.id == DimDay {
		return c.drillWindow(w, map[string]string{"startDate": g.key, "endDate": g.key})
	}
	filter := map[string]string{}
	if dim.drillKey != "" {
		key := g.key
		if key == "" {
			key = domain.UnknownLabel
		}
		filter[dim.drillKey] = key
	}
	return c.drillWindow(w, filter)
}
