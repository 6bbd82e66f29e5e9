package leads

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Lead status and deal status values the analytics pipeline branches on.
// Every other value passes through as an opaque category.
const (
	StatusSold = "Sold"
	StatusLost = "Lost"

	DealStatusOpen = "Open"
)

// Lead is a single prospective customer record tracked through the sales funnel.
// Optional numerics are nil when the source row did not carry them.
type Lead struct {
	ID    string `firestore:"id,omitempty"`
	Name  string `firestore:"name,omitempty"`
	Email string `firestore:"email,omitempty"`
	Phone string `firestore:"phone,omitempty"`

	LeadStatus  string   `firestore:"leadStatus,omitempty"`
	LeadSource  string   `firestore:"leadSource,omitempty"`
	LeadChannel string   `firestore:"leadChannel,omitempty"`
	LeadScoring *float64 `firestore:"leadScoring,omitempty"` // [0,5]

	DealStage         string    `firestore:"dealStage,omitempty"`
	DealStatus        string    `firestore:"dealStatus,omitempty"`
	DealValue         *float64  `firestore:"dealValue,omitempty"`
	CloseProbability  *float64  `firestore:"closeProbability,omitempty"` // percent [0,100]
	ExpectedCloseDate time.Time `firestore:"expectedCloseDate,omitempty"`

	VehicleMake  string `firestore:"vehicleMake,omitempty"`
	VehicleModel string `firestore:"vehicleModel,omitempty"`
	NewUsed      string `firestore:"newUsed,omitempty"`

	City          string    `firestore:"city,omitempty"`
	DateOfInquiry time.Time `firestore:"dateOfInquiry,omitempty"`

	AssignedSalesperson string   `firestore:"assignedSalesperson,omitempty"`
	ResponseTime        *float64 `firestore:"responseTime,omitempty"` // minutes
	LostReason          string   `firestore:"lostReason,omitempty"`
	PaymentType         string   `firestore:"paymentType,omitempty"`
	CustomerType        string   `firestore:"customerType,omitempty"`
}

// IsSold reports whether the lead closed as a sale.
func (l Lead) IsSold() bool { return l.LeadStatus == StatusSold }

// IsLost reports whether the lead was lost.
func (l Lead) IsLost() bool { return l.LeadStatus == StatusLost }

// HasOpenDeal reports whether the lead's deal is still active.
func (l Lead) HasOpenDeal() bool { return l.DealStatus == DealStatusOpen }

// Revenue returns the deal value when it is present and non-zero.
func (l Lead) Revenue() (float64, bool) {
	if l.DealValue == nil || *l.DealValue == 0 {
		return 0, false
	}
	return *l.DealValue, true
}

// Record is the wire shape of a lead as it travels through JSON: hosted backend rows,
// JSONL snapshots and API responses. Dates are strings.
type Record struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	LeadStatus  string   `json:"leadStatus"`
	LeadSource  string   `json:"leadSource,omitempty"`
	LeadChannel string   `json:"leadChannel,omitempty"`
	LeadScoring *float64 `json:"leadScoring,omitempty" jsonschema:"continuous lead score between 0 and 5"`

	DealStage         string   `json:"dealStage,omitempty"`
	DealStatus        string   `json:"dealStatus,omitempty"`
	DealValue         *float64 `json:"dealValue,omitempty"`
	CloseProbability  *float64 `json:"closeProbability,omitempty" jsonschema:"close probability in percent between 0 and 100"`
	ExpectedCloseDate string   `json:"expectedCloseDate,omitempty"`

	VehicleMake  string `json:"vehicleMake,omitempty"`
	VehicleModel string `json:"vehicleModel,omitempty"`
	NewUsed      string `json:"newUsed,omitempty"`

	City          string `json:"city,omitempty"`
	DateOfInquiry string `json:"dateOfInquiry,omitempty" jsonschema:"inquiry date, YYYY-MM-DD or RFC3339"`

	AssignedSalesperson string   `json:"assignedSalesperson,omitempty"`
	ResponseTime        *float64 `json:"responseTime,omitempty" jsonschema:"first response time in minutes"`
	LostReason          string   `json:"lostReason,omitempty"`
	PaymentType         string   `json:"paymentType,omitempty"`
	CustomerType        string   `json:"customerType,omitempty"`
}

// dateLayouts are tried in order when parsing wire dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000-0700",
}

// ParseDate parses the date formats hosted backends commonly emit.
// An empty string is the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

// Lead converts the wire record into the domain type.
func (r Record) Lead() (Lead, error) {
	inquiry, err := ParseDate(r.DateOfInquiry)
	if err != nil {
		return Lead{}, fmt.Errorf("dateOfInquiry: %w", err)
	}
	closeDate, err := ParseDate(r.ExpectedCloseDate)
	if err != nil {
		return Lead{}, fmt.Errorf("expectedCloseDate: %w", err)
	}

	return Lead{
		ID:                  r.ID,
		Name:                r.Name,
		Email:               r.Email,
		Phone:               r.Phone,
		LeadStatus:          r.LeadStatus,
		LeadSource:          r.LeadSource,
		LeadChannel:         r.LeadChannel,
		LeadScoring:         r.LeadScoring,
		DealStage:           r.DealStage,
		DealStatus:          r.DealStatus,
		DealValue:           r.DealValue,
		CloseProbability:    r.CloseProbability,
		ExpectedCloseDate:   closeDate,
		VehicleMake:         r.VehicleMake,
		VehicleModel:        r.VehicleModel,
		NewUsed:             r.NewUsed,
		City:                r.City,
		DateOfInquiry:       inquiry,
		AssignedSalesperson: r.AssignedSalesperson,
		ResponseTime:        r.ResponseTime,
		LostReason:          r.LostReason,
		PaymentType:         r.PaymentType,
		CustomerType:        r.CustomerType,
	}, nil
}

// Record converts the lead into its wire shape.
func (l Lead) Record() Record {
	return Record{
		ID:                  l.ID,
		Name:                l.Name,
		Email:               l.Email,
		Phone:               l.Phone,
		LeadStatus:          l.LeadStatus,
		LeadSource:          l.LeadSource,
		LeadChannel:         l.LeadChannel,
		LeadScoring:         l.LeadScoring,
		DealStage:           l.DealStage,
		DealStatus:          l.DealStatus,
		DealValue:           l.DealValue,
		CloseProbability:    l.CloseProbability,
		ExpectedCloseDate:   formatDate(l.ExpectedCloseDate),
		VehicleMake:         l.VehicleMake,
		VehicleModel:        l.VehicleModel,
		NewUsed:             l.NewUsed,
		City:                l.City,
		DateOfInquiry:       formatDate(l.DateOfInquiry),
		AssignedSalesperson: l.AssignedSalesperson,
		ResponseTime:        l.ResponseTime,
		LostReason:          l.LostReason,
		PaymentType:         l.PaymentType,
		CustomerType:        l.CustomerType,
	}
}

// MarshalJSON encodes the lead through its wire record.
func (l Lead) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Record())
}

// UnmarshalJSON decodes a wire record and converts it.
func (l *Lead) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	lead, err := r.Lead()
	if err != nil {
		return err
	}
	*l = lead
	return nil
}

// Float returns a pointer to v. Convenient for building leads in code and tests.
func Float(v float64) *float64 { return &v }
