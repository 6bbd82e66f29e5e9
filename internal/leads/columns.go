package leads

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ColumnKey identifies a Lead attribute for display, export and grouping.
type ColumnKey string

const (
	ColID                  ColumnKey = "id"
	ColName                ColumnKey = "name"
	ColEmail               ColumnKey = "email"
	ColPhone               ColumnKey = "phone"
	ColLeadStatus          ColumnKey = "leadStatus"
	ColLeadSource          ColumnKey = "leadSource"
	ColLeadChannel         ColumnKey = "leadChannel"
	ColLeadScoring         ColumnKey = "leadScoring"
	ColDealStage           ColumnKey = "dealStage"
	ColDealStatus          ColumnKey = "dealStatus"
	ColDealValue           ColumnKey = "dealValue"
	ColCloseProbability    ColumnKey = "closeProbability"
	ColExpectedCloseDate   ColumnKey = "expectedCloseDate"
	ColVehicleMake         ColumnKey = "vehicleMake"
	ColVehicleModel        ColumnKey = "vehicleModel"
	ColNewUsed             ColumnKey = "newUsed"
	ColCity                ColumnKey = "city"
	ColDateOfInquiry       ColumnKey = "dateOfInquiry"
	ColAssignedSalesperson ColumnKey = "assignedSalesperson"
	ColResponseTime        ColumnKey = "responseTime"
	ColLostReason          ColumnKey = "lostReason"
	ColPaymentType         ColumnKey = "paymentType"
	ColCustomerType        ColumnKey = "customerType"
)

// ErrUnknownColumn is returned when a column key does not name a Lead attribute.
var ErrUnknownColumn = errors.New("unknown column")

// Column pairs a key with its accessor and default header.
type Column struct {
	Key    ColumnKey
	Header string
	Get    func(Lead) string
}

// columns is the canonical column order.
var columns = []Column{
	{ColID, "ID", func(l Lead) string { return l.ID }},
	{ColName, "Name", func(l Lead) string { return l.Name }},
	{ColEmail, "Email", func(l Lead) string { return l.Email }},
	{ColPhone, "Phone", func(l Lead) string { return l.Phone }},
	{ColLeadStatus, "Lead Status", func(l Lead) string { return l.LeadStatus }},
	{ColLeadSource, "Lead Source", func(l Lead) string { return l.LeadSource }},
	{ColLeadChannel, "Lead Channel", func(l Lead) string { return l.LeadChannel }},
	{ColLeadScoring, "Lead Scoring", func(l Lead) string { return formatFloat(l.LeadScoring) }},
	{ColDealStage, "Deal Stage", func(l Lead) string { return l.DealStage }},
	{ColDealStatus, "Deal Status", func(l Lead) string { return l.DealStatus }},
	{ColDealValue, "Deal Value", func(l Lead) string { return formatFloat(l.DealValue) }},
	{ColCloseProbability, "Close Probability", func(l Lead) string { return formatFloat(l.CloseProbability) }},
	{ColExpectedCloseDate, "Expected Close Date", func(l Lead) string { return formatDate(l.ExpectedCloseDate) }},
	{ColVehicleMake, "Vehicle Make", func(l Lead) string { return l.VehicleMake }},
	{ColVehicleModel, "Vehicle Model", func(l Lead) string { return l.VehicleModel }},
	{ColNewUsed, "New/Used", func(l Lead) string { return l.NewUsed }},
	{ColCity, "City", func(l Lead) string { return l.City }},
	{ColDateOfInquiry, "Date of Inquiry", func(l Lead) string { return formatDate(l.DateOfInquiry) }},
	{ColAssignedSalesperson, "Assigned Salesperson", func(l Lead) string { return l.AssignedSalesperson }},
	{ColResponseTime, "Response Time", func(l Lead) string { return formatFloat(l.ResponseTime) }},
	{ColLostReason, "Lost Reason", func(l Lead) string { return l.LostReason }},
	{ColPaymentType, "Payment Type", func(l Lead) string { return l.PaymentType }},
	{ColCustomerType, "Customer Type", func(l Lead) string { return l.CustomerType }},
}

var columnIndex = func() map[ColumnKey]int {
	idx := make(map[ColumnKey]int, len(columns))
	for i, c := range columns {
		idx[c.Key] = i
	}
	return idx
}()

// Columns returns every column in canonical order.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// Lookup returns the column definition for key.
func Lookup(key ColumnKey) (Column, bool) {
	i, ok := columnIndex[key]
	if !ok {
		return Column{}, false
	}
	return columns[i], true
}

// ParseColumnKey validates a user-supplied key. Matching is exact first and
// case-insensitive second, so "leadstatus" resolves to leadStatus.
func ParseColumnKey(s string) (ColumnKey, error) {
	s = strings.TrimSpace(s)
	if _, ok := columnIndex[ColumnKey(s)]; ok {
		return ColumnKey(s), nil
	}
	for _, c := range columns {
		if strings.EqualFold(string(c.Key), s) {
			return c.Key, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColumn, s)
}

// Accessor returns the string accessor for key.
func Accessor(key ColumnKey) (func(Lead) string, error) {
	c, ok := Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, key)
	}
	return c.Get, nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
