package expenses

import (
	"encoding/json"
	"fmt"
	"time"

	"household-expenses/internal/models"
)

// WireTimeLayout is the timestamp format the backend expects for credit dates.
const WireTimeLayout = "2006-01-02T15:04:05.000Z"

// DisplayDateLayout is the day.month.year format used in listings.
const DisplayDateLayout = "02.01.2006"

var inputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	DisplayDateLayout,
}

// ParseError is returned when a date field cannot be read.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid date in %s: %q", e.Field, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range inputLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func wireDate(field string, value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	t, err := parseDate(*value)
	if err != nil {
		return nil, &ParseError{Field: field, Value: *value, Err: err}
	}
	s := t.UTC().Format(WireTimeLayout)
	return &s, nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// ToWireShape maps a record onto the create payload. It does not check
// required fields; an unreadable credit date yields a *ParseError.
func ToWireShape(r models.ExpenseRecord) (models.ExpenseWireRecord, error) {
	creditStart, err := wireDate("creditStart", r.CreditStart)
	if err != nil {
		return models.ExpenseWireRecord{}, err
	}
	creditEnd, err := wireDate("creditEnd", r.CreditEnd)
	if err != nil {
		return models.ExpenseWireRecord{}, err
	}

	w := models.ExpenseWireRecord{
		UserID:      r.OwnerID,
		Type:        r.Category,
		Description: copyString(r.Description),
		DueDay:      copyString(r.DueDay),
		CreditStart: creditStart,
		CreditEnd:   creditEnd,
	}
	if r.TotalValue != nil {
		w.ValueTotal = *r.TotalValue
	}
	return w, nil
}

// FromWireShape maps a create payload back onto a record.
func FromWireShape(w models.ExpenseWireRecord) models.ExpenseRecord {
	total := w.ValueTotal
	return models.ExpenseRecord{
		OwnerID:     w.UserID,
		Description: copyString(w.Description),
		TotalValue:  &total,
		Category:    w.Type,
		DueDay:      copyString(w.DueDay),
		CreditStart: copyString(w.CreditStart),
		CreditEnd:   copyString(w.CreditEnd),
	}
}

// displayDate formats a backend timestamp. Unreadable values are returned
// unchanged; the zero time is the backend's "unset" and becomes "".
func displayDate(raw string, loc *time.Location) string {
	if raw == "" {
		return ""
	}
	t, err := parseDate(raw)
	if err != nil {
		return raw
	}
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(DisplayDateLayout)
}

// ToDisplayShape prepares backend records for listing, keeping their order.
// A nil loc means UTC.
func ToDisplayShape(records []models.StoredExpense, loc *time.Location) []models.DisplayRecord {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]models.DisplayRecord, 0, len(records))
	for _, r := range records {
		out = append(out, models.DisplayRecord{
			ID:          r.ID,
			OwnerID:     r.UserID,
			Description: r.Description,
			TotalValue:  r.ValueTotal,
			ValueRate:   r.ValueRate,
			Category:    r.Type,
			DueDay:      r.DueDay,
			DueDate:     displayDate(r.DueDate, loc),
			CreditStart: displayDate(r.CreditStart, loc),
			CreditEnd:   displayDate(r.CreditEnd, loc),
		})
	}
	return out
}

// UpdatePayload is the body of PUT /haushaltsausgaben/{id}.
// Only set fields are encoded; ClearDescription encodes description as null.
type UpdatePayload struct {
	Description      *string
	ClearDescription bool
	ValueTotal       *float64
	Type             *models.Category
	DueDay           *string
	CreditStart      *string
	CreditEnd        *string
}

// Empty reports whether the payload changes nothing.
func (p UpdatePayload) Empty() bool {
	return p.Description == nil && !p.ClearDescription && p.ValueTotal == nil &&
		p.Type == nil && p.DueDay == nil && p.CreditStart == nil && p.CreditEnd == nil
}

func (p UpdatePayload) MarshalJSON() ([]byte, error) {
	m := make(map[string]any)
	switch {
	case p.ClearDescription:
		m["description"] = nil
	case p.Description != nil:
		m["description"] = *p.Description
	}
	if p.ValueTotal != nil {
		m["valuetotal"] = *p.ValueTotal
	}
	if p.Type != nil {
		m["type"] = *p.Type
	}
	if p.DueDay != nil {
		m["faelligkeitstag"] = *p.DueDay
	}
	if p.CreditStart != nil {
		m["creditstart"] = *p.CreditStart
	}
	if p.CreditEnd != nil {
		m["creditend"] = *p.CreditEnd
	}
	return json.Marshal(m)
}

// ToUpdatePayload keeps only the fields set in patch.
func ToUpdatePayload(patch models.ExpensePatch) (UpdatePayload, error) {
	creditStart, err := wireDate("creditStart", patch.CreditStart)
	if err != nil {
		return UpdatePayload{}, err
	}
	creditEnd, err := wireDate("creditEnd", patch.CreditEnd)
	if err != nil {
		return UpdatePayload{}, err
	}

	p := UpdatePayload{
		DueDay:      copyString(patch.DueDay),
		CreditStart: creditStart,
		CreditEnd:   creditEnd,
	}
	if patch.Description != nil {
		if *patch.Description == "" {
			p.ClearDescription = true
		} else {
			p.Description = copyString(patch.Description)
		}
	}
	if patch.TotalValue != nil {
		v := *patch.TotalValue
		p.ValueTotal = &v
	}
	if patch.Category != nil {
		c := *patch.Category
		p.Type = &c
	}
	return p, nil
}
