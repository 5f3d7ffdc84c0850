package models

import "encoding/json"

// Category is the kind of a household expense.
type Category string

const (
	CategoryCredit       Category = "credit"
	CategoryMonthlyCosts Category = "monthlycosts"
	CategoryAllElse      Category = "allelse"
)

// Categories lists the categories accepted by the backend.
var Categories = []Category{CategoryCredit, CategoryMonthlyCosts, CategoryAllElse}

// ExpenseRecord is a household expense as entered by the user.
// Optional fields are nil when absent.
type ExpenseRecord struct {
	OwnerID     int      `json:"ownerId" validate:"required"`
	Description *string  `json:"description,omitempty"`
	TotalValue  *float64 `json:"totalValue" validate:"required"`
	Category    Category `json:"category" validate:"required,oneof=credit monthlycosts allelse"`
	DueDay      *string  `json:"dueDay,omitempty"`
	CreditStart *string  `json:"creditStart,omitempty"`
	CreditEnd   *string  `json:"creditEnd,omitempty"`
}

// ExpenseWireRecord is the create payload of POST /haushaltsausgaben/.
// Absent optional fields are omitted, never sent as null.
type ExpenseWireRecord struct {
	UserID      int      `json:"userid"`
	Description *string  `json:"description,omitempty"`
	ValueTotal  float64  `json:"valuetotal"`
	Type        Category `json:"type"`
	DueDay      *string  `json:"faelligkeitstag,omitempty"`
	CreditStart *string  `json:"creditstart,omitempty"`
	CreditEnd   *string  `json:"creditend,omitempty"`
}

// StoredExpense is an expense as returned by the backend. Date-bearing
// fields stay raw so that display formatting can fall back to them.
type StoredExpense struct {
	ID          int      `json:"id"`
	Description string   `json:"description"`
	ValueTotal  float64  `json:"valuetotal"`
	ValueRate   float64  `json:"valuerate"`
	CreditStart string   `json:"creditstart"`
	CreditEnd   string   `json:"creditend"`
	Type        Category `json:"type"`
	UserID      int      `json:"userid"`
	CreatedAt   string   `json:"createdat"`
	ChangedAt   string   `json:"changedat"`
	DueDay      string   `json:"faelligkeitstag"`
	// DueDate is the payment date, sent as either Zahltag or zahldatum.
	DueDate string `json:"zahltag"`
}

// DisplayRecord is a StoredExpense prepared for listing.
type DisplayRecord struct {
	ID          int      `json:"id"`
	OwnerID     int      `json:"ownerId"`
	Description string   `json:"description,omitempty"`
	TotalValue  float64  `json:"totalValue"`
	ValueRate   float64  `json:"valueRate,omitempty"`
	Category    Category `json:"category"`
	DueDay      string   `json:"dueDay,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"`
	CreditStart string   `json:"creditStart,omitempty"`
	CreditEnd   string   `json:"creditEnd,omitempty"`
}

// ExpensePatch is a partial update. Nil fields are left unchanged;
// a Description pointing at "" clears the stored description.
type ExpensePatch struct {
	Description *string
	TotalValue  *float64
	Category    *Category
	DueDay      *string
	CreditStart *string
	CreditEnd   *string
}

// UnmarshalJSON accepts the payment date under either of the spellings
// the backend has used.
func (e *StoredExpense) UnmarshalJSON(data []byte) error {
	type plain StoredExpense
	aux := struct {
		*plain
		Zahldatum string `json:"zahldatum"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.DueDate == "" {
		e.DueDate = aux.Zahldatum
	}
	return nil
}
