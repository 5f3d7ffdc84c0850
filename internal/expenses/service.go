package expenses

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"slices"
	"strconv"
	"time"

	"household-expenses/internal/models"
	"household-expenses/internal/transport"
)

const collectionPath = "/haushaltsausgaben/"

// Transport is the subset of transport.Client the service needs.
type Transport interface {
	PostJSON(ctx context.Context, path string, body, out any) error
	GetJSON(ctx context.Context, path string, out any) error
	PutJSON(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

// Service submits and reads household expenses.
type Service struct {
	transport Transport
	validator *Validator
	location  *time.Location
}

// NewService creates a Service. Listing dates are shown in loc (UTC if nil).
func NewService(t Transport, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{transport: t, validator: NewValidator(), location: loc}
}

// SubmitExpense validates r, maps it to the wire shape and creates it.
// Transport failures come back as a *transport.Error with a single message.
func (s *Service) SubmitExpense(ctx context.Context, r models.ExpenseRecord) (models.StoredExpense, error) {
	if err := s.validator.Record(r); err != nil {
		return models.StoredExpense{}, err
	}

	payload, err := ToWireShape(r)
	if err != nil {
		return models.StoredExpense{}, err
	}

	var created models.StoredExpense
	if err := s.transport.PostJSON(ctx, collectionPath, payload, &created); err != nil {
		log.Printf("SubmitExpense error: %v", err)
		return models.StoredExpense{}, transport.Classify(err).Err()
	}
	return created, nil
}

// ListExpenses returns the expenses of userID, or all of them when userID is 0.
func (s *Service) ListExpenses(ctx context.Context, userID int) ([]models.DisplayRecord, error) {
	if userID < 0 {
		return nil, fieldError("userId", "gte", "userId must be 0 or greater")
	}
	path := collectionPath
	if userID > 0 {
		path += "?" + url.Values{"user_id": {strconv.Itoa(userID)}}.Encode()
	}

	var stored []models.StoredExpense
	if err := s.transport.GetJSON(ctx, path, &stored); err != nil {
		log.Printf("ListExpenses error: %v", err)
		return nil, transport.Classify(err).Err()
	}
	return ToDisplayShape(stored, s.location), nil
}

// ListByUserAndMonth returns the expenses of userID that apply to month (YYYY-MM).
func (s *Service) ListByUserAndMonth(ctx context.Context, userID int, month string) ([]models.DisplayRecord, error) {
	if userID <= 0 {
		return nil, fieldError("userId", "required", "userId is a required field")
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		return nil, fieldError("month", "datetime", "month must be formatted YYYY-MM")
	}

	var stored []models.StoredExpense
	path := fmt.Sprintf("%s%d/%s", collectionPath, userID, month)
	if err := s.transport.GetJSON(ctx, path, &stored); err != nil {
		log.Printf("ListByUserAndMonth error: %v", err)
		return nil, transport.Classify(err).Err()
	}
	return ToDisplayShape(stored, s.location), nil
}

// UpdateExpense sends the fields set in patch.
func (s *Service) UpdateExpense(ctx context.Context, id int, patch models.ExpensePatch) error {
	if id <= 0 {
		return fieldError("id", "required", "id is a required field")
	}
	if patch.Category != nil && !slices.Contains(models.Categories, *patch.Category) {
		return fieldError("category", "oneof", "category must be one of [credit monthlycosts allelse]")
	}

	payload, err := ToUpdatePayload(patch)
	if err != nil {
		return err
	}
	if payload.Empty() {
		return fieldError("patch", "required", "nothing to update")
	}

	if err := s.transport.PutJSON(ctx, fmt.Sprintf("%s%d", collectionPath, id), payload, nil); err != nil {
		log.Printf("UpdateExpense error: %v", err)
		return transport.Classify(err).Err()
	}
	return nil
}

// DeleteExpense removes the expense with the given id.
func (s *Service) DeleteExpense(ctx context.Context, id int) error {
	if id <= 0 {
		return fieldError("id", "required", "id is a required field")
	}
	if err := s.transport.Delete(ctx, fmt.Sprintf("%s%d", collectionPath, id)); err != nil {
		log.Printf("DeleteExpense error: %v", err)
		return transport.Classify(err).Err()
	}
	return nil
}
