package backendtest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

func (b *Backend) createExpense(w http.ResponseWriter, r *http.Request) {
	var input Expense
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if input.ValueTotal <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid valuetotal, must be positive")
		return
	}
	if input.UserID <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid or missing userid")
		return
	}
	if input.Type == "" {
		respondError(w, http.StatusBadRequest, "Missing expense type")
		return
	}
	input.CreatedAt = b.now()
	respondJSON(w, http.StatusCreated, b.AddExpense(input))
}

func (b *Backend) listExpenses(w http.ResponseWriter, r *http.Request) {
	var userID int
	if s := r.URL.Query().Get("user_id"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid user_id")
			return
		}
		userID = id
	}

	out := []Expense{}
	for _, e := range b.Expenses() {
		if userID > 0 && e.UserID != userID {
			continue
		}
		out = append(out, e)
	}
	respondJSON(w, http.StatusOK, out)
}

// listByUserAndMonth applies the backend's month rules: monthly costs always,
// credits running during the month, everything else by creation month and
// invoices by payment month.
func (b *Backend) listByUserAndMonth(w http.ResponseWriter, r *http.Request) {
	userID := pathID(r, "userid")
	month := mux.Vars(r)["month"]

	out := []Expense{}
	for _, e := range b.Expenses() {
		if e.UserID != userID {
			continue
		}
		var match bool
		switch e.Type {
		case "monthlycosts":
			match = true
		case "credit":
			match = e.CreditEnd.Format("2006-01") >= month && e.CreditStart.Format("2006-01") <= month
		case "allelse":
			match = e.CreatedAt.Format("2006-01") == month
		case "invoice":
			match = e.Zahldatum.Format("2006-01") == month
		}
		if match {
			out = append(out, e)
		}
	}
	respondJSON(w, http.StatusOK, out)
}

func (b *Backend) updateExpense(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.expenses {
		e := &b.expenses[i]
		if e.ID != id {
			continue
		}
		// Merge onto the stored record so omitted fields keep their value.
		current, _ := json.Marshal(e)
		var merged map[string]json.RawMessage
		_ = json.Unmarshal(current, &merged)
		for k, v := range fields {
			for mk := range merged {
				if strings.EqualFold(mk, k) {
					merged[mk] = v
				}
			}
		}
		data, _ := json.Marshal(merged)
		var updated Expense
		if err := json.Unmarshal(data, &updated); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		updated.ID = e.ID
		updated.ChangedAt = b.now()
		*e = updated
		respondJSON(w, http.StatusOK, map[string]string{"message": "Expense updated successfully"})
		return
	}
	respondError(w, http.StatusInternalServerError, "Failed to update expense")
}

func (b *Backend) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.expenses {
		if e.ID == id {
			b.expenses = append(b.expenses[:i], b.expenses[i+1:]...)
			break
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}

func (b *Backend) createUser(w http.ResponseWriter, r *http.Request) {
	var input User
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	b.mu.Lock()
	for _, u := range b.users {
		if u.Email == input.Email {
			b.mu.Unlock()
			respondError(w, http.StatusBadRequest, "Email is already taken")
			return
		}
	}
	created := b.addUserLocked(input)
	b.mu.Unlock()

	respondJSON(w, http.StatusCreated, created)
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request) {
	users := b.Users()
	if users == nil {
		users = []User{}
	}
	respondJSON(w, http.StatusOK, users)
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	identifier := mux.Vars(r)["identifier"]
	for _, u := range b.Users() {
		if strconv.Itoa(u.ID) == identifier || u.Email == identifier {
			respondJSON(w, http.StatusOK, u)
			return
		}
	}
	respondError(w, http.StatusNotFound, "User not found")
}

func (b *Backend) updateUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	var input User
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.users {
		if b.users[i].ID == id {
			input.ID = id
			b.users[i] = input
			respondJSON(w, http.StatusOK, map[string]string{"message": "User updated successfully"})
			return
		}
	}
	respondError(w, http.StatusInternalServerError, "Failed to update user")
}

func (b *Backend) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, u := range b.users {
		if u.ID == id {
			b.users = append(b.users[:i], b.users[i+1:]...)
			break
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (b *Backend) authenticate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	for _, u := range b.Users() {
		if u.Email == input.Identifier && u.Password == input.Password {
			respondJSON(w, http.StatusOK, map[string]any{
				"message": "Authentication successful",
				"user_id": u.ID,
				"name":    u.Name,
			})
			return
		}
	}
	respondError(w, http.StatusUnauthorized, "Invalid credentials")
}
