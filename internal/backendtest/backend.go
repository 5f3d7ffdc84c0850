// Package backendtest provides an in-memory stand-in for the household
// expense backend, for use in tests.
package backendtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// Expense mirrors the backend model. It carries no JSON tags, so it is
// encoded with Go field names just like the real server does.
type Expense struct {
	ID              int
	Description     string
	ValueTotal      float64
	ValueRate       float64
	CreditStart     time.Time
	CreditEnd       time.Time
	Type            string
	UserID          int
	CreatedAt       time.Time
	ChangedAt       time.Time
	Faelligkeitstag string
	Zahldatum       time.Time
}

// User mirrors the backend user model.
type User struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	Income         float32 `json:"income"`
	Accountbalance float32 `json:"accountbalance"`
}

// Request is a request the backend has received.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

type failure struct {
	status int
	body   string
}

// Backend is a fake of the /users and /haushaltsausgaben API.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	expenses []Expense
	users    []User
	nextID   int
	requests []Request
	fail     *failure
	now      func() time.Time
}

// New starts a Backend. Call Close when done.
func New() *Backend {
	b := &Backend{nextID: 1, now: time.Now}
	b.Server = httptest.NewServer(b.router())
	return b
}

func (b *Backend) router() http.Handler {
	r := mux.NewRouter()
	r.Use(b.record)

	users := r.PathPrefix("/users").Subrouter()
	users.HandleFunc("/", b.createUser).Methods(http.MethodPost)
	users.HandleFunc("/", b.listUsers).Methods(http.MethodGet)
	users.HandleFunc("/authenticate", b.authenticate).Methods(http.MethodPost)
	users.HandleFunc("/{id:[0-9]+}", b.updateUser).Methods(http.MethodPut)
	users.HandleFunc("/{id:[0-9]+}", b.deleteUser).Methods(http.MethodDelete)
	users.HandleFunc("/{identifier}", b.getUser).Methods(http.MethodGet)

	exp := r.PathPrefix("/haushaltsausgaben").Subrouter()
	exp.HandleFunc("/", b.createExpense).Methods(http.MethodPost)
	exp.HandleFunc("/", b.listExpenses).Methods(http.MethodGet)
	exp.HandleFunc("/{id:[0-9]+}", b.updateExpense).Methods(http.MethodPut)
	exp.HandleFunc("/{id:[0-9]+}", b.deleteExpense).Methods(http.MethodDelete)
	exp.HandleFunc("/{userid:[0-9]+}/{month}", b.listByUserAndMonth).Methods(http.MethodGet)

	return r
}

// record stores each request and answers with a queued failure if any.
func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		b.mu.Lock()
		b.requests = append(b.requests, Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
		f := b.fail
		b.fail = nil
		b.mu.Unlock()

		if f != nil {
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FailNext makes the next request answer with status and body.
func (b *Backend) FailNext(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail = &failure{status: status, body: body}
}

// Requests returns the requests received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// LastRequest returns the most recent request, or the zero Request.
func (b *Backend) LastRequest() Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return Request{}
	}
	return b.requests[len(b.requests)-1]
}

// AddUser stores u and returns it with its assigned id.
func (b *Backend) AddUser(u User) User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(u)
}

// addUserLocked requires b.mu.
func (b *Backend) addUserLocked(u User) User {
	u.ID = b.nextID
	b.nextID++
	b.users = append(b.users, u)
	return u
}

// AddExpense stores e and returns it with its assigned id.
func (b *Backend) AddExpense(e Expense) Expense {
	b.mu.Lock()
	defer b.mu.Unlock()
	e.ID = b.nextID
	b.nextID++
	if e.CreatedAt.IsZero() {
		e.CreatedAt = b.now()
	}
	e.ChangedAt = e.CreatedAt
	b.expenses = append(b.expenses, e)
	return e
}

// Expenses returns the stored expenses.
func (b *Backend) Expenses() []Expense {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Expense(nil), b.expenses...)
}

// Users returns the stored users.
func (b *Backend) Users() []User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]User(nil), b.users...)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func pathID(r *http.Request, name string) int {
	id, _ := strconv.Atoi(mux.Vars(r)[name])
	return id
}
