package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"household-expenses/internal/backendtest"
	"household-expenses/internal/models"
	"household-expenses/internal/storage"
	"household-expenses/internal/transport"
	"household-expenses/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// StoreTestSuite provides a test suite for session operations
type StoreTestSuite struct {
	suite.Suite
	backend *backendtest.Backend
	db      *storage.DB
	auth    *users.Service
	user    backendtest.User
}

// SetupTest runs before each test
func (suite *StoreTestSuite) SetupTest() {
	suite.backend = backendtest.New()
	suite.user = suite.backend.AddUser(backendtest.User{Name: "Clara", Email: "clara@example.com", Password: "testpass"})
	suite.auth = users.NewService(transport.NewClient(suite.backend.URL, 0))

	db, err := storage.NewDB(filepath.Join(suite.T().TempDir(), "session.db"))
	require.NoError(suite.T(), err, "failed to create session database")
	suite.db = db
}

// TearDownTest runs after each test
func (suite *StoreTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
	suite.backend.Close()
}

func (suite *StoreTestSuite) TestLoginPersists() {
	store := NewStore(suite.auth, suite.db)
	assert.False(suite.T(), store.IsAuthenticated())

	id, err := store.Login(context.Background(), "clara@example.com", "testpass")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.Identity{ID: suite.user.ID, Name: "Clara", Email: "clara@example.com"}, id)
	assert.True(suite.T(), store.IsAuthenticated())

	// A fresh store restores the identity on Load
	restored := NewStore(suite.auth, suite.db)
	require.NoError(suite.T(), restored.Load())
	current, ok := restored.Current()
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), id, current)
}

func (suite *StoreTestSuite) TestSessionNeverStoresPassword() {
	store := NewStore(suite.auth, suite.db)
	_, err := store.Login(context.Background(), "clara@example.com", "testpass")
	require.NoError(suite.T(), err)

	raw, err := suite.db.Get(StorageKey)
	require.NoError(suite.T(), err)
	assert.NotContains(suite.T(), string(raw), "testpass")
}

func (suite *StoreTestSuite) TestLoginFailureKeepsStateEmpty() {
	store := NewStore(suite.auth, suite.db)
	_, err := store.Login(context.Background(), "clara@example.com", "wrong")
	assert.EqualError(suite.T(), err, "failed to authenticate user: Invalid credentials")
	assert.False(suite.T(), store.IsAuthenticated())

	_, err = suite.db.Get(StorageKey)
	assert.ErrorIs(suite.T(), err, storage.ErrNotFound)
}

func (suite *StoreTestSuite) TestLogout() {
	store := NewStore(suite.auth, suite.db)
	_, err := store.Login(context.Background(), "clara@example.com", "testpass")
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), store.Logout())
	assert.False(suite.T(), store.IsAuthenticated())

	restored := NewStore(suite.auth, suite.db)
	require.NoError(suite.T(), restored.Load())
	assert.False(suite.T(), restored.IsAuthenticated())
}

func (suite *StoreTestSuite) TestLoadWithoutSession() {
	store := NewStore(suite.auth, suite.db)
	require.NoError(suite.T(), store.Load())
	assert.False(suite.T(), store.IsAuthenticated())
}

func (suite *StoreTestSuite) TestLoadDropsCorruptBlob() {
	require.NoError(suite.T(), suite.db.Put(StorageKey, []byte("{not json")))

	store := NewStore(suite.auth, suite.db)
	require.NoError(suite.T(), store.Load())
	assert.False(suite.T(), store.IsAuthenticated())

	_, err := suite.db.Get(StorageKey)
	assert.ErrorIs(suite.T(), err, storage.ErrNotFound)
}

func (suite *StoreTestSuite) TestLoadDropsSessionWithoutUserID() {
	for _, blob := range []string{`null`, `{}`, `{"name":"x"}`, `{"id":-3,"name":"x"}`} {
		suite.Run(blob, func() {
			require.NoError(suite.T(), suite.db.Put(StorageKey, []byte(blob)))

			store := NewStore(suite.auth, suite.db)
			require.NoError(suite.T(), store.Load())
			assert.False(suite.T(), store.IsAuthenticated())
			_, ok := store.Current()
			assert.False(suite.T(), ok)

			_, err := suite.db.Get(StorageKey)
			assert.ErrorIs(suite.T(), err, storage.ErrNotFound)
		})
	}
}

func (suite *StoreTestSuite) TestSavedAt() {
	store := NewStore(suite.auth, suite.db)
	_, err := store.SavedAt()
	assert.ErrorIs(suite.T(), err, storage.ErrNotFound)

	before := time.Now().Add(-time.Minute)
	_, err = store.Login(context.Background(), "clara@example.com", "testpass")
	require.NoError(suite.T(), err)

	restored := NewStore(suite.auth, suite.db)
	require.NoError(suite.T(), restored.Load())
	saved, err := restored.SavedAt()
	require.NoError(suite.T(), err)
	assert.True(suite.T(), saved.After(before), "saved time should be recent")
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

type fakeAuth struct {
	id models.Identity
}

func (f fakeAuth) Authenticate(context.Context, string, string) (models.Identity, error) {
	return f.id, nil
}

func TestLoginRejectsIdentityWithoutID(t *testing.T) {
	db, err := storage.NewDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(fakeAuth{id: models.Identity{Name: "ghost"}}, db)
	_, err = store.Login(context.Background(), "ghost", "pw")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
	assert.False(t, store.IsAuthenticated())
}
