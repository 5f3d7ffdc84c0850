package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"household-expenses/internal/backendtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// E2ETestSuite drives the built binary against the fake backend,
// configured through the environment only.
type E2ETestSuite struct {
	suite.Suite
	backend *backendtest.Backend
	workDir string
	env     []string
}

// SetupTest runs before each test
func (suite *E2ETestSuite) SetupTest() {
	suite.backend = backendtest.New()
	suite.backend.AddUser(backendtest.User{Name: "testuser", Email: "test@example.com", Password: "testpass123"})

	suite.workDir = suite.T().TempDir()
	suite.env = append(os.Environ(),
		"HAUSHALT_API_URL="+suite.backend.URL,
		"SESSION_DB="+filepath.Join(suite.workDir, "session.db"),
		"DISPLAY_TZ=Europe/Berlin",
		"HAUSHALT_HTTP_TIMEOUT=5s",
	)
}

// TearDownTest runs after each test
func (suite *E2ETestSuite) TearDownTest() {
	suite.backend.Close()
}

// haushalt runs the binary and returns its stdout.
func (suite *E2ETestSuite) haushalt(stdin string, args ...string) (string, error) {
	cmd := exec.Command(binPath, args...)
	cmd.Env = suite.env
	cmd.Dir = suite.workDir // no stray .env from the repo
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		suite.T().Logf("stderr: %s", stderr.String())
	}
	return stdout.String(), err
}

func (suite *E2ETestSuite) TestCompleteUserFlow() {
	// Login, password read from piped stdin
	out, err := suite.haushalt("testpass123\n", "login", "-user", "test@example.com")
	require.NoError(suite.T(), err, "login failed")
	assert.Contains(suite.T(), out, "Logged in as testuser")

	// Session survives the process
	out, err = suite.haushalt("", "whoami")
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "test@example.com")

	// Create a credit expense
	_, err = suite.haushalt("", "add", "-total", "12.50", "-category", "credit",
		"-description", "Lunch Test", "-credit-start", "2024-03-01", "-credit-end", "28.02.2025")
	require.NoError(suite.T(), err, "failed to add expense")

	stored := suite.backend.Expenses()
	require.Len(suite.T(), stored, 1)
	assert.Equal(suite.T(), "Lunch Test", stored[0].Description)
	assert.Equal(suite.T(), 12.5, stored[0].ValueTotal)

	// Listed in the display zone
	out, err = suite.haushalt("", "list")
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "Lunch Test")
	assert.Contains(suite.T(), out, "12.50")
	assert.Contains(suite.T(), out, "01.03.2024")

	// Logout ends the session
	_, err = suite.haushalt("", "logout")
	require.NoError(suite.T(), err)
	_, err = suite.haushalt("", "add", "-total", "1", "-category", "allelse")
	require.Error(suite.T(), err, "add should fail after logout")
	assert.Len(suite.T(), suite.backend.Expenses(), 1)
}

func (suite *E2ETestSuite) TestServerErrorExitsNonZero() {
	_, err := suite.haushalt("", "login", "-user", "test@example.com", "-password", "testpass123")
	require.NoError(suite.T(), err)

	suite.backend.FailNext(500, "")
	_, err = suite.haushalt("", "add", "-total", "1", "-category", "allelse")

	var exitErr *exec.ExitError
	require.ErrorAs(suite.T(), err, &exitErr)
	assert.Equal(suite.T(), 1, exitErr.ExitCode())
}

// TestE2ESuite runs the e2e test suite
func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
