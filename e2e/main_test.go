package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var (
	binPath string
)

func TestMain(m *testing.M) {
	os.Exit(runTestMain(m))
}

func runTestMain(m *testing.M) int {
	// Build the binary. go test ./e2e/... runs from the e2e directory,
	// so the main package is at ../cmd/haushalt
	dir, err := os.MkdirTemp("", "haushalt-e2e")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		return 1
	}
	defer os.RemoveAll(dir)

	binPath = filepath.Join(dir, "haushalt")
	cmd := exec.Command("go", "build", "-o", binPath, "../cmd/haushalt")
	// If running from root, adjust path
	if _, err := os.Stat("../cmd/haushalt"); os.IsNotExist(err) {
		if _, err := os.Stat("cmd/haushalt"); err == nil {
			cmd = exec.Command("go", "build", "-o", binPath, "./cmd/haushalt")
		} else {
			fmt.Println("Could not find cmd/haushalt to build")
			return 1
		}
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		fmt.Printf("Failed to build app: %v\n%s\n", err, output)
		return 1
	}

	return m.Run()
}
