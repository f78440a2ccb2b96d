//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	binOnce sync.Once
	binPath string
	binDir  string
)

// TestMain cleans up the shared binary after all tests have run.
func TestMain(m *testing.M) {
	code := m.Run()
	if binDir != "" {
		_ = os.RemoveAll(binDir)
	}
	os.Exit(code)
}

// kpiscopeBinary builds the CLI once per test process and returns its path.
func kpiscopeBinary(t *testing.T) string {
	t.Helper()
	binOnce.Do(func() {
		dir, err := os.MkdirTemp("", "kpiscope-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}
		binDir = dir

		path := filepath.Join(dir, "kpiscope")
		build := exec.Command("go", "build", "-o", path, ".")
		build.Dir = ".." // project root
		if out, err := build.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build kpiscope: %v\n%s", err, out))
		}
		binPath = path
	})
	return binPath
}

// runKpiscopeCommand runs the kpiscope binary with the given args from dir.
func runKpiscopeCommand(t *testing.T, dir string, args ...string) error {
	cmd := exec.Command(kpiscopeBinary(t), args...)
	cmd.Dir = dir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), output)
		return err
	}
	return nil
}

// writeMetricsFixture writes a small but realistic metrics CSV into dir
// and returns its path.
func writeMetricsFixture(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "metrics.csv")
	content := "Date,Revenue,Customers,Conversion_Rate,Marketing_Spend\n"
	for i := 0; i < 14; i++ {
		content += fmt.Sprintf("2025-03-%02d,%d,%d,%.2f,%d\n",
			i+1, 1000+i*50, 50+2*i, 2.5+0.05*float64(i), 200+10*i)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture CSV: %v", err)
	}
	return path
}
