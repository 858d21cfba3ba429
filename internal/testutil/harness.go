package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/dfsim/internal/app"
	"github.com/specialistvlad/dfsim/internal/hcl_adapter"
	"github.com/specialistvlad/dfsim/internal/kernel"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	Stats     kernel.Stats
}

// RunSimulation writes files into a temporary directory, builds the app from
// it and runs the simulation up to until (zero means until idle). Startup
// panics are reported through Err.
func RunSimulation(t *testing.T, files map[string]string, until time.Duration) *HarnessResult {
	t.Helper()
	return RunSimulationWithContext(context.Background(), t, files, until)
}

// RunSimulationWithContext is RunSimulation with a caller supplied context.
func RunSimulationWithContext(ctx context.Context, t *testing.T, files map[string]string, until time.Duration) *HarnessResult {
	t.Helper()

	dir := WriteFiles(t, files)
	appConfig := &app.Config{
		GridPath:  dir,
		LogLevel:  "debug",
		LogFormat: "text",
		Until:     until,
	}
	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, appConfig, hcl_adapter.NewLoader())
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	stats, runErr := testApp.Run(ctx)

	if os.Getenv("DFSIM_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
		Stats:     stats,
	}
}
