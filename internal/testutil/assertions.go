package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertResultLogged checks that a snapshot carrying name=value was logged.
func AssertResultLogged(t *testing.T, result *HarnessResult, name string, value any) {
	t.Helper()

	want := fmt.Sprintf("%s=%v", name, value)
	for _, line := range strings.Split(result.LogOutput, "\n") {
		if strings.Contains(line, `msg="Results written."`) && strings.Contains(line, " "+want) {
			return
		}
	}
	require.Failf(t, "result not logged", "expected a snapshot with %s in the logs", want)
}
