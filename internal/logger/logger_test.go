package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoyayamashita/license-gate/internal/ecosystem"
	"github.com/tomoyayamashita/license-gate/internal/policy"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, LevelWarn)

	log.Debug("debug_event", "hidden", nil)
	log.Info("info_event", "hidden", nil)
	log.Warn("warn_event", "shown", map[string]interface{}{"package": "a"})
	log.Error("error_event", "shown", nil)

	events := lines(t, &buf)
	require.Len(t, events, 2)
	assert.Equal(t, "warn_event", events[0]["event"])
	assert.Equal(t, "warn", events[0]["level"])
	assert.Equal(t, "a", events[0]["data"].(map[string]interface{})["package"])
	assert.Equal(t, "error_event", events[1]["event"])
}

func TestLogger_LogPackageCheck(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, LevelInfo)

	pkg := ecosystem.PackageRecord{
		PackageIdentity: ecosystem.PackageIdentity{Ecosystem: ecosystem.EcosystemNPM, Name: "gpl-lib", Version: "2.0.0"},
		License:         "GPL-3.0-only",
		Group:           ecosystem.GroupDependencies,
	}

	// Allowed packages are debug-level and filtered out here.
	log.LogPackageCheck(pkg, policy.Result{Decision: policy.DecisionAllow}, policy.ModeStrict, false, "run-1")
	log.LogPackageCheck(pkg, policy.Result{Decision: policy.DecisionBlock, Reason: "not allowed"}, policy.ModeStrict, true, "run-1")

	events := lines(t, &buf)
	require.Len(t, events, 1)
	assert.Equal(t, "package_check", events[0]["event"])
	assert.Equal(t, "warn", events[0]["level"])
	assert.Equal(t, "gpl-lib", events[0]["name"])
	assert.Equal(t, "GPL-3.0-only", events[0]["license"])
	assert.Equal(t, "block", events[0]["decision"])
	assert.Equal(t, "dependencies", events[0]["group"])
	assert.Equal(t, true, events[0]["ci"])
	assert.Equal(t, "run-1", events[0]["run_id"])
}

func TestLogger_LogDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, LevelDebug)

	log.LogDiagnostics([]ecosystem.Diagnostic{
		{Kind: ecosystem.DiagnosticUnknownLicense, Package: "c", Message: "license of c is unknown, skipping"},
		{Kind: ecosystem.DiagnosticVersionDrift, Package: "d", Message: "installed version 2.0.0 does not satisfy declared range \"^1.0.0\""},
		{Package: "e", Message: "no kind"},
	}, "run-2")

	events := lines(t, &buf)
	require.Len(t, events, 3)
	assert.Equal(t, "license_unknown", events[0]["event"])
	assert.Equal(t, "license of c is unknown, skipping", events[0]["message"])
	assert.Equal(t, "version_drift", events[1]["event"])
	assert.Equal(t, "diagnostic", events[2]["event"])
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
