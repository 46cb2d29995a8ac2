package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Out
	Out = &buf
	t.Cleanup(func() { Out = prev })
	return &buf
}

func TestMessages(t *testing.T) {
	buf := capture(t)

	Success("applied %s", "0001")
	Error("failed: %v", "boom")

	out := buf.String()
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "applied 0001\n")
	assert.Contains(t, out, "failed: boom\n")
}

func TestSection(t *testing.T) {
	buf := capture(t)

	Section("Drift")
	assert.Contains(t, buf.String(), "Drift")
	assert.Contains(t, buf.String(), strings.Repeat("═", 5))
}

func TestSQL(t *testing.T) {
	buf := capture(t)

	SQL([]string{"DROP TABLE a;", "DROP TABLE b;"})
	out := buf.String()
	assert.Contains(t, out, "DROP TABLE a;")
	assert.Contains(t, out, "DROP TABLE b;")
	assert.Less(t, strings.Index(out, "DROP TABLE a;"), strings.Index(out, "DROP TABLE b;"))
}

func TestStatusIcon(t *testing.T) {
	for _, status := range []string{"applied", "pending", "failed", "stale", "other"} {
		assert.NotEmpty(t, StatusIcon(status), status)
	}
}
