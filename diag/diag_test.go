package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFatalWithSourceLineAndCaret(t *testing.T) {
	src := "aa\nbbbb\ncc"
	var buf bytes.Buffer

	New(&buf).Fatalf(src, 2, 3, "boom")

	out := buf.String()
	assert.Equal(t, "Error: boom at line 2, column 3\nbbbb\n  ^\n", out)
}

func TestCaretOnFirstColumn(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Fatalf("oops", 1, 1, "bad start")

	assert.Equal(t, "Error: bad start at line 1, column 1\noops\n^\n", buf.String())
}

func TestNilSourcePrintsMessageOnly(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Fatalf("", 0, 0, "no context")

	assert.Equal(t, "Error: no context\n", buf.String())
}

func TestOutOfRangeLinePrintsMessageOnly(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Fatalf("one line", 7, 1, "gone")

	assert.Equal(t, "Error: gone\n", buf.String())
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	sink := New(&buf)

	sink.Warnf("", 0, 0, "careful")
	sink.Infof("", 0, 0, "fyi")

	out := buf.String()
	assert.Contains(t, out, "Warning: careful")
	assert.Contains(t, out, "Info: fyi")
}

func TestNoColorOutsideStderr(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Fatalf("src", 1, 1, "plain")

	assert.NotContains(t, buf.String(), "\x1b")
}

func TestFormattedMessages(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Fatalf("", 0, 0, "unexpected %q at %d", "x", 4)

	assert.Contains(t, buf.String(), `unexpected "x" at 4`)
}
