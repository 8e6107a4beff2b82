package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░░   0%", ProgressBar(0, 0, 5))
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "██████████ 100%", ProgressBar(3, 3, 10))
	// width is clamped to 5
	assert.Equal(t, "█████ 100%", ProgressBar(1, 1, 1))
}

func TestSetTheme(t *testing.T) {
	defer SetTheme("classic")

	SetTheme("mono")
	assert.Equal(t, "mono", Current().Name)
	assert.Equal(t, "[x]", Checkbox(true))
	assert.Equal(t, "[ ]", Checkbox(false))

	SetTheme("NEON")
	assert.Equal(t, "neon", Current().Name)

	SetTheme("unknown")
	assert.Equal(t, "classic", Current().Name)
}

func TestHeader(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	assert.Equal(t, "Todos   x 1  - 2  Total 3", Header(1, 3))
}

func TestOKAndFail(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "nope")
	assert.Equal(t, "ok added\nerror: nope\n", buf.String())
}

func TestPanel(t *testing.T) {
	var buf bytes.Buffer
	Panel(&buf, []string{"first", "second line"})

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[1], "first")
	assert.Contains(t, lines[2], "second line")
}

func TestErrorBanner(t *testing.T) {
	assert.Contains(t, ErrorBanner("boom"), "Error: boom")
}
