package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░   0%", ProgressBar(0, 0, 1), "zero total and tiny width are clamped")
	assert.Equal(t, "██████████ 100%", ProgressBar(3, 3, 10))
}

func TestPanelAlignsColoredLines(t *testing.T) {
	SetTheme("classic")
	SetColorForcing(true, false)
	t.Cleanup(func() { SetColorForcing(false, false) })

	var buf bytes.Buffer
	Panel(&buf, []string{C(Current().Success, "done"), "pending ☐"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "┌───────────┐", lines[0])
	assert.Equal(t, "│ pending ☐ │", lines[2])
	assert.Equal(t, "└───────────┘", lines[3])
	assert.Equal(t, visibleWidth(lines[0]), visibleWidth(lines[1]))
}

func TestMonoThemeDisablesColor(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() {
		SetTheme("classic")
		SetColorForcing(false, false)
	})

	assert.Equal(t, "plain", C(fgRed, "plain"))
	assert.Equal(t, "[x]", Current().BoxChecked)

	var buf bytes.Buffer
	Fail(&buf, "boom")
	assert.Equal(t, "✖ boom\n", buf.String())
}

func TestLeavingMonoRestoresColor(t *testing.T) {
	SetColorForcing(true, false)
	t.Cleanup(func() {
		SetTheme("classic")
		SetColorForcing(false, false)
	})

	SetTheme("mono")
	assert.Equal(t, "plain", C(fgRed, "plain"))
	SetTheme("classic")
	assert.Equal(t, fgRed+"plain"+reset, C(fgRed, "plain"))

	SetColorForcing(false, true)
	SetTheme("neon")
	assert.Equal(t, "plain", C(fgRed, "plain"), "explicit no-color still wins")
}

func TestUnknownThemeFallsBack(t *testing.T) {
	SetTheme("solarized")
	t.Cleanup(func() { SetTheme("classic") })
	assert.Equal(t, "classic", Current().Name)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", Truncate("éééééééé", 6))
}
