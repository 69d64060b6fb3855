package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestHeader_KeepsText(t *testing.T) {
	tests := []string{"", "o", "octaplay", "now playing", "日本語"}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			assert.Equal(t, text, ansi.Strip(T().Header(text)))
		})
	}
}

func TestHeaderColors(t *testing.T) {
	from, to := lipgloss.Color("#000000"), lipgloss.Color("#ffffff")

	colors := headerColors(3, from, to)
	assert.Len(t, colors, 3)
	assert.Equal(t, from, colors[0])
	assert.Equal(t, to, colors[2])
	assert.NotEqual(t, colors[0], colors[1])

	assert.Equal(t, []lipgloss.Color{from}, headerColors(1, from, to))
	assert.Empty(t, headerColors(0, from, to))
}

func TestHeaderColors_NonHexFallsBack(t *testing.T) {
	colors := headerColors(2, lipgloss.Color("5"), lipgloss.Color("#ffffff"))
	assert.Equal(t, []lipgloss.Color{"5", "5"}, colors)
}
