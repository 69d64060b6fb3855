package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Header renders text in bold, fading from the primary to the secondary
// color one grapheme at a time. Blank graphemes are left unstyled.
func (t *Theme) Header(text string) string {
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}

	var b strings.Builder
	for i, c := range headerColors(len(clusters), t.Primary, t.Secondary) {
		cluster := clusters[i]
		if strings.TrimSpace(cluster) == "" {
			b.WriteString(cluster)
			continue
		}
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(c).Render(cluster))
	}
	return b.String()
}

// headerColors blends n colors in HCL space. Colors that are not hex
// codes are used as they are.
func headerColors(n int, from, to lipgloss.Color) []lipgloss.Color {
	out := make([]lipgloss.Color, n)
	c1, err1 := colorful.Hex(string(from))
	c2, err2 := colorful.Hex(string(to))
	for i := range out {
		switch {
		case err1 != nil || err2 != nil:
			out[i] = from
		case n == 1:
			out[i] = from
		default:
			out[i] = lipgloss.Color(c1.BlendHcl(c2, float64(i)/float64(n-1)).Clamped().Hex())
		}
	}
	return out
}
