package playerbar

import "fmt"

// RenderVolume renders the volume indicator, e.g. "vol 80%" or "muted".
func RenderVolume(volume float64) string {
	if volume <= 0 {
		return progressTimeStyle().Render("muted")
	}
	pct := int(volume*100 + 0.5)
	return progressTimeStyle().Render(fmt.Sprintf("vol %3d%%", pct))
}

// RenderModes renders the repeat and shuffle indicators. Active modes
// are highlighted.
func RenderModes(repeat, shuffle bool) string {
	mode := func(label string, on bool) string {
		if on {
			return activeModeStyle().Render(label)
		}
		return metaStyle().Render(label)
	}
	return mode("repeat", repeat) + " " + mode("shuffle", shuffle)
}
