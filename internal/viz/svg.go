package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/sim"
)

// TrailsToSVG draws every body's recorded trail and current position as an
// SVG image of w×h pixels, seen through cam.
func TrailsToSVG(d *sim.Driver, cam *Camera, w, h int, theme Theme) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, w, h, w, h))

	for i := 0; i < d.Len(); i++ {
		idx := dynamo.BodyIndex(i)
		color := string(theme.Bodies[i%len(theme.Bodies)])

		var path strings.Builder
		for _, p := range d.Trail(idx) {
			x, y, _, _ := cam.Project(p, w, h)
			if path.Len() == 0 {
				path.WriteString(fmt.Sprintf("M%d,%d", x, y))
			} else {
				path.WriteString(fmt.Sprintf(" L%d,%d", x, y))
			}
		}
		if path.Len() > 0 {
			sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-opacity="0.6" stroke-width="1.5" d="%s"/>
`, color, path.String()))
		}

		x, y, _, _ := cam.Project(d.View().Position(idx), w, h)
		sb.WriteString(fmt.Sprintf(`<circle cx="%d" cy="%d" r="4" fill="%s"><title>%s</title></circle>
`, x, y, color, d.Name(idx)))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}
