// Package export renders sampled paths to standalone SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/mkoven/pathmc/internal/paths"
	"github.com/mkoven/pathmc/internal/toy"
)

// Plot holds everything one figure needs: the surface in the
// background and any number of trajectories over it.
type Plot struct {
	Potential  toy.Potential
	Paths      []paths.Trajectory
	Width      int
	Height     int
	XMin, XMax float64
	YMin, YMax float64
}

// palette cycles per trajectory so overlapping paths stay readable.
var palette = []string{"#00ff88", "#00ccff", "#ff88ff", "#ffcc00", "#ff6655"}

// SVG renders the plot. The potential is shaded as a coarse cell grid,
// each trajectory as a polyline in data coordinates.
func (p *Plot) SVG() string {
	w, h := p.Width, p.Height
	if w <= 0 {
		w = 640
	}
	if h <= 0 {
		h = 480
	}
	if p.XMax <= p.XMin {
		p.XMin, p.XMax = -1.1, 1.1
	}
	if p.YMax <= p.YMin {
		p.YMin, p.YMax = -1.1, 1.1
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, w, h, w, h))

	if p.Potential != nil {
		p.writeSurface(&sb, w, h)
	}
	for i, t := range p.Paths {
		p.writePath(&sb, t, w, h, palette[i%len(palette)])
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func (p *Plot) writeSurface(sb *strings.Builder, w, h int) {
	const cells = 60
	cw := float64(w) / cells
	ch := float64(h) / cells

	// Shade by energy, darker is lower. The walls clip at vMax so the
	// basins keep contrast.
	const vMin, vMax = -0.8, 1.2

	sb.WriteString("<g>\n")
	for row := 0; row < cells; row++ {
		for col := 0; col < cells; col++ {
			x := p.XMin + (p.XMax-p.XMin)*(float64(col)+0.5)/cells
			y := p.YMax - (p.YMax-p.YMin)*(float64(row)+0.5)/cells
			v := p.Potential.V([]float64{x, y})

			frac := (v - vMin) / (vMax - vMin)
			if frac < 0 {
				frac = 0
			}
			if frac > 1 {
				frac = 1
			}
			shade := int(20 + frac*90)
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#%02x%02x%02x"/>
`, float64(col)*cw, float64(row)*ch, cw+0.5, ch+0.5, shade/2, shade/2, shade))
		}
	}
	sb.WriteString("</g>\n")
}

func (p *Plot) writePath(sb *strings.Builder, t paths.Trajectory, w, h int, color string) {
	if t.Len() < 2 {
		return
	}
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
	for i, s := range t {
		x := (s.Coords[0] - p.XMin) / (p.XMax - p.XMin) * float64(w)
		y := float64(h) - (s.Coords[1]-p.YMin)/(p.YMax-p.YMin)*float64(h)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")
}
