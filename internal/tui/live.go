package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkoven/pathmc/internal/paths"
	"github.com/mkoven/pathmc/internal/toy"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer draws the potential surface and the active trajectories
// of each persisted step. It implements paths.Observer and caps its
// redraw rate, so a fast sampler never waits on the terminal.
type LiveRenderer struct {
	pot        toy.Potential
	frameRate  int
	lastFrame  time.Time
	canvas     [][]rune
	background [][]rune

	xMin, xMax float64
	yMin, yMax float64
}

func NewLiveRenderer(pot toy.Potential, frameRate int) *LiveRenderer {
	r := &LiveRenderer{
		pot:       pot,
		frameRate: frameRate,
		xMin:      -1.1, xMax: 1.1,
		yMin: -1.1, yMax: 1.1,
	}
	r.canvas = make([][]rune, height)
	for i := range r.canvas {
		r.canvas[i] = make([]rune, width)
	}
	r.background = r.renderPotential()
	return r
}

func (r *LiveRenderer) OnStep(step *paths.Step) {
	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.resetToBackground()
	for _, ens := range step.Active.Ensembles() {
		r.drawTrajectory(step.Active[ens].Trajectory)
	}
	r.render(step)
}

// renderPotential shades the surface by energy level once; redraws
// only repaint trajectories over it.
func (r *LiveRenderer) renderPotential() [][]rune {
	shades := []rune{'@', '%', '+', ':', '.', ' '}
	levels := []float64{1.0, 0.3, 0.0, -0.3, -0.6}

	bg := make([][]rune, height)
	for row := range bg {
		bg[row] = make([]rune, width)
		for col := range bg[row] {
			x := r.xMin + (r.xMax-r.xMin)*float64(col)/float64(width-1)
			y := r.yMax - (r.yMax-r.yMin)*float64(row)/float64(height-1)
			v := r.pot.V([]float64{x, y})

			shade := shades[len(shades)-1]
			for i, lvl := range levels {
				if v >= lvl {
					shade = shades[i]
					break
				}
			}
			bg[row][col] = shade
		}
	}
	return bg
}

func (r *LiveRenderer) resetToBackground() {
	for row := range r.canvas {
		copy(r.canvas[row], r.background[row])
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) project(s *paths.Snapshot) (int, int) {
	px := int(float64(width-1) * (s.Coords[0] - r.xMin) / (r.xMax - r.xMin))
	py := int(float64(height-1) * (r.yMax - s.Coords[1]) / (r.yMax - r.yMin))
	return px, py
}

func (r *LiveRenderer) drawTrajectory(t paths.Trajectory) {
	if t.Len() == 0 {
		return
	}
	prevX, prevY := r.project(t[0])
	for _, s := range t[1:] {
		px, py := r.project(s)
		r.line(prevX, prevY, px, py, 'o')
		prevX, prevY = px, py
	}
	fx, fy := r.project(t.First())
	lx, ly := r.project(t.Last())
	r.set(fx, fy, 'A')
	r.set(lx, ly, 'B')
}

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (r *LiveRenderer) render(step *paths.Step) {
	var b strings.Builder
	b.WriteString(clearScreen)

	verdict := "rejected"
	if step.Accepted {
		verdict = "accepted"
	}
	b.WriteString(fmt.Sprintf("  step %d  %s  %s\n", step.Index, step.Mover, verdict))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	var lens []string
	for _, ens := range step.Active.Ensembles() {
		lens = append(lens, fmt.Sprintf("%s:%d", ens, step.Active[ens].Trajectory.Len()))
	}
	b.WriteString("  frames " + strings.Join(lens, " ") + "\n")

	fmt.Print(b.String())
}

func (r *LiveRenderer) Start() { fmt.Print(hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Print(showCursor) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
