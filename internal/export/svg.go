package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/cluster/internal/snapshot"
)

const (
	boundColor   = "#00ff88"
	unboundColor = "#ff4444"
)

// Point is a position in data coordinates.
type Point struct{ X, Y float64 }

// frame maps data coordinates onto an SVG viewport with 10% padding.
type frame struct {
	minX, minY     float64
	rangeX, rangeY float64
	width, height  int
}

func newFrame(points []Point, width, height int) frame {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1

	return frame{
		minX: minX, minY: minY,
		rangeX: maxX - minX, rangeY: maxY - minY,
		width: width, height: height,
	}
}

func (f frame) project(p Point) (float64, float64) {
	x := (p.X - f.minX) / f.rangeX * float64(f.width)
	y := float64(f.height) - (p.Y-f.minY)/f.rangeY*float64(f.height)
	return x, y
}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
}

func finite(x, y float64) bool {
	return !math.IsNaN(x) && !math.IsNaN(y) && !math.IsInf(x, 0) && !math.IsInf(y, 0)
}

// SnapshotToSVG draws the particles of rec projected onto two axes, one
// circle per particle. Bound particles are green and unbound ones red.
// Particles with non-finite coordinates are skipped.
func SnapshotToSVG(rec snapshot.Record, xAxis, yAxis, width, height int, radius float64) string {
	points := make([]Point, 0, len(rec.Particles))
	bound := make([]bool, 0, len(rec.Particles))
	for _, p := range rec.Particles {
		if xAxis >= len(p.Position) || yAxis >= len(p.Position) {
			continue
		}
		x, y := p.Position[xAxis], p.Position[yAxis]
		if !finite(x, y) {
			continue
		}
		points = append(points, Point{x, y})
		bound = append(bound, p.Bound)
	}
	if len(points) == 0 {
		return ""
	}

	f := newFrame(points, width, height)
	var sb strings.Builder
	header(&sb, width, height)
	for _, group := range []struct {
		bound bool
		color string
	}{{false, unboundColor}, {true, boundColor}} {
		sb.WriteString(fmt.Sprintf("<g fill=%q>\n", group.color))
		for i, p := range points {
			if bound[i] != group.bound {
				continue
			}
			cx, cy := f.project(p)
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, radius))
		}
		sb.WriteString("</g>\n")
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG draws y against x as a single polyline.
func SeriesToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	points := make([]Point, 0, len(xs))
	for i := range xs {
		if i < len(ys) && finite(xs[i], ys[i]) {
			points = append(points, Point{xs[i], ys[i]})
		}
	}
	if len(points) < 2 {
		return ""
	}

	f := newFrame(points, width, height)
	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
	for i, p := range points {
		x, y := f.project(p)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
