package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/cluster/internal/snapshot"
)

// ProjectionToASCII draws the particles of rec projected onto two axes.
// Bound particles are drawn as '•', unbound ones as '·'. Axes through the
// origin are drawn when visible.
func ProjectionToASCII(rec snapshot.Record, xAxis, yAxis, width, height int) string {
	if width < 2 || height < 2 || len(rec.Particles) == 0 {
		return ""
	}

	type point struct {
		x, y  float64
		bound bool
	}
	points := make([]point, 0, len(rec.Particles))
	for _, p := range rec.Particles {
		if xAxis >= len(p.Position) || yAxis >= len(p.Position) {
			continue
		}
		x, y := p.Position[xAxis], p.Position[yAxis]
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		points = append(points, point{x, y, p.Bound})
	}
	if len(points) == 0 {
		return ""
	}

	// Find bounds
	minX, maxX := points[0].x, points[0].x
	minY, maxY := points[0].y, points[0].y
	for _, p := range points {
		minX = math.Min(minX, p.x)
		maxX = math.Max(maxX, p.x)
		minY = math.Min(minY, p.y)
		maxY = math.Max(maxY, p.y)
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
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			canvas[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == '│' {
				canvas[row][col] = '┼'
			} else {
				canvas[row][col] = '─'
			}
		}
	}

	// Unbound first so bound particles win shared cells
	for _, pass := range []bool{false, true} {
		for _, p := range points {
			if p.bound != pass {
				continue
			}
			col := int((p.x - minX) / rangeX * float64(width-1))
			row := height - 1 - int((p.y-minY)/rangeY*float64(height-1))
			if p.bound {
				canvas[row][col] = '•'
			} else {
				canvas[row][col] = '·'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
