package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/cluster/internal/cluster"
)

// DefaultLength is the number of cells of a Bar.
const DefaultLength = 40

// Bar prints a carriage-return progress line of the form
//
//	[#####               ] 12.5 % completed
//
// redrawing in place on every step.
type Bar struct {
	w      io.Writer
	length int
}

func NewBar(w io.Writer, length int) *Bar {
	if length < 1 {
		length = DefaultLength
	}
	return &Bar{w: w, length: length}
}

// Render returns the bar for step current of total, both counted from zero.
// The bar has length+1 cells; a cell is filled while its index does not
// exceed the filled fraction of length.
func Render(current, total, length int) string {
	fraction := 1.0
	if total > 0 {
		fraction = float64(current) / float64(total)
	}
	squares := fraction * float64(length)

	var sb strings.Builder
	sb.WriteString("\r[")
	counter := 0.0
	for ; counter <= squares; counter++ {
		sb.WriteByte('#')
	}
	for ; counter <= float64(length); counter++ {
		sb.WriteByte(' ')
	}
	fmt.Fprintf(&sb, "] %.1f %% completed ", fraction*100)
	return sb.String()
}

// OnStep draws the bar for an advance. step counts from 1 to total.
func (b *Bar) OnStep(step, total int, _ cluster.Summary) {
	fmt.Fprint(b.w, Render(step-1, total-1, b.length))
}

// Done ends the progress line.
func (b *Bar) Done() {
	fmt.Fprintln(b.w)
}
