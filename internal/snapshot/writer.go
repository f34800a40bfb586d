package snapshot

import (
	"bufio"
	"errors"
	"io"
	"strconv"
)

var ErrClosed = errors.New("snapshot: writer closed")

// Writer emits a stream. Records are written in call order; callers are
// expected to save with strictly increasing time.
type Writer struct {
	w      *bufio.Writer
	c      io.Closer
	closed bool
}

// NewWriter buffers output to w. If w is an io.Closer it is closed by Close.
func NewWriter(w io.Writer) *Writer {
	sw := &Writer{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		sw.c = c
	}
	return sw
}

func (sw *Writer) WriteHeader(h Header) error {
	if sw.closed {
		return ErrClosed
	}
	b := sw.w
	b.WriteString(metaOpen + "\n")
	writeKV(b, "R0", formatFloat(h.R0))
	writeKV(b, "N", strconv.Itoa(h.N))
	writeKV(b, "epsilon", formatFloat(h.Epsilon))
	writeKV(b, "saveEach", strconv.Itoa(h.SaveEach))
	if h.Dim > 0 {
		writeKV(b, "dim", strconv.Itoa(h.Dim))
	}
	if h.G != 0 {
		writeKV(b, "G", formatFloat(h.G))
	}
	if h.Integrator != "" {
		writeKV(b, "integrator", h.Integrator)
	}
	_, err := b.WriteString(metaClose + "\n")
	return err
}

// Record appends one line for rec.
func (sw *Writer) Record(rec Record) error {
	if sw.closed {
		return ErrClosed
	}
	b := sw.w
	b.WriteString("t=" + formatFloat(rec.Time) + " ")
	b.WriteString("E=" + formatFloat(rec.Energy) + " ")

	for _, p := range rec.Particles {
		b.WriteByte('(')
		for i, x := range p.Position {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(axisName(i) + "=" + formatFloat(x))
		}
		b.WriteString(" kinetic=" + formatFloat(p.Kinetic))
		b.WriteString(" potential=" + formatFloat(p.Potential))
		b.WriteString(" potential_bound=" + formatFloat(p.PotentialBound))
		if p.Bound {
			b.WriteString(" bound=True")
		} else {
			b.WriteString(" bound=False")
		}
		b.WriteByte(')')
	}
	_, err := b.WriteString("\n")
	return err
}

func (sw *Writer) Flush() error {
	return sw.w.Flush()
}

// Close flushes buffered records and closes the underlying writer.
func (sw *Writer) Close() error {
	if sw.closed {
		return nil
	}
	sw.closed = true
	err := sw.w.Flush()
	if sw.c != nil {
		if cerr := sw.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func writeKV(b *bufio.Writer, key, value string) {
	b.WriteString(key + "=" + value + "\n")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
