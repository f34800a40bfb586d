package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Reader parses a stream produced by Writer.
type Reader struct {
	s      *bufio.Scanner
	header Header
	line   int
}

// NewReader consumes the meta block of r and returns a reader positioned at
// the first record.
func NewReader(r io.Reader) (*Reader, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	rd := &Reader{s: s}
	if err := rd.readHeader(); err != nil {
		return nil, err
	}
	return rd, nil
}

func (rd *Reader) Header() Header { return rd.header }

func (rd *Reader) readHeader() error {
	if !rd.scan() {
		if err := rd.s.Err(); err != nil {
			return err
		}
		return fmt.Errorf("snapshot: empty stream")
	}
	if strings.TrimSpace(rd.s.Text()) != metaOpen {
		return fmt.Errorf("snapshot: line %d: expected meta block", rd.line)
	}

	for rd.scan() {
		text := strings.TrimSpace(rd.s.Text())
		if text == metaClose {
			return nil
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return fmt.Errorf("snapshot: line %d: malformed meta entry %q", rd.line, text)
		}
		if err := rd.setMeta(key, value); err != nil {
			return fmt.Errorf("snapshot: line %d: %w", rd.line, err)
		}
	}
	if err := rd.s.Err(); err != nil {
		return err
	}
	return fmt.Errorf("snapshot: unterminated meta block")
}

func (rd *Reader) setMeta(key, value string) error {
	var err error
	h := &rd.header
	switch key {
	case "R0":
		h.R0, err = strconv.ParseFloat(value, 64)
	case "N":
		h.N, err = strconv.Atoi(value)
	case "dim":
		h.Dim, err = strconv.Atoi(value)
	case "epsilon":
		h.Epsilon, err = strconv.ParseFloat(value, 64)
	case "saveEach":
		h.SaveEach, err = strconv.Atoi(value)
	case "G":
		h.G, err = strconv.ParseFloat(value, 64)
	case "integrator":
		h.Integrator = value
	}
	if err != nil {
		return fmt.Errorf("meta %s: %w", key, err)
	}
	return nil
}

func (rd *Reader) scan() bool {
	ok := rd.s.Scan()
	if ok {
		rd.line++
	}
	return ok
}

// Next returns the next record, or io.EOF at the end of the stream.
func (rd *Reader) Next() (Record, error) {
	for rd.scan() {
		text := strings.TrimSpace(rd.s.Text())
		if text == "" {
			continue
		}
		rec, err := ParseRecord(text)
		if err != nil {
			return Record{}, fmt.Errorf("snapshot: line %d: %w", rd.line, err)
		}
		return rec, nil
	}
	if err := rd.s.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

// ReadAll returns the header and every record of r.
func ReadAll(r io.Reader) (Header, []Record, error) {
	rd, err := NewReader(r)
	if err != nil {
		return Header{}, nil, err
	}
	var records []Record
	for {
		rec, err := rd.Next()
		if err == io.EOF {
			return rd.Header(), records, nil
		}
		if err != nil {
			return rd.Header(), records, err
		}
		records = append(records, rec)
	}
}

// ParseRecord parses a single state line.
func ParseRecord(line string) (Record, error) {
	var rec Record

	prefix, rest, _ := strings.Cut(line, "(")
	for _, field := range strings.Fields(prefix) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return rec, fmt.Errorf("malformed field %q", field)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return rec, fmt.Errorf("field %s: %w", key, err)
		}
		switch key {
		case "t":
			rec.Time = v
		case "E":
			rec.Energy = v
		}
	}

	for rest != "" {
		group, tail, ok := strings.Cut(rest, ")")
		if !ok {
			return rec, fmt.Errorf("unterminated particle group")
		}
		p, err := parseParticle(group)
		if err != nil {
			return rec, fmt.Errorf("particle %d: %w", len(rec.Particles), err)
		}
		rec.Particles = append(rec.Particles, p)

		_, rest, _ = strings.Cut(tail, "(")
	}
	return rec, nil
}

func parseParticle(group string) (Particle, error) {
	var p Particle
	pos := make(map[int]float64)
	for _, field := range strings.Fields(group) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return p, fmt.Errorf("malformed field %q", field)
		}
		if key == "bound" {
			switch value {
			case "True":
				p.Bound = true
			case "False":
			default:
				return p, fmt.Errorf("bound flag %q", value)
			}
			continue
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return p, fmt.Errorf("field %s: %w", key, err)
		}
		switch key {
		case "kinetic":
			p.Kinetic = v
		case "potential":
			p.Potential = v
		case "potential_bound":
			p.PotentialBound = v
		default:
			axis, err := axisIndex(key)
			if err != nil {
				return p, err
			}
			pos[axis] = v
		}
	}
	p.Position = make([]float64, len(pos))
	for axis, v := range pos {
		if axis >= len(pos) {
			return p, fmt.Errorf("position axis %d missing lower axes", axis)
		}
		p.Position[axis] = v
	}
	return p, nil
}

func axisIndex(key string) (int, error) {
	switch key {
	case "x":
		return 0, nil
	case "y":
		return 1, nil
	case "z":
		return 2, nil
	}
	if strings.HasPrefix(key, "x") {
		if i, err := strconv.Atoi(key[1:]); err == nil && i >= 3 {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", key)
}
