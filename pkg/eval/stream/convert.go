package stream

import (
	"bufio"
	"io"
	"unicode/utf8"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/vals"
	"src.tide.sh/pkg/strutil"
)

// IntoValues turns any Data into a stream of values. A single List or Range
// is iterated element by element, and bytes are split into lines.
func IntoValues(intr <-chan struct{}, d Data) *Values {
	switch d := d.(type) {
	case nil, Empty:
		return FromSlice(intr, nil)
	case Single:
		switch v := d.Value.(type) {
		case vals.List:
			return FromSlice(intr, v.Vals)
		case vals.Range:
			next := v.Iterator()
			return NewValues(intr, func() (vals.Value, bool, error) {
				elem, ok := next()
				return elem, ok, nil
			}, nil)
		case nil, vals.Nothing:
			return FromSlice(intr, nil)
		}
		return FromSlice(intr, []vals.Value{d.Value})
	case *Values:
		return d
	case *Bytes:
		return Lines(intr, d)
	}
	panic("unreachable")
}

// Lines splits bytes into a stream of strings, one per line, without line
// endings.
func Lines(intr <-chan struct{}, b *Bytes) *Values {
	r := b.Reader()
	br := bufio.NewReader(r)
	return NewValues(intr, func() (vals.Value, bool, error) {
		line, err := br.ReadString('\n')
		if line == "" && err == io.EOF {
			return nil, false, nil
		}
		if err != nil && err != io.EOF {
			return nil, false, err
		}
		return vals.String{Val: strutil.ChopLineEnding(line), Ranging: diag.NoRange}, true, nil
	}, func() { r.Close() })
}

// Collect realizes any Data into one value. A stream of values becomes a List,
// and bytes become a String, or a Binary if they are not valid UTF-8. Empty
// becomes Nothing.
func Collect(d Data) (vals.Value, error) {
	switch d := d.(type) {
	case nil, Empty:
		return vals.Nothing{Ranging: diag.NoRange}, nil
	case Single:
		if d.Value == nil {
			return vals.Nothing{Ranging: diag.NoRange}, nil
		}
		return d.Value, nil
	case *Values:
		vs, err := Drain(d)
		if err != nil {
			return nil, err
		}
		return vals.List{Vals: vs, Ranging: diag.NoRange}, nil
	case *Bytes:
		bs, err := ReadAll(d)
		if err != nil {
			return nil, err
		}
		if utf8.Valid(bs) {
			return vals.String{Val: string(bs), Ranging: diag.NoRange}, nil
		}
		return vals.Binary{Val: bs, Ranging: diag.NoRange}, nil
	}
	panic("unreachable")
}

// Drain pulls all remaining elements of a stream.
func Drain(s *Values) ([]vals.Value, error) {
	vs := []vals.Value{}
	for {
		v, ok := s.Next()
		if !ok {
			return vs, s.Err()
		}
		vs = append(vs, v)
	}
}

// ReadAll reads all remaining bytes.
func ReadAll(b *Bytes) ([]byte, error) {
	r := b.Reader()
	defer r.Close()
	return io.ReadAll(r)
}

// Discard consumes d and throws the data away, returning the error that
// ended the stream, if any.
func Discard(d Data) error {
	switch d := d.(type) {
	case *Values:
		for {
			if _, ok := d.Next(); !ok {
				return d.Err()
			}
		}
	case *Bytes:
		r := d.Reader()
		defer r.Close()
		_, err := io.Copy(io.Discard, r)
		return err
	}
	return nil
}
