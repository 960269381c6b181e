package vals

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/errs"
)

// ToJSON encodes a value as JSON. Record fields keep their order. An indent
// of "" gives compact output.
//
// Dates are encoded as RFC 3339 strings, durations as nanoseconds, file sizes
// as bytes and binaries as arrays of bytes.
func ToJSON(v Value, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, indent, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value, indent string, depth int) error {
	switch v := v.(type) {
	case nil, Nothing:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.Val))
	case Int:
		buf.WriteString(strconv.FormatInt(v.Val, 10))
	case Float:
		if math.IsNaN(v.Val) || math.IsInf(v.Val, 0) {
			return errs.BadValue{What: "float in JSON", Valid: "finite number", Actual: formatFloat(v.Val)}
		}
		buf.WriteString(strconv.FormatFloat(v.Val, 'g', -1, 64))
	case String:
		writeJSONString(buf, v.Val)
	case Date:
		writeJSONString(buf, v.Val.Format(time.RFC3339Nano))
	case Duration:
		buf.WriteString(strconv.FormatInt(int64(v.Val), 10))
	case Filesize:
		buf.WriteString(strconv.FormatInt(v.Val, 10))
	case Binary:
		vs := make([]Value, len(v.Val))
		for i, b := range v.Val {
			vs[i] = Int{Val: int64(b)}
		}
		return writeJSONArray(buf, vs, indent, depth)
	case Range:
		if !v.Bounded {
			return errs.BadValue{What: "range in JSON", Valid: "bounded range", Actual: Repr(v)}
		}
		var vs []Value
		for next := v.Iterator(); ; {
			elem, ok := next()
			if !ok {
				break
			}
			vs = append(vs, elem)
		}
		return writeJSONArray(buf, vs, indent, depth)
	case List:
		return writeJSONArray(buf, v.Vals, indent, depth)
	case Record:
		if len(v.cols) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		for i, col := range v.cols {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(buf, indent, depth+1)
			writeJSONString(buf, col)
			buf.WriteByte(':')
			if indent != "" {
				buf.WriteByte(' ')
			}
			if err := writeJSON(buf, v.vals[i], indent, depth+1); err != nil {
				return err
			}
		}
		newline(buf, indent, depth)
		buf.WriteByte('}')
	default:
		return errs.TypeMismatch{What: "value in JSON", Valid: "data value", Got: KindName(v)}
	}
	return nil
}

func writeJSONArray(buf *bytes.Buffer, vs []Value, indent string, depth int) error {
	if len(vs) == 0 {
		buf.WriteString("[]")
		return nil
	}
	buf.WriteByte('[')
	for i, elem := range vs {
		if i > 0 {
			buf.WriteByte(',')
		}
		newline(buf, indent, depth+1)
		if err := writeJSON(buf, elem, indent, depth+1); err != nil {
			return err
		}
	}
	newline(buf, indent, depth)
	buf.WriteByte(']')
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	// Marshaling a string never fails.
	b, _ := json.Marshal(s)
	buf.Write(b)
}

func newline(buf *bytes.Buffer, indent string, depth int) {
	if indent == "" {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(indent, depth))
}

// FromJSON decodes one JSON document. Objects become Records with fields in
// document order; numbers without a fraction or exponent become Ints.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := readJSON(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errs.BadValue{What: "JSON input", Valid: "a single document", Actual: "trailing data"}
	}
	return v, nil
}

func readJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, jsonError(err)
	}
	switch tok := tok.(type) {
	case nil:
		return Nothing{Ranging: diag.NoRange}, nil
	case bool:
		return Bool{Val: tok, Ranging: diag.NoRange}, nil
	case string:
		return String{Val: tok, Ranging: diag.NoRange}, nil
	case json.Number:
		if n, err := tok.Int64(); err == nil && !strings.ContainsAny(tok.String(), ".eE") {
			return Int{Val: n, Ranging: diag.NoRange}, nil
		}
		f, err := tok.Float64()
		if err != nil {
			return nil, errs.BadValue{What: "JSON number", Valid: "float64", Actual: tok.String()}
		}
		return Float{Val: f, Ranging: diag.NoRange}, nil
	case json.Delim:
		switch tok {
		case '[':
			vs := []Value{}
			for dec.More() {
				elem, err := readJSON(dec)
				if err != nil {
					return nil, err
				}
				vs = append(vs, elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, jsonError(err)
			}
			return List{Vals: vs, Ranging: diag.NoRange}, nil
		case '{':
			var b RecordBuilder
			for dec.More() {
				key, err := dec.Token()
				if err != nil {
					return nil, jsonError(err)
				}
				elem, err := readJSON(dec)
				if err != nil {
					return nil, err
				}
				b.Add(key.(string), elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, jsonError(err)
			}
			return b.Record()
		}
	}
	return nil, errs.BadValue{What: "JSON input", Valid: "valid JSON", Actual: "unexpected token"}
}

func jsonError(err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return errs.BadValue{What: "JSON input", Valid: "valid JSON", Actual: err.Error()}
}
