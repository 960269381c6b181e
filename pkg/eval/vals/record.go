package vals

import (
	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/errs"
)

// Record is an ordered mapping from field names to values. Field names are
// unique.
type Record struct {
	cols []string
	vals []Value
	diag.Ranging
}

// Kind returns KindRecord.
func (Record) Kind() Kind { return KindRecord }

// EmptyRecord is a record with no fields.
var EmptyRecord = Record{Ranging: diag.NoRange}

// NewRecord builds a Record from parallel slices of names and values. It
// fails with errs.DuplicateField if a name appears twice.
func NewRecord(cols []string, vs []Value) (Record, error) {
	if len(cols) != len(vs) {
		return Record{}, errs.BadValue{What: "record", Valid: "same number of names and values",
			Actual: "mismatched lengths"}
	}
	seen := make(map[string]struct{}, len(cols))
	for _, col := range cols {
		if _, dup := seen[col]; dup {
			return Record{}, errs.DuplicateField{Field: col}
		}
		seen[col] = struct{}{}
	}
	return Record{append([]string(nil), cols...), append([]Value(nil), vs...), diag.NoRange}, nil
}

// RecordBuilder builds a Record one field at a time.
type RecordBuilder struct {
	cols []string
	vals []Value
	err  error
}

// Add adds a field. Adding a field twice makes Record fail.
func (b *RecordBuilder) Add(name string, v Value) *RecordBuilder {
	if b.err != nil {
		return b
	}
	for _, col := range b.cols {
		if col == name {
			b.err = errs.DuplicateField{Field: name}
			return b
		}
	}
	b.cols = append(b.cols, name)
	b.vals = append(b.vals, v)
	return b
}

// Record returns the built Record.
func (b *RecordBuilder) Record() (Record, error) {
	if b.err != nil {
		return Record{}, b.err
	}
	return Record{b.cols, b.vals, diag.NoRange}, nil
}

// MustRecord is like Record, but panics on error. It is meant for records
// whose field names are known statically.
func (b *RecordBuilder) MustRecord() Record {
	r, err := b.Record()
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.cols) }

// Columns returns a copy of the field names in order.
func (r Record) Columns() []string { return append([]string(nil), r.cols...) }

// Values returns a copy of the field values in order.
func (r Record) Values() []Value { return append([]Value(nil), r.vals...) }

// At returns the i-th field.
func (r Record) At(i int) (string, Value) { return r.cols[i], r.vals[i] }

// Get returns the value of a field.
func (r Record) Get(name string) (Value, bool) {
	for i, col := range r.cols {
		if col == name {
			return r.vals[i], true
		}
	}
	return nil, false
}

// With returns a copy of r with the field set to v. A new field is appended
// at the end; an existing field keeps its position.
func (r Record) With(name string, v Value) Record {
	cols := append([]string(nil), r.cols...)
	vs := append([]Value(nil), r.vals...)
	for i, col := range cols {
		if col == name {
			vs[i] = v
			return Record{cols, vs, r.Ranging}
		}
	}
	return Record{append(cols, name), append(vs, v), r.Ranging}
}

// Without returns a copy of r without the named field.
func (r Record) Without(name string) Record {
	var cols []string
	var vs []Value
	for i, col := range r.cols {
		if col != name {
			cols = append(cols, col)
			vs = append(vs, r.vals[i])
		}
	}
	return Record{cols, vs, r.Ranging}
}
