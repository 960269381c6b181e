package vals

import (
	"strconv"

	"src.tide.sh/pkg/eval/errs"
)

// IsTable reports whether l is a non-empty list of records.
func IsTable(l List) bool {
	if len(l.Vals) == 0 {
		return false
	}
	for _, v := range l.Vals {
		if _, ok := v.(Record); !ok {
			return false
		}
	}
	return true
}

// Columns returns the union of the fields of all records in l, in order of
// first occurrence. Non-record elements are ignored.
func Columns(l List) []string {
	var cols []string
	seen := make(map[string]struct{})
	for _, v := range l.Vals {
		r, ok := v.(Record)
		if !ok {
			continue
		}
		for _, col := range r.cols {
			if _, ok := seen[col]; !ok {
				seen[col] = struct{}{}
				cols = append(cols, col)
			}
		}
	}
	return cols
}

// GetColumn gets a column by name. On a Record it returns the field value; on
// a List it returns the list of the field values of every element; an Error
// has the columns msg and category. A missing field fails with
// errs.ColumnNotFound naming the column.
func GetColumn(v Value, name string) (Value, error) {
	switch v := v.(type) {
	case Record:
		if field, ok := v.Get(name); ok {
			return field, nil
		}
		return nil, errs.ColumnNotFound{Column: name}
	case List:
		out := make([]Value, len(v.Vals))
		for i, elem := range v.Vals {
			field, err := GetColumn(elem, name)
			if err != nil {
				return nil, err
			}
			out[i] = field
		}
		return List{out, v.Ranging}, nil
	case Error:
		// Caught errors expose their message and category.
		switch name {
		case "msg":
			return String{Val: v.Err.Error(), Ranging: v.Ranging}, nil
		case "category":
			return String{Val: v.Category().String(), Ranging: v.Ranging}, nil
		}
		return nil, errs.ColumnNotFound{Column: name}
	}
	return nil, errs.TypeMismatch{What: "value with column " + name,
		Valid: "record or table", Got: KindName(v)}
}

// PathMember is one step of a cell path like $x.name.0: either a column name
// or a list index.
type PathMember struct {
	Name  string
	Index int
	// IsIndex distinguishes Index 0 from an unset Index.
	IsIndex bool
	// Optional makes a missing member yield Nothing instead of failing.
	Optional bool
}

func (m PathMember) String() string {
	if m.IsIndex {
		return strconv.Itoa(m.Index)
	}
	return m.Name
}

// Index follows one path member.
func Index(v Value, m PathMember) (Value, error) {
	if !m.IsIndex {
		got, err := GetColumn(v, m.Name)
		if err != nil && m.Optional {
			return Nothing{Ranging: v.Range()}, nil
		}
		return got, err
	}
	var n int
	switch v := v.(type) {
	case List:
		n = len(v.Vals)
		if 0 <= m.Index && m.Index < n {
			return v.Vals[m.Index], nil
		}
	case Range:
		if elem, ok := v.Nth(int64(m.Index)); ok {
			return elem, nil
		}
		n = int(v.Len())
	default:
		if m.Optional {
			return Nothing{Ranging: v.Range()}, nil
		}
		return nil, errs.TypeMismatch{What: "indexee", Valid: "list or range", Got: KindName(v)}
	}
	if m.Optional {
		return Nothing{Ranging: v.Range()}, nil
	}
	return nil, errs.OutOfRange{What: "index", ValidLow: 0, ValidHigh: n - 1,
		Actual: strconv.Itoa(m.Index)}
}

// FollowPath follows a whole cell path.
func FollowPath(v Value, path []PathMember) (Value, error) {
	for _, m := range path {
		var err error
		v, err = Index(v, m)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Upsert returns a copy of v with the value at path replaced by newVal. Record
// fields that don't exist yet are added; list indices must exist.
func Upsert(v Value, path []PathMember, newVal Value) (Value, error) {
	if len(path) == 0 {
		return newVal, nil
	}
	m := path[0]
	switch container := v.(type) {
	case Record:
		if m.IsIndex {
			return nil, errs.TypeMismatch{What: "record key", Want: "column name", Got: "index"}
		}
		old, ok := container.Get(m.Name)
		if !ok {
			if len(path) > 1 {
				return nil, errs.ColumnNotFound{Column: m.Name}
			}
			return container.With(m.Name, newVal), nil
		}
		updated, err := Upsert(old, path[1:], newVal)
		if err != nil {
			return nil, err
		}
		return container.With(m.Name, updated), nil
	case List:
		if !m.IsIndex {
			// Updating a column of every row.
			out := make([]Value, len(container.Vals))
			for i, elem := range container.Vals {
				updated, err := Upsert(elem, path, newVal)
				if err != nil {
					return nil, err
				}
				out[i] = updated
			}
			return List{out, container.Ranging}, nil
		}
		if m.Index < 0 || m.Index >= len(container.Vals) {
			return nil, errs.OutOfRange{What: "index", ValidLow: 0,
				ValidHigh: len(container.Vals) - 1, Actual: strconv.Itoa(m.Index)}
		}
		updated, err := Upsert(container.Vals[m.Index], path[1:], newVal)
		if err != nil {
			return nil, err
		}
		out := append([]Value(nil), container.Vals...)
		out[m.Index] = updated
		return List{out, container.Ranging}, nil
	}
	return nil, errs.TypeMismatch{What: "assignment target", Valid: "record or list", Got: KindName(v)}
}
