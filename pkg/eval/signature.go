package eval

import (
	"strings"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/vals"
)

// Shape constrains the kind of an argument or of pipeline input.
type Shape uint8

// Shapes. ShapeNumber accepts ints and floats; ShapeTable accepts lists of
// records; ShapeNothing, as the shape of a flag, makes it a switch.
const (
	ShapeAny Shape = iota
	ShapeNothing
	ShapeBool
	ShapeInt
	ShapeFloat
	ShapeNumber
	ShapeString
	ShapeBinary
	ShapeDate
	ShapeDuration
	ShapeFilesize
	ShapeRange
	ShapeList
	ShapeRecord
	ShapeTable
	ShapeClosure
)

var shapeNames = [...]string{
	"any", "nothing", "bool", "int", "float", "number", "string", "binary",
	"datetime", "duration", "filesize", "range", "list", "record", "table",
	"closure",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}

// ParseShape parses the name of a shape. The empty string is ShapeAny.
func ParseShape(name string) (Shape, bool) {
	if name == "" {
		return ShapeAny, true
	}
	if name == "date" {
		return ShapeDate, true
	}
	for i, shapeName := range shapeNames {
		if name == shapeName {
			return Shape(i), true
		}
	}
	return ShapeAny, false
}

// Accepts reports whether v conforms to the shape.
func (s Shape) Accepts(v vals.Value) bool {
	switch s {
	case ShapeAny:
		return true
	case ShapeNothing:
		return vals.IsNothing(v)
	case ShapeNumber:
		return v != nil && (v.Kind() == vals.KindInt || v.Kind() == vals.KindFloat)
	case ShapeTable:
		l, ok := v.(vals.List)
		return ok && vals.IsTable(l)
	case ShapeList:
		return v != nil && (v.Kind() == vals.KindList || v.Kind() == vals.KindRange)
	}
	if v == nil {
		return false
	}
	return v.Kind() == shapeKinds[s]
}

var shapeKinds = map[Shape]vals.Kind{
	ShapeBool:     vals.KindBool,
	ShapeInt:      vals.KindInt,
	ShapeFloat:    vals.KindFloat,
	ShapeString:   vals.KindString,
	ShapeBinary:   vals.KindBinary,
	ShapeDate:     vals.KindDate,
	ShapeDuration: vals.KindDuration,
	ShapeFilesize: vals.KindFilesize,
	ShapeRange:    vals.KindRange,
	ShapeRecord:   vals.KindRecord,
	ShapeClosure:  vals.KindClosure,
}

// Param is a positional parameter.
type Param struct {
	Name  string
	Desc  string
	Shape Shape
	// Default is the value of an absent optional parameter. If nil, the
	// value is nothing.
	Default vals.Value
}

// Flag is a named parameter.
type Flag struct {
	Long string
	// Short is the one-letter alias, or 0.
	Short rune
	// Shape of the value; ShapeNothing makes the flag a switch.
	Shape Shape
	Desc  string
	// Default is the value of an absent flag that takes a value.
	Default vals.Value
}

// IsSwitch reports whether the flag is a presence switch.
func (f *Flag) IsSwitch() bool { return f.Shape == ShapeNothing }

// Signature declares the parameters of a command and the shapes of its input
// and output. Signatures are frozen when a command is registered.
type Signature struct {
	Name        string
	Description string

	Req       []Param
	Opt       []Param
	RestParam *Param
	Flags     []Flag

	In  Shape
	Out Shape
}

// NewSignature starts a signature for the named command. Commands accept and
// produce anything until told otherwise.
func NewSignature(name string) *Signature {
	return &Signature{Name: name}
}

// Usage sets the description.
func (s *Signature) Usage(desc string) *Signature {
	s.Description = desc
	return s
}

// Required adds a required positional parameter.
func (s *Signature) Required(name string, shape Shape, desc string) *Signature {
	s.Req = append(s.Req, Param{Name: name, Desc: desc, Shape: shape})
	return s
}

// Optional adds an optional positional parameter that defaults to nothing.
func (s *Signature) Optional(name string, shape Shape, desc string) *Signature {
	s.Opt = append(s.Opt, Param{Name: name, Desc: desc, Shape: shape})
	return s
}

// OptionalDefault adds an optional positional parameter with a default.
func (s *Signature) OptionalDefault(name string, shape Shape, def vals.Value, desc string) *Signature {
	s.Opt = append(s.Opt, Param{Name: name, Desc: desc, Shape: shape, Default: def})
	return s
}

// Rest sets the parameter that takes the remaining positional arguments.
func (s *Signature) Rest(name string, shape Shape, desc string) *Signature {
	s.RestParam = &Param{Name: name, Desc: desc, Shape: shape}
	return s
}

// Named adds a flag that takes a value. A short of 0 means no alias.
func (s *Signature) Named(long string, short rune, shape Shape, desc string) *Signature {
	s.Flags = append(s.Flags, Flag{Long: long, Short: short, Shape: shape, Desc: desc})
	return s
}

// NamedDefault adds a flag that takes a value, with a default for when it is
// absent.
func (s *Signature) NamedDefault(long string, short rune, shape Shape, def vals.Value, desc string) *Signature {
	s.Flags = append(s.Flags, Flag{Long: long, Short: short, Shape: shape, Desc: desc, Default: def})
	return s
}

// Switch adds a presence switch. A short of 0 means no alias.
func (s *Signature) Switch(long string, short rune, desc string) *Signature {
	s.Flags = append(s.Flags, Flag{Long: long, Short: short, Shape: ShapeNothing, Desc: desc})
	return s
}

// Input sets the shape of pipeline input.
func (s *Signature) Input(shape Shape) *Signature {
	s.In = shape
	return s
}

// Output sets the shape of output.
func (s *Signature) Output(shape Shape) *Signature {
	s.Out = shape
	return s
}

// Returns a deep copy of the signature.
func (s *Signature) clone() *Signature {
	c := *s
	c.Req = append([]Param(nil), s.Req...)
	c.Opt = append([]Param(nil), s.Opt...)
	c.Flags = append([]Flag(nil), s.Flags...)
	if s.RestParam != nil {
		rest := *s.RestParam
		c.RestParam = &rest
	}
	return &c
}

// Finds a flag by its long name.
func (s *Signature) flag(long string) *Flag {
	for i := range s.Flags {
		if s.Flags[i].Long == long {
			return &s.Flags[i]
		}
	}
	return nil
}

// Finds a flag by its short alias.
func (s *Signature) shortFlag(short rune) *Flag {
	for i := range s.Flags {
		if s.Flags[i].Short != 0 && s.Flags[i].Short == short {
			return &s.Flags[i]
		}
	}
	return nil
}

// Finds flags whose long names start with prefix.
func (s *Signature) flagsWithPrefix(prefix string) []*Flag {
	var found []*Flag
	for i := range s.Flags {
		if strings.HasPrefix(s.Flags[i].Long, prefix) {
			found = append(found, &s.Flags[i])
		}
	}
	return found
}

// Help returns a multi-line usage summary of the command.
func (s *Signature) Help() string {
	var sb strings.Builder
	sb.WriteString(s.Name)
	for _, p := range s.Req {
		sb.WriteString(" <" + p.Name + ">")
	}
	for _, p := range s.Opt {
		sb.WriteString(" [" + p.Name + "]")
	}
	if s.RestParam != nil {
		sb.WriteString(" ..." + s.RestParam.Name)
	}
	if len(s.Flags) > 0 {
		sb.WriteString(" {flags}")
	}
	if s.Description != "" {
		sb.WriteString("\n\n" + s.Description)
	}
	writeParams := func(title string, ps []Param) {
		if len(ps) == 0 {
			return
		}
		sb.WriteString("\n\n" + title + ":")
		for _, p := range ps {
			sb.WriteString("\n  " + p.Name + " <" + p.Shape.String() + ">")
			if p.Default != nil {
				sb.WriteString(" (default: " + vals.Repr(p.Default) + ")")
			}
			if p.Desc != "" {
				sb.WriteString(": " + p.Desc)
			}
		}
	}
	positionals := append(append([]Param(nil), s.Req...), s.Opt...)
	if s.RestParam != nil {
		positionals = append(positionals, *s.RestParam)
	}
	writeParams("Parameters", positionals)
	if len(s.Flags) > 0 {
		sb.WriteString("\n\nFlags:")
		for _, f := range s.Flags {
			sb.WriteString("\n  --" + f.Long)
			if f.Short != 0 {
				sb.WriteString(", -" + string(f.Short))
			}
			if !f.IsSwitch() {
				sb.WriteString(" <" + f.Shape.String() + ">")
			}
			if f.Default != nil {
				sb.WriteString(" (default: " + vals.Repr(f.Default) + ")")
			}
			if f.Desc != "" {
				sb.WriteString(": " + f.Desc)
			}
		}
	}
	return sb.String()
}

// Used as the default value of absent parameters.
var nothing = vals.Nothing{Ranging: diag.NoRange}
