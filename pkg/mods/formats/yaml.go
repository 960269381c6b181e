package formats

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/vals"
)

// FromYAML decodes YAML. Mappings become records with fields in document
// order. A stream of several documents becomes a list.
func FromYAML(data []byte) (vals.Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []vals.Value
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.BadValue{What: "YAML input", Valid: "valid YAML", Actual: err.Error()}
		}
		v, err := fromNode(&node)
		if err != nil {
			return nil, err
		}
		docs = append(docs, v)
	}
	switch len(docs) {
	case 0:
		return vals.Nothing{Ranging: diag.NoRange}, nil
	case 1:
		return docs[0], nil
	}
	return vals.NewList(docs...), nil
}

func fromNode(node *yaml.Node) (vals.Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return vals.Nothing{Ranging: diag.NoRange}, nil
		}
		return fromNode(node.Content[0])
	case yaml.AliasNode:
		return fromNode(node.Alias)
	case yaml.SequenceNode:
		vs := make([]vals.Value, len(node.Content))
		for i, elem := range node.Content {
			v, err := fromNode(elem)
			if err != nil {
				return nil, err
			}
			vs[i] = v
		}
		return vals.NewList(vs...), nil
	case yaml.MappingNode:
		var b vals.RecordBuilder
		for i := 0; i+1 < len(node.Content); i += 2 {
			v, err := fromNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			b.Add(node.Content[i].Value, v)
		}
		return b.Record()
	case yaml.ScalarNode:
		return fromScalar(node)
	}
	return nil, errs.BadValue{What: "YAML node", Valid: "scalar, sequence or mapping", Actual: node.Tag}
}

func fromScalar(node *yaml.Node) (vals.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return vals.Nothing{Ranging: diag.NoRange}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, scalarError(node)
		}
		return vals.Bool{Val: b, Ranging: diag.NoRange}, nil
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return nil, scalarError(node)
		}
		return vals.Int{Val: n, Ranging: diag.NoRange}, nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, scalarError(node)
		}
		return vals.Float{Val: f, Ranging: diag.NoRange}, nil
	case "!!timestamp":
		var t time.Time
		if err := node.Decode(&t); err != nil {
			return nil, scalarError(node)
		}
		return vals.Date{Val: t, Ranging: diag.NoRange}, nil
	case "!!binary":
		bs, err := base64.StdEncoding.DecodeString(node.Value)
		if err != nil {
			return nil, scalarError(node)
		}
		return vals.Binary{Val: bs, Ranging: diag.NoRange}, nil
	}
	return vals.String{Val: node.Value, Ranging: diag.NoRange}, nil
}

func scalarError(node *yaml.Node) error {
	return errs.BadValue{What: "YAML " + node.ShortTag(), Valid: "valid scalar", Actual: strconv.Quote(node.Value)}
}

// ToYAML encodes a value as a YAML document.
func ToYAML(v vals.Value) ([]byte, error) {
	node, err := toNode(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func toNode(v vals.Value) (*yaml.Node, error) {
	switch v := v.(type) {
	case nil, vals.Nothing:
		return scalar("!!null", "null"), nil
	case vals.Bool:
		return scalar("!!bool", strconv.FormatBool(v.Val)), nil
	case vals.Int:
		return scalar("!!int", strconv.FormatInt(v.Val, 10)), nil
	case vals.Float:
		return scalar("!!float", strconv.FormatFloat(v.Val, 'g', -1, 64)), nil
	case vals.String:
		return scalar("!!str", v.Val), nil
	case vals.Date:
		return scalar("!!timestamp", v.Val.Format(time.RFC3339Nano)), nil
	case vals.Duration:
		return scalar("!!int", strconv.FormatInt(int64(v.Val), 10)), nil
	case vals.Filesize:
		return scalar("!!int", strconv.FormatInt(v.Val, 10)), nil
	case vals.Binary:
		return scalar("!!binary", base64.StdEncoding.EncodeToString(v.Val)), nil
	case vals.Range:
		if !v.Bounded {
			return nil, errs.BadValue{What: "range in YAML", Valid: "bounded range", Actual: vals.Repr(v)}
		}
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for next := v.Iterator(); ; {
			elem, ok := next()
			if !ok {
				break
			}
			child, err := toNode(elem)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case vals.List:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, elem := range v.Vals {
			child, err := toNode(elem)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case vals.Record:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for i := 0; i < v.Len(); i++ {
			col, field := v.At(i)
			child, err := toNode(field)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, scalar("!!str", col), child)
		}
		return node, nil
	}
	return nil, errs.TypeMismatch{What: "value in YAML", Valid: "data value", Got: vals.KindName(v)}
}
