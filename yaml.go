package asmutable

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalYAML encodes the enumerable own properties as an ordered mapping.
func (o *Object) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range o.props.keys {
		d := o.props.props[k]
		if !d.Enumerable {
			continue
		}
		value := &yaml.Node{}
		if err := value.Encode(d.Value); err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(k)},
			value)
	}
	return n, nil
}

// MarshalYAML encodes the elements as a sequence, with holes as null.
func (a *Array) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for i, v := range a.Values() {
		value := &yaml.Node{}
		if err := value.Encode(v); err != nil {
			return nil, fmt.Errorf("encode [%d]: %w", i, err)
		}
		n.Content = append(n.Content, value)
	}
	return n, nil
}

// ErrAliasExpansion is returned by ParseYAML when aliases expand to far
// more nodes than the document spells out.
var ErrAliasExpansion = errors.New("asmutable: excessive yaml aliasing")

// ParseYAML decodes the first YAML document in data into *Object and
// *Array containers, keeping mapping keys in document order. An empty
// document decodes to nil. Every alias is expanded into its own copy of the
// anchored value; expansion is bounded the way yaml.v3 bounds it when
// decoding into Go values.
func ParseYAML(data []byte) (interface{}, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	var d yamlDecoder
	v, err := d.fromNode(&doc, 0)
	if err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return v, nil
}

const (
	aliasRatioRangeLow  = 400_000
	aliasRatioRangeHigh = 4_000_000
	aliasRatioRange     = float64(aliasRatioRangeHigh - aliasRatioRangeLow)
)

// allowedAliasRatio is the share of decoded nodes that may come from alias
// expansion, shrinking as documents grow.
func allowedAliasRatio(decodeCount int) float64 {
	switch {
	case decodeCount <= aliasRatioRangeLow:
		return 0.99
	case decodeCount >= aliasRatioRangeHigh:
		return 0.10
	}
	return 0.99 - 0.89*(float64(decodeCount-aliasRatioRangeLow)/aliasRatioRange)
}

type yamlDecoder struct {
	decodeCount int
	aliasCount  int
	aliasDepth  int
}

func (d *yamlDecoder) fromNode(n *yaml.Node, depth int) (interface{}, error) {
	if depth > DefaultMaxDepth {
		return nil, ErrTooDeep
	}
	d.decodeCount++
	if d.aliasDepth > 0 {
		d.aliasCount++
	}
	if d.aliasCount > 100 && d.decodeCount > 1000 &&
		float64(d.aliasCount)/float64(d.decodeCount) > allowedAliasRatio(d.decodeCount) {
		return nil, fmt.Errorf("line %d: %w", n.Line, ErrAliasExpansion)
	}
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.fromNode(n.Content[0], depth)
	case yaml.AliasNode:
		d.aliasDepth++
		defer func() { d.aliasDepth-- }()
		return d.fromNode(n.Alias, depth+1)
	case yaml.MappingNode:
		o := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: unsupported non-scalar mapping key", k.Line)
			}
			v, err := d.fromNode(n.Content[i+1], depth+1)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", k.Value, err)
			}
			o.Set(Key(k.Value), v)
		}
		return o, nil
	case yaml.SequenceNode:
		a := NewArray()
		for i, e := range n.Content {
			v, err := d.fromNode(e, depth+1)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			a.Append(v)
		}
		return a, nil
	case yaml.ScalarNode:
		var v interface{}
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported node kind %v", n.Line, n.Kind)
}
