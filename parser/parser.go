// Package parser loads specification documents into the spec object model.
// Documents are YAML; since JSON is a subset of YAML, the original JSON
// document format is accepted unchanged. The parser preserves declaration
// order of enumerations, packets, options, and fields (wire order), and
// attaches source positions to every element for error reporting.
package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/structspec/structspec/reporter"
	"github.com/structspec/structspec/spec"
)

// Parse reads a specification document from r. Shape problems are reported
// through the handler; like the layout compiler, the parser keeps going
// after an error where it can, so a document surfaces all of its problems
// in one pass. The returned Specification is non-nil only when the
// document parsed cleanly.
func Parse(filename string, r io.Reader, handler *reporter.Handler) (*spec.Specification, error) {
	if handler == nil {
		handler = reporter.NewHandler(nil)
	}
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if err == io.EOF {
			err = fmt.Errorf("document is empty")
		}
		if herr := handler.HandleErrorf(spec.UnknownPos(filename), "%v", err); herr != nil {
			return nil, herr
		}
		return nil, handler.Error()
	}
	p := &parseState{filename: filename, h: handler, ok: true}
	doc := p.specification(unwrap(&root))
	if p.aborted != nil {
		return nil, p.aborted
	}
	if !p.ok {
		return nil, reporter.ErrInvalidSpec
	}
	return doc, nil
}

type parseState struct {
	filename string
	h        *reporter.Handler
	ok       bool
	aborted  error
}

func (p *parseState) pos(n *yaml.Node) spec.SourcePos {
	if n == nil {
		return spec.UnknownPos(p.filename)
	}
	return spec.SourcePos{Filename: p.filename, Line: n.Line, Col: n.Column}
}

func (p *parseState) errf(n *yaml.Node, format string, args ...any) {
	p.ok = false
	if p.aborted != nil {
		return
	}
	p.aborted = p.h.HandleErrorf(p.pos(n), format, args...)
}

// unwrap steps through document and alias indirection to the content node.
func unwrap(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch {
		case n.Kind == yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case n.Kind == yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

func (p *parseState) specification(n *yaml.Node) *spec.Specification {
	if n == nil || n.Kind != yaml.MappingNode {
		p.errf(n, "specification document must be a mapping")
		return nil
	}
	doc := &spec.Specification{Pos: p.pos(n)}
	p.eachPair(n, func(key string, keyNode, val *yaml.Node) {
		switch key {
		case "title":
			doc.Title = p.scalar(val, key)
		case "description":
			doc.Description = p.scalar(val, key)
		case "version":
			doc.Version = p.scalar(val, key)
		case "date":
			doc.Date = p.scalar(val, key)
		case "author":
			doc.Author = p.scalar(val, key)
		case "documentation":
			doc.Documentation = p.scalar(val, key)
		case "metadata":
			doc.Metadata = p.scalar(val, key)
		case "endianness":
			doc.Endianness = p.endianness(val)
		case "enums":
			p.eachPair(val, func(name string, nameNode, body *yaml.Node) {
				doc.Enums = append(doc.Enums, p.enumeration(name, nameNode, body))
			})
		case "packets":
			p.eachPair(val, func(name string, nameNode, body *yaml.Node) {
				doc.Packets = append(doc.Packets, p.packet(name, nameNode, body))
			})
		default:
			p.h.HandleWarning(p.pos(keyNode), fmt.Errorf("unrecognized document attribute %q", key))
		}
	})
	return doc
}

func (p *parseState) enumeration(name string, nameNode, n *yaml.Node) *spec.Enumeration {
	e := &spec.Enumeration{Name: name, Pos: p.pos(nameNode)}
	p.eachPair(n, func(key string, keyNode, val *yaml.Node) {
		switch key {
		case "title":
			e.Title = p.scalar(val, key)
		case "description":
			e.Description = p.scalar(val, key)
		case "type":
			e.Type = p.scalar(val, key)
		case "options":
			p.eachPair(val, func(optName string, optNameNode, body *yaml.Node) {
				e.Options = append(e.Options, p.option(optName, optNameNode, body))
			})
		default:
			p.h.HandleWarning(p.pos(keyNode), fmt.Errorf("unrecognized enumeration attribute %q", key))
		}
	})
	return e
}

func (p *parseState) option(name string, nameNode, n *yaml.Node) *spec.Option {
	o := &spec.Option{Name: name, Pos: p.pos(nameNode)}
	n = unwrap(n)
	if n == nil || isNull(n) {
		// option with neither value nor metadata; value is implicit
		return o
	}
	p.eachPair(n, func(key string, keyNode, val *yaml.Node) {
		switch key {
		case "title":
			o.Title = p.scalar(val, key)
		case "description":
			o.Description = p.scalar(val, key)
		case "type":
			o.Type = p.scalar(val, key)
		case "value":
			o.Value = p.value(val)
		default:
			p.h.HandleWarning(p.pos(keyNode), fmt.Errorf("unrecognized option attribute %q", key))
		}
	})
	return o
}

func (p *parseState) packet(name string, nameNode, n *yaml.Node) *spec.Packet {
	pkt := &spec.Packet{Name: name, Pos: p.pos(nameNode)}
	p.eachPair(n, func(key string, keyNode, val *yaml.Node) {
		switch key {
		case "title":
			pkt.Title = p.scalar(val, key)
		case "description":
			pkt.Description = p.scalar(val, key)
		case "endianness":
			pkt.Endianness = p.endianness(val)
		case "structure":
			p.eachPair(val, func(fieldName string, fieldNameNode, body *yaml.Node) {
				pkt.Fields = append(pkt.Fields, p.field(fieldName, fieldNameNode, body))
			})
		default:
			p.h.HandleWarning(p.pos(keyNode), fmt.Errorf("unrecognized packet attribute %q", key))
		}
	})
	return pkt
}

func (p *parseState) field(name string, nameNode, n *yaml.Node) *spec.Field {
	f := &spec.Field{Name: name, Pos: p.pos(nameNode)}
	p.eachPair(n, func(key string, keyNode, val *yaml.Node) {
		switch key {
		case "title":
			f.Title = p.scalar(val, key)
		case "description":
			f.Description = p.scalar(val, key)
		case "type":
			f.Type = p.scalar(val, key)
		case "endianness":
			f.Endianness = p.endianness(val)
		case "count":
			f.Count = p.attr(val, key)
		case "size":
			f.Size = p.attr(val, key)
		default:
			p.h.HandleWarning(p.pos(keyNode), fmt.Errorf("unrecognized field attribute %q", key))
		}
	})
	if f.Type == "" {
		p.errf(nameNode, "field %q has no type", name)
	}
	return f
}

// attr parses a count/size attribute: a non-negative integer literal or a
// "#/..." document reference.
func (p *parseState) attr(n *yaml.Node, key string) *spec.Attr {
	n = unwrap(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		p.errf(n, "%s must be an integer or a reference", key)
		return nil
	}
	a := &spec.Attr{Pos: p.pos(n)}
	if strings.HasPrefix(n.Value, "#/") {
		a.Ref = n.Value
		return a
	}
	v, err := strconv.ParseInt(n.Value, 0, 64)
	if err != nil {
		p.errf(n, "%s %q is neither an integer nor a \"#/\" reference", key, n.Value)
		return nil
	}
	if v < 0 {
		p.errf(n, "%s must not be negative, got %d", key, v)
		return nil
	}
	a.Lit = v
	return a
}

// value parses an enumeration option literal, classifying it lexically by
// its YAML tag: integer, float, boolean, or string.
func (p *parseState) value(n *yaml.Node) *spec.Value {
	n = unwrap(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		p.errf(n, "value must be a scalar literal")
		return nil
	}
	v := &spec.Value{Raw: n.Value}
	switch n.ShortTag() {
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			p.errf(n, "invalid integer literal %q", n.Value)
			return nil
		}
		v.Kind, v.Int = spec.ValueInteger, i
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			p.errf(n, "invalid float literal %q", n.Value)
			return nil
		}
		v.Kind, v.Float = spec.ValueFloat, f
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(n.Value))
		if err != nil {
			p.errf(n, "invalid boolean literal %q", n.Value)
			return nil
		}
		v.Kind, v.Bool = spec.ValueBoolean, b
	default:
		v.Kind, v.Str = spec.ValueString, n.Value
	}
	return v
}

func (p *parseState) endianness(n *yaml.Node) spec.Endianness {
	s := p.scalar(n, "endianness")
	if s == "" {
		return spec.EndianUnspecified
	}
	e, ok := spec.ParseEndianness(s)
	if !ok {
		p.errf(n, "endianness must be one of big, little, network, or native; got %q", s)
		return spec.EndianUnspecified
	}
	return e
}

func (p *parseState) scalar(n *yaml.Node, key string) string {
	n = unwrap(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		p.errf(n, "%s must be a scalar", key)
		return ""
	}
	return n.Value
}

// eachPair iterates a mapping node's key/value pairs in document order.
func (p *parseState) eachPair(n *yaml.Node, fn func(key string, keyNode, val *yaml.Node)) {
	n = unwrap(n)
	if n == nil || n.Kind != yaml.MappingNode {
		p.errf(n, "expected a mapping")
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		fn(n.Content[i].Value, n.Content[i], n.Content[i+1])
	}
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}
