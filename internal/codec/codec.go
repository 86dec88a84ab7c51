// Package codec encodes coordinate system data as tagged YAML trees.
//
// Each serializable type is handled by a Converter identified by a local YAML
// tag. Converters are collected in an immutable Registry, which dispatches on
// the Go type when encoding and on the tag when decoding. Untagged nodes are
// plain YAML values.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/philipparndt/goweldx/internal/lcs"
	"gopkg.in/yaml.v3"
)

// DefaultFileVersion is written when a File has no version
const DefaultFileVersion = "1.0.0"

var (
	// ErrUnknownTag is returned when a node carries a tag without converter
	ErrUnknownTag = errors.New("unknown tag")
	// ErrDuplicateTag is returned when two converters share a tag
	ErrDuplicateTag = errors.New("duplicate tag")
	// ErrMalformed is returned when a node does not have the expected structure
	ErrMalformed = errors.New("malformed node")
)

// Converter maps one Go type to and from a tagged YAML node
type Converter interface {
	// Tag is the local YAML tag, e.g. "!weldx/time/time-1.0.0"
	Tag() string
	// Handles reports whether v can be encoded by this converter
	Handles(v any) bool
	// Encode returns the untagged node for v. Nested values are encoded through r.
	Encode(r *Registry, v any) (*yaml.Node, error)
	// Decode builds the value from a node carrying Tag()
	Decode(r *Registry, n *yaml.Node) (any, error)
}

// Registry is an immutable set of converters
type Registry struct {
	converters []Converter
	byTag      map[string]Converter
}

// NewRegistry creates a registry from converters. Encoding tries converters in
// the given order.
func NewRegistry(converters ...Converter) (*Registry, error) {
	r := &Registry{byTag: make(map[string]Converter, len(converters))}
	for _, c := range converters {
		tag := c.Tag()
		if _, ok := r.byTag[tag]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTag, tag)
		}
		r.byTag[tag] = c
		r.converters = append(r.converters, c)
	}
	return r, nil
}

// BuiltinConverters returns the converters for time axes, coordinate systems,
// coordinate transformations and coordinate system hierarchies. The options
// are passed to every decoded coordinate system, e.g.
// lcs.WithoutConstructionChecks() to read back unchecked data.
func BuiltinConverters(opts ...lcs.Option) []Converter {
	return []Converter{
		timeConverter{},
		lcsConverter{opts: opts},
		transformationConverter{},
		hierarchyConverter{},
	}
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(BuiltinConverters()...)
	if err != nil {
		panic(err)
	}
	return r
})

// DefaultRegistry returns the registry of the built-in converters
func DefaultRegistry() *Registry {
	return defaultRegistry()
}

// Tags returns the registered tags, sorted
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.byTag))
	for t := range r.byTag {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// EncodeValue returns the node for v, tagged if a converter handles v
func (r *Registry) EncodeValue(v any) (*yaml.Node, error) {
	for _, c := range r.converters {
		if !c.Handles(v) {
			continue
		}
		n, err := c.Encode(r, v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c.Tag(), err)
		}
		n.Tag = c.Tag()
		return n, nil
	}

	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return n, nil
}

// DecodeValue converts a node into a Go value. Tagged nodes are decoded by
// their converter, plain mappings and sequences are decoded recursively.
func (r *Registry) DecodeValue(n *yaml.Node) (any, error) {
	if n.Kind == yaml.AliasNode {
		return r.DecodeValue(n.Alias)
	}

	if isLocalTag(n.Tag) {
		c, ok := r.byTag[n.Tag]
		if !ok {
			return nil, fmt.Errorf("%w: %s (line %d)", ErrUnknownTag, n.Tag, n.Line)
		}
		v, err := c.Decode(r, n)
		if err != nil {
			return nil, fmt.Errorf("decode %s (line %d): %w", n.Tag, n.Line, err)
		}
		return v, nil
	}

	switch n.Kind {
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := r.DecodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[n.Content[i].Value] = v
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := r.DecodeValue(c)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func isLocalTag(tag string) bool {
	return strings.HasPrefix(tag, "!") && !strings.HasPrefix(tag, "!!")
}

// File is a versioned tree of named values
type File struct {
	Version string
	Tree    map[string]any
}

// Marshal encodes a file. Tree keys are written in sorted order.
func (r *Registry) Marshal(f File) ([]byte, error) {
	version := f.Version
	if version == "" {
		version = DefaultFileVersion
	}

	keys := make([]string, 0, len(f.Tree))
	for k := range f.Tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tree := mapping()
	for _, k := range keys {
		v, err := r.EncodeValue(f.Tree[k])
		if err != nil {
			return nil, fmt.Errorf("tree entry %q: %w", k, err)
		}
		tree.Content = append(tree.Content, scalar(k), v)
	}

	root := mapping()
	root.Content = append(root.Content, scalar("version"), scalar(version), scalar("tree"), tree)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a file written by Marshal
func (r *Registry) Unmarshal(data []byte) (File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return File{}, fmt.Errorf("parse: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return File{}, fmt.Errorf("%w: expected a single document", ErrMalformed)
	}

	fields, err := mappingFields(doc.Content[0])
	if err != nil {
		return File{}, err
	}

	f := File{Tree: make(map[string]any)}
	if v, ok := fields["version"]; ok {
		f.Version = v.Value
	}
	tree, ok := fields["tree"]
	if !ok {
		return f, nil
	}
	entries, err := mappingFields(tree)
	if err != nil {
		return File{}, fmt.Errorf("tree: %w", err)
	}
	for k, n := range entries {
		v, err := r.DecodeValue(n)
		if err != nil {
			return File{}, fmt.Errorf("tree entry %q: %w", k, err)
		}
		f.Tree[k] = v
	}
	return f, nil
}

// WriteFile marshals f and writes it to path
func (r *Registry) WriteFile(path string, f File) error {
	data, err := r.Marshal(f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}

// ReadFile reads and unmarshals the file at path
func (r *Registry) ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("error reading %s: %w", path, err)
	}
	f, err := r.Unmarshal(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
