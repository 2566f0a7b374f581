// Package config is a dotted-path store over host configuration documents.
// Documents keep the key order and comments of the YAML they were read from.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/trunkgen/trunkgen/pkg/util"
)

var (
	ErrInvalidPath  = errors.New("invalid key path")
	ErrPathConflict = errors.New("key path crosses a non-map value")
	ErrNotMapping   = errors.New("document root is not a map")
)

// Document is a YAML host configuration addressed by dotted key paths such as
// "system.config.nac".
type Document struct {
	root *yaml.Node // always a document node wrapping a mapping
}

// New returns an empty document.
func New() *Document {
	return &Document{root: &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{newMapping()},
	}}
}

// Parse reads a document from YAML. An empty input yields an empty document.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return New(), nil
	}
	if root.Kind != yaml.DocumentNode || root.Content[0].Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}
	return &Document{root: &root}, nil
}

// Load reads the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return doc, nil
}

// Clone returns a deep copy; edits to the copy never reach d.
func (d *Document) Clone() *Document {
	return &Document{root: cloneNode(d.root)}
}

// Marshal renders the document as YAML with two-space indentation.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the document to path, renaming any existing file aside first.
func (d *Document) Save(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	return util.WriteFileWithBackup(path, data, 0644)
}

// Get returns the decoded value at path.
func (d *Document) Get(path string) (any, bool) {
	n := d.lookup(path)
	if n == nil {
		return nil, false
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// GetInt returns the integer at path. Non-integer values report false.
func (d *Document) GetInt(path string) (int, bool) {
	n := d.lookup(path)
	if n == nil || n.Kind != yaml.ScalarNode {
		return 0, false
	}
	var v int
	if err := n.Decode(&v); err != nil {
		return 0, false
	}
	return v, true
}

// GetString returns the scalar at path as written.
func (d *Document) GetString(path string) (string, bool) {
	n := d.lookup(path)
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return "", false
	}
	return n.Value, true
}

// GetBool returns the boolean at path.
func (d *Document) GetBool(path string) (bool, bool) {
	n := d.lookup(path)
	if n == nil || n.Kind != yaml.ScalarNode {
		return false, false
	}
	var v bool
	if err := n.Decode(&v); err != nil {
		return false, false
	}
	return v, true
}

// Has reports whether path resolves to a value.
func (d *Document) Has(path string) bool {
	return d.lookup(path) != nil
}

// Set stores value at path, creating intermediate maps as needed. Comments on
// a replaced value are kept.
func (d *Document) Set(path string, value any) error {
	keys, err := splitPath(path)
	if err != nil {
		return err
	}

	var node yaml.Node
	if err := node.Encode(value); err != nil {
		return fmt.Errorf("encoding value for %s: %w", path, err)
	}

	cur := d.mapping()
	for i, key := range keys[:len(keys)-1] {
		next := mapValue(cur, key)
		switch {
		case next == nil:
			next = newMapping()
			appendPair(cur, key, next)
		case next.Kind == yaml.ScalarNode && next.Tag == "!!null":
			*next = *newMapping()
		case next.Kind != yaml.MappingNode:
			return fmt.Errorf("%w: %s", ErrPathConflict, strings.Join(keys[:i+1], "."))
		}
		cur = next
	}

	last := keys[len(keys)-1]
	if existing := mapValue(cur, last); existing != nil {
		node.HeadComment = existing.HeadComment
		node.LineComment = existing.LineComment
		node.FootComment = existing.FootComment
		*existing = node
		return nil
	}
	appendPair(cur, last, &node)
	return nil
}

func (d *Document) mapping() *yaml.Node {
	return d.root.Content[0]
}

func (d *Document) lookup(path string) *yaml.Node {
	keys, err := splitPath(path)
	if err != nil {
		return nil
	}
	cur := d.mapping()
	for _, key := range keys {
		if cur.Kind != yaml.MappingNode {
			return nil
		}
		if cur = mapValue(cur, key); cur == nil {
			return nil
		}
	}
	return cur
}

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	keys := strings.Split(path, ".")
	for _, k := range keys {
		if k == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, path)
		}
	}
	return keys, nil
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func mapValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func appendPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

func cloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = cloneNode(child)
		}
	}
	return &c
}
