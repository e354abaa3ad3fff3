// Package xmltree holds the decoded form of a moderngov XML document: a tree of
// mappings, sequences and text leaves.
package xmltree

import (
	"strconv"
	"strings"
)

type Kind int

const (
	Null Kind = iota
	Text
	Mapping
	Sequence
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Text:
		return "text"
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Node is a tagged variant, exactly one of text, keys/values or items is
// meaningful depending on kind. Nodes are immutable once built.
type Node struct {
	kind   Kind
	text   string
	keys   []string
	values map[string]Node
	items  []Node
}

// Entry is a key/value pair of a mapping, in document order.
type Entry struct {
	Key   string
	Value Node
}

func NewNull() Node {
	return Node{kind: Null}
}

func NewText(text string) Node {
	return Node{kind: Text, text: text}
}

// NewMapping builds a mapping, a repeated key keeps its first position but
// takes the last value.
func NewMapping(entries ...Entry) Node {
	n := Node{
		kind:   Mapping,
		keys:   make([]string, 0, len(entries)),
		values: make(map[string]Node, len(entries)),
	}
	for _, e := range entries {
		if _, exists := n.values[e.Key]; !exists {
			n.keys = append(n.keys, e.Key)
		}
		n.values[e.Key] = e.Value
	}
	return n
}

func NewSequence(items ...Node) Node {
	if items == nil {
		items = []Node{}
	}
	return Node{kind: Sequence, items: items}
}

func (n Node) Kind() Kind {
	return n.kind
}

func (n Node) IsNull() bool {
	return n.kind == Null
}

// IsEmpty is true for null nodes and mappings or sequences without contents.
func (n Node) IsEmpty() bool {
	switch n.kind {
	case Null:
		return true
	case Mapping:
		return len(n.keys) == 0
	case Sequence:
		return len(n.items) == 0
	}
	return false
}

// String returns the text of a leaf, the `#text` of a mapping, and "" for
// anything else.
func (n Node) String() string {
	switch n.kind {
	case Text:
		return n.text
	case Mapping:
		return n.values["#text"].String()
	}
	return ""
}

// Keys returns the keys of a mapping in document order.
func (n Node) Keys() []string {
	if n.kind != Mapping {
		return nil
	}
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Entries returns the key/value pairs of a mapping in document order.
func (n Node) Entries() []Entry {
	if n.kind != Mapping {
		return nil
	}
	out := make([]Entry, len(n.keys))
	for i, k := range n.keys {
		out[i] = Entry{Key: k, Value: n.values[k]}
	}
	return out
}

// Get looks up a key of a mapping.
func (n Node) Get(key string) (Node, bool) {
	if n.kind != Mapping {
		return Node{}, false
	}
	v, ok := n.values[key]
	return v, ok
}

// Field returns the text under key, "" when missing.
func (n Node) Field(key string) string {
	v, _ := n.Get(key)
	return v.String()
}

// Lookup follows a path of mapping keys.
func (n Node) Lookup(path ...string) (Node, bool) {
	current := n
	for _, key := range path {
		next, ok := current.Get(key)
		if !ok {
			return Node{}, false
		}
		current = next
	}
	return current, true
}

// Items returns a copy of the elements of a sequence.
func (n Node) Items() []Node {
	if n.kind != Sequence {
		return nil
	}
	out := make([]Node, len(n.items))
	copy(out, n.items)
	return out
}

// List views a node as a sequence: a sequence gives its items, null gives
// nothing and any other node is a one element list. It does not change the
// node itself.
func (n Node) List() []Node {
	switch n.kind {
	case Sequence:
		return n.Items()
	case Null:
		return nil
	}
	return []Node{n}
}

// Len is the number of keys of a mapping or items of a sequence.
func (n Node) Len() int {
	switch n.kind {
	case Mapping:
		return len(n.keys)
	case Sequence:
		return len(n.items)
	}
	return 0
}

// Int parses the text under key as a base 10 integer.
func (n Node) Int(key string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(n.Field(key)), 10, 64)
}

// Equal reports whether two trees have the same kinds, order and contents.
func (n Node) Equal(other Node) bool {
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case Text:
		return n.text == other.text
	case Mapping:
		if len(n.keys) != len(other.keys) {
			return false
		}
		for i, k := range n.keys {
			if other.keys[i] != k {
				return false
			}
			if !n.values[k].Equal(other.values[k]) {
				return false
			}
		}
	case Sequence:
		if len(n.items) != len(other.items) {
			return false
		}
		for i := range n.items {
			if !n.items[i].Equal(other.items[i]) {
				return false
			}
		}
	}
	return true
}
