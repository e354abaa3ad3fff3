package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

var ErrNoRootElement = errors.New("xml document has no root element")

// element collects an open element until its end tag.
type element struct {
	name     string
	attrs    []Entry
	order    []string
	children map[string][]Node
	text     strings.Builder
}

func newElement(start xml.StartElement) *element {
	e := &element{
		name:     start.Name.Local,
		children: map[string][]Node{},
	}
	for _, attr := range start.Attr {
		key := "@" + attr.Name.Local
		if attr.Name.Space == "xmlns" {
			key = "@xmlns:" + attr.Name.Local
		}
		e.attrs = append(e.attrs, Entry{Key: key, Value: NewText(attr.Value)})
	}
	return e
}

func (e *element) addChild(name string, value Node) {
	if _, exists := e.children[name]; !exists {
		e.order = append(e.order, name)
	}
	e.children[name] = append(e.children[name], value)
}

func (e *element) node(forced map[string]struct{}) Node {
	text := strings.TrimSpace(e.text.String())
	if len(e.attrs) == 0 && len(e.order) == 0 {
		if text == "" {
			return NewNull()
		}
		return NewText(text)
	}

	entries := make([]Entry, 0, len(e.attrs)+len(e.order)+1)
	entries = append(entries, e.attrs...)
	for _, name := range e.order {
		entries = append(entries, Entry{
			Key:   name,
			Value: collapse(name, e.children[name], forced),
		})
	}
	if text != "" {
		entries = append(entries, Entry{Key: "#text", Value: NewText(text)})
	}
	return NewMapping(entries...)
}

func collapse(name string, values []Node, forced map[string]struct{}) Node {
	if _, isForced := forced[name]; isForced || len(values) > 1 {
		return NewSequence(values...)
	}
	return values[0]
}

// Convert decodes an XML document into a tree rooted at a mapping from the
// root element name to its value.
//
// Elements named in forced always decode as sequences, even when they occur
// once. Any other element is a single value when it occurs once and a
// sequence when it repeats.
func Convert(raw []byte, forced ...string) (Node, error) {
	forcedSet := make(map[string]struct{}, len(forced))
	for _, name := range forced {
		forcedSet[name] = struct{}{}
	}

	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.CharsetReader = charset.NewReaderLabel

	var stack []*element
	root := &element{children: map[string][]Node{}}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Node{}, fmt.Errorf("decode xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			stack = append(stack, newElement(t))
		case xml.EndElement:
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			parent := root
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			parent.addChild(current.name, current.node(forcedSet))
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if len(root.order) == 0 {
		return Node{}, ErrNoRootElement
	}
	if len(stack) > 0 {
		return Node{}, fmt.Errorf("decode xml: unclosed element <%s>", stack[len(stack)-1].name)
	}

	return root.node(forcedSet), nil
}
