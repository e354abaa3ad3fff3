package xmltree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MarshalJSON encodes null as null, text as a string, a mapping as an object
// with its keys in document order and a sequence as an array.
func (n Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	err := n.writeJSON(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n Node) writeJSON(buf *bytes.Buffer) error {
	switch n.kind {
	case Null:
		buf.WriteString("null")
	case Text:
		encoded, err := json.Marshal(n.text)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case Mapping:
		buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encoded, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(encoded)
			buf.WriteByte(':')
			err = n.values[k].writeJSON(buf)
			if err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case Sequence:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			err := item.writeJSON(buf)
			if err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("xmltree: cannot encode node of %s", n.kind)
	}
	return nil
}

// UnmarshalJSON is the inverse of MarshalJSON, it keeps object key order.
// Numbers and booleans become text.
func (n *Node) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	decoded, err := readJSON(decoder)
	if err != nil {
		return err
	}
	if _, err := decoder.Token(); err != io.EOF {
		return fmt.Errorf("xmltree: trailing data after json value")
	}
	*n = decoded
	return nil
}

func readJSON(decoder *json.Decoder) (Node, error) {
	token, err := decoder.Token()
	if err != nil {
		return Node{}, err
	}

	switch t := token.(type) {
	case nil:
		return NewNull(), nil
	case string:
		return NewText(t), nil
	case json.Number:
		return NewText(t.String()), nil
	case bool:
		if t {
			return NewText("true"), nil
		}
		return NewText("false"), nil
	case json.Delim:
		switch t {
		case '{':
			var entries []Entry
			for decoder.More() {
				keyToken, err := decoder.Token()
				if err != nil {
					return Node{}, err
				}
				key, ok := keyToken.(string)
				if !ok {
					return Node{}, fmt.Errorf("xmltree: unexpected object key %v", keyToken)
				}
				value, err := readJSON(decoder)
				if err != nil {
					return Node{}, err
				}
				entries = append(entries, Entry{Key: key, Value: value})
			}
			_, err := decoder.Token()
			if err != nil {
				return Node{}, err
			}
			return NewMapping(entries...), nil
		case '[':
			items := []Node{}
			for decoder.More() {
				item, err := readJSON(decoder)
				if err != nil {
					return Node{}, err
				}
				items = append(items, item)
			}
			_, err := decoder.Token()
			if err != nil {
				return Node{}, err
			}
			return NewSequence(items...), nil
		}
	}
	return Node{}, fmt.Errorf("xmltree: unexpected json token %v", token)
}
