package podcast

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	attrKey = "$"
	textKey = "_"
)

var ErrEmptyDocument = errors.New("xml document has no root element")

// object is a JSON object that keeps keys in document order.
type object struct {
	keys   []string
	values map[string]any
}

func newObject() *object {
	return &object{values: map[string]any{}}
}

func (o *object) set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// add stores v under key, turning repeated keys into arrays.
func (o *object) add(key string, v any) {
	existing, ok := o.values[key]
	if !ok {
		o.set(key, v)
		return
	}

	if list, isList := existing.([]any); isList {
		o.values[key] = append(list, v)
		return
	}

	o.values[key] = []any{existing, v}
}

func (o *object) empty() bool {
	return len(o.keys) == 0
}

func (o *object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type frame struct {
	name string
	obj  *object
	text strings.Builder
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// value collapses a finished element: text-only elements become strings,
// empty elements become their (possibly blank) text.
func (f *frame) value() any {
	text := f.text.String()

	if strings.TrimSpace(text) != "" {
		f.obj.set(textKey, text)
	}

	if f.obj.empty() {
		return text
	}

	if len(f.obj.keys) == 1 && f.obj.keys[0] == textKey {
		return text
	}

	return f.obj
}

// XMLToJSON converts an XML document to JSON. Elements that occur once become
// single values and repeated siblings become arrays. Attributes go under "$"
// and text mixed with attributes or children under "_". Namespace prefixes
// are kept in names, as in "itunes:image".
func XMLToJSON(r io.Reader) ([]byte, error) {
	dec := xml.NewDecoder(r)
	dec.Entity = xml.HTMLEntity

	var (
		stack []*frame
		root  *object
	)

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			f := &frame{name: qualified(t.Name), obj: newObject()}

			if len(t.Attr) > 0 {
				attrs := newObject()
				for _, a := range t.Attr {
					attrs.set(qualified(a.Name), a.Value)
				}
				f.obj.set(attrKey, attrs)
			}

			stack = append(stack, f)

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("failed to parse xml: unexpected </%s>", qualified(t.Name))
			}

			f := stack[len(stack)-1]
			if f.name != qualified(t.Name) {
				return nil, fmt.Errorf("failed to parse xml: element <%s> closed by </%s>", f.name, qualified(t.Name))
			}
			stack = stack[:len(stack)-1]

			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("failed to parse xml: multiple root elements")
				}
				root = newObject()
				root.set(f.name, f.value())
				continue
			}

			stack[len(stack)-1].obj.add(f.name, f.value())
		}
	}

	if len(stack) > 0 {
		return nil, fmt.Errorf("failed to parse xml: unclosed <%s>", stack[len(stack)-1].name)
	}
	if root == nil {
		return nil, ErrEmptyDocument
	}

	return json.Marshal(root)
}
