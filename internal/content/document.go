package content

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"hkm-site/internal/content/store"

	"github.com/buger/jsonparser"
)

// Document is one content document as stored, a JSON object.
type Document struct {
	key string
	raw []byte
}

func NewDocument(key string, raw []byte) (*Document, error) {
	_, typ, _, err := jsonparser.Get(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", key, err)
	}
	if typ != jsonparser.Object {
		return nil, fmt.Errorf("%w: %s is %s", store.ErrNotObject, key, typ)
	}

	return &Document{key: key, raw: raw}, nil
}

func (d *Document) Key() string {
	return d.key
}

func (d *Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

func (d *Document) Decode(v any) error {
	if err := json.Unmarshal(d.raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", d.key, err)
	}
	return nil
}

// DecodeFields decodes v one top-level field at a time. Fields that do not
// fit are left untouched and reported, the rest are kept.
func (d *Document) DecodeFields(v any) []error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(d.raw, &fields); err != nil {
		return []error{fmt.Errorf("failed to decode %s: %w", d.key, err)}
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		single, err := json.Marshal(map[string]json.RawMessage{name: fields[name]})
		if err == nil {
			err = json.Unmarshal(single, v)
		}
		if err != nil {
			errs = append(errs, &FieldError{Key: d.key, Field: name, Err: err})
		}
	}

	return errs
}

// FieldError is one top-level field that did not fit its typed shape.
type FieldError struct {
	Key   string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("failed to decode %s.%s: %v", e.Key, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Lookup resolves a dotted path such as "hero.title" or "slides.0.title".
// Strings come back unescaped, numbers and booleans as their literal, objects
// and arrays as JSON. Missing values and null are reported as undefined.
func (d *Document) Lookup(path string) (string, bool) {
	value, typ, ok := d.lookupRaw(path)
	if !ok {
		return "", false
	}

	switch typ {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return "", false
		}
		return s, true
	case jsonparser.Null, jsonparser.NotExist, jsonparser.Unknown:
		return "", false
	default:
		return string(value), true
	}
}

func (d *Document) Has(path string) bool {
	_, ok := d.Lookup(path)
	return ok
}

func (d *Document) lookupRaw(path string) ([]byte, jsonparser.ValueType, bool) {
	if path == "" {
		return nil, jsonparser.NotExist, false
	}

	cur := d.raw
	curType := jsonparser.Object

	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return nil, jsonparser.NotExist, false
		}

		key := seg
		switch curType {
		case jsonparser.Object:
		case jsonparser.Array:
			if _, err := strconv.Atoi(seg); err != nil {
				return nil, jsonparser.NotExist, false
			}
			key = "[" + seg + "]"
		default:
			return nil, jsonparser.NotExist, false
		}

		value, typ, _, err := jsonparser.Get(cur, key)
		if err != nil || typ == jsonparser.NotExist {
			return nil, jsonparser.NotExist, false
		}

		cur, curType = value, typ
	}

	return cur, curType, true
}

// Fields lists the top-level field names.
func (d *Document) Fields() []string {
	var fields []string
	_ = jsonparser.ObjectEach(d.raw, func(key []byte, _ []byte, _ jsonparser.ValueType, _ int) error {
		fields = append(fields, string(key))
		return nil
	})
	return fields
}

// Items decodes the canonical {"items":[...]} collection shape item by item.
// Items that do not decode are skipped and reported. Any other shape is
// reported as absent.
func Items[T any](d *Document) ([]T, []error, bool) {
	if d == nil {
		return nil, nil, false
	}

	value, typ, _, err := jsonparser.Get(d.raw, "items")
	if err != nil || typ != jsonparser.Array {
		return nil, nil, false
	}

	items := []T{}
	var errs []error
	i := 0
	_, err = jsonparser.ArrayEach(value, func(raw []byte, typ jsonparser.ValueType, _ int, _ error) {
		defer func() { i++ }()

		raw = literal(raw, typ)

		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			errs = append(errs, fmt.Errorf("failed to decode %s.items.%d: %w", d.key, i, err))
			return
		}
		items = append(items, item)
	})
	if err != nil {
		return nil, []error{fmt.Errorf("failed to decode %s.items: %w", d.key, err)}, false
	}

	return items, errs, true
}

// RawItems returns the undecoded entries of the {"items":[...]} array. A
// document without items yields none, items of any other shape is an error.
func RawItems(d *Document) ([]json.RawMessage, error) {
	value, typ, _, err := jsonparser.Get(d.raw, "items")
	if typ == jsonparser.NotExist || typ == jsonparser.Null {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s.items: %w", d.key, err)
	}
	if typ != jsonparser.Array {
		return nil, fmt.Errorf("%s.items is %s, not an array", d.key, typ)
	}

	var items []json.RawMessage
	_, err = jsonparser.ArrayEach(value, func(raw []byte, typ jsonparser.ValueType, _ int, _ error) {
		items = append(items, append(json.RawMessage(nil), literal(raw, typ)...))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s.items: %w", d.key, err)
	}

	return items, nil
}

// literal restores the quotes jsonparser strips from string values.
func literal(raw []byte, typ jsonparser.ValueType) []byte {
	if typ != jsonparser.String {
		return raw
	}
	out := make([]byte, 0, len(raw)+2)
	out = append(out, '"')
	out = append(out, raw...)
	return append(out, '"')
}
