// Package jsondoc implements an order-preserving JSON document model:
// decoding, two-space indented encoding, force/defaults deep merges and
// conventional package.json key ordering.
//
// Values held in a document are *Object, []any, string, json.Number, bool
// and nil. Numbers keep their literal text.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
)

// Sentinel errors for decoding.
var (
	ErrTrailingData    = errors.New("unexpected data after top-level value")
	ErrUnsupportedType = errors.New("unsupported value type")
)

// Object is a JSON object that remembers key insertion order.
// Setting an existing key keeps its position.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the keys in document order.
func (o *Object) Keys() []string { return slices.Clone(o.keys) }

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]

	return v, ok
}

// Set stores value under key, appending the key when it is new.
func (o *Object) Set(key string, value any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}

	o.values[key] = value
}

// Delete removes key.
func (o *Object) Delete(key string) {
	if _, exists := o.values[key]; !exists {
		return
	}

	delete(o.values, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
}

// Parse decodes a single JSON value preserving object key order.
// Duplicate keys keep the first position and the last value.
func Parse(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	value, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}

	_, tokErr := dec.Token()
	if !errors.Is(tokErr, io.EOF) {
		return nil, ErrTrailingData
	}

	return value, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	switch typed := tok.(type) {
	case json.Delim:
		switch typed {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("decode json: unexpected delimiter %q", typed)
		}
	default:
		return typed, nil
	}
}

func decodeObject(dec *json.Decoder) (*Object, error) {
	obj := NewObject()

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}

		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("decode json: object key %v is not a string", keyTok)
		}

		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}

		obj.Set(key, value)
	}

	// Closing brace.
	_, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	return obj, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	arr := []any{}

	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}

		arr = append(arr, value)
	}

	// Closing bracket.
	_, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	return arr, nil
}

// Marshal encodes value with two-space indentation, objects in key order.
// Empty objects and arrays are written as {} and [].
func Marshal(value any) ([]byte, error) {
	var buf bytes.Buffer

	err := encodeValue(&buf, value, 0)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

const indentUnit = "  "

func writeIndent(buf *bytes.Buffer, depth int) {
	for range depth {
		buf.WriteString(indentUnit)
	}
}

func encodeValue(buf *bytes.Buffer, value any, depth int) error {
	switch typed := value.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(typed))
	case json.Number:
		buf.WriteString(typed.String())
	case string:
		return encodeString(buf, typed)
	case *Object:
		return encodeObject(buf, typed, depth)
	case []any:
		return encodeArray(buf, typed, depth)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, value)
	}

	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(s)
	if err != nil {
		return fmt.Errorf("encode string: %w", err)
	}

	// Encoder terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)

	return nil
}

func encodeObject(buf *bytes.Buffer, obj *Object, depth int) error {
	if obj.Len() == 0 {
		buf.WriteString("{}")

		return nil
	}

	buf.WriteString("{\n")

	for i, key := range obj.keys {
		if i > 0 {
			buf.WriteString(",\n")
		}

		writeIndent(buf, depth+1)

		err := encodeString(buf, key)
		if err != nil {
			return err
		}

		buf.WriteString(": ")

		err = encodeValue(buf, obj.values[key], depth+1)
		if err != nil {
			return err
		}
	}

	buf.WriteString("\n")
	writeIndent(buf, depth)
	buf.WriteString("}")

	return nil
}

func encodeArray(buf *bytes.Buffer, arr []any, depth int) error {
	if len(arr) == 0 {
		buf.WriteString("[]")

		return nil
	}

	buf.WriteString("[\n")

	for i, item := range arr {
		if i > 0 {
			buf.WriteString(",\n")
		}

		writeIndent(buf, depth+1)

		err := encodeValue(buf, item, depth+1)
		if err != nil {
			return err
		}
	}

	buf.WriteString("\n")
	writeIndent(buf, depth)
	buf.WriteString("]")

	return nil
}

// Clone returns a deep copy of value.
func Clone(value any) any {
	switch typed := value.(type) {
	case *Object:
		out := &Object{keys: slices.Clone(typed.keys), values: make(map[string]any, len(typed.values))}
		for key, item := range typed.values {
			out.values[key] = Clone(item)
		}

		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = Clone(item)
		}

		return out
	default:
		return value
	}
}

// FromValue converts plain Go values (maps, slices, numbers, strings, bools)
// into document values. Plain map keys are ordered alphabetically.
func FromValue(value any) (any, error) {
	switch typed := value.(type) {
	case nil, bool, string, json.Number, *Object:
		return Clone(typed), nil
	case int:
		return json.Number(strconv.Itoa(typed)), nil
	case int64:
		return json.Number(strconv.FormatInt(typed, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(typed, 10)), nil
	case float64:
		return json.Number(strconv.FormatFloat(typed, 'f', -1, 64)), nil
	case map[string]any:
		obj := NewObject()

		for _, key := range slices.Sorted(maps.Keys(typed)) {
			item, err := FromValue(typed[key])
			if err != nil {
				return nil, err
			}

			obj.Set(key, item)
		}

		return obj, nil
	case []any:
		out := make([]any, 0, len(typed))

		for _, item := range typed {
			converted, err := FromValue(item)
			if err != nil {
				return nil, err
			}

			out = append(out, converted)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, value)
	}
}
