// Package wire is the sole adapter between caller-supplied body values
// and the bytes actually placed on (or read off) the wire: AsByteSeq,
// LoadByteSeq, and QueryContentType. Go has no overload resolution, so
// the priority-ordered dispatch chttpp implements with overload sets is
// re-expressed here as a type switch plus two narrow interface hooks.
//
// Grounded on chttpp.hpp's as_byte_seq_impl / load_byte_seq_impl /
// query_content_type (original_source/include/chttpp.hpp).
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"

	"golang.org/x/text/encoding/unicode"
)

// ByteSequencer is the user-defined adaptation hook for AsByteSeq:
// priority 3 in the spec's ordering, checked before falling back to the
// reflect-based scalar/aggregate view.
type ByteSequencer interface {
	AsByteSeq() []byte
}

// ByteLoader is the inverse hook for LoadByteSeq: a pointer receiver
// that knows how to populate itself from a byte slice.
type ByteLoader interface {
	LoadByteSeq(data []byte) error
}

// ContentTyper lets a body type override the default Content-Type that
// QueryContentType would otherwise infer.
type ContentTyper interface {
	ContentType() string
}

// WideString marks a string as UTF-16 (wide) content; AsByteSeq honors
// this by transcoding to 2 bytes per code unit instead of passing UTF-8
// bytes through untouched, matching chttpp's "wide string produces
// 2×len bytes" rule.
type WideString string

// AsByteSeq implements the priority-ordered body encoding described in
// §4.7:
//  1. string / WideString — element bytes, honoring width.
//  2. []byte — a byte span passed straight through.
//  3. ByteSequencer — a user hook.
//  4. trivially-copyable scalar/aggregate — viewed via reflection.
func AsByteSeq(v any) ([]byte, error) {
	switch x := v.(type) {
	case WideString:
		return encodeWide(string(x))
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	}

	if seq, ok := v.(ByteSequencer); ok {
		return seq.AsByteSeq(), nil
	}

	return scalarBytes(v)
}

// LoadByteSeq is the inverse of AsByteSeq: it populates target (which
// must be a pointer) from data, honoring the same four-case priority.
func LoadByteSeq(target any, data []byte) error {
	switch p := target.(type) {
	case *WideString:
		s, err := decodeWide(data)
		if err != nil {
			return err
		}
		*p = WideString(s)
		return nil
	case *string:
		*p = string(data)
		return nil
	case *[]byte:
		*p = append((*p)[:0], data...)
		return nil
	}

	if loader, ok := target.(ByteLoader); ok {
		return loader.LoadByteSeq(data)
	}

	return scalarLoad(target, data)
}

// QueryContentType returns the default Content-Type for v: text/plain
// for string-shaped values, application/octet-stream otherwise, unless
// v implements ContentTyper.
func QueryContentType(v any) string {
	if ct, ok := v.(ContentTyper); ok {
		return ct.ContentType()
	}
	switch v.(type) {
	case string, WideString:
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

func encodeWide(s string) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	out, err := enc.Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("wire: encoding wide string: %w", err)
	}
	return out, nil
}

func decodeWide(data []byte) (string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return "", fmt.Errorf("wire: decoding wide string: %w", err)
	}
	return string(out), nil
}

// scalarBytes views a trivially-copyable scalar or fixed-size aggregate
// as its own storage, little-endian, the way chttpp's fallback case
// takes the object's raw representation.
func scalarBytes(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Bool:
		return binaryEncode(v)
	case reflect.Array, reflect.Struct:
		return binaryEncode(v)
	default:
		return nil, fmt.Errorf("wire: %T is not byte-sequenceable", v)
	}
}

func scalarLoad(target any, data []byte) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr {
		return fmt.Errorf("wire: LoadByteSeq target must be a pointer, got %T", target)
	}
	return binaryDecode(target, data)
}

func binaryEncode(v any) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		return nil, fmt.Errorf("wire: encoding %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

func binaryDecode(target any, data []byte) error {
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, target); err != nil {
		return fmt.Errorf("wire: decoding into %T: %w", target, err)
	}
	return nil
}
