// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pb holds the protobuf messages of the OpenStreetMap PBF format
// (fileformat.proto and osmformat.proto). The messages are encoded directly
// with protowire; optional scalar fields are pointers and nil means absent,
// the same shape protoc-gen-go produces for proto2.
package pb

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrWireType is returned when a known field arrives with a wire type that
// its declaration does not allow.
var ErrWireType = errors.New("unexpected wire type")

// Message is implemented by every PBF message.
type Message interface {
	appendTo(b []byte) []byte
	unmarshal(b []byte) error
}

// Marshal returns the wire encoding of m.
func Marshal(m Message) ([]byte, error) {
	return m.appendTo(nil), nil
}

// Unmarshal parses the wire encoding b into m. Unknown fields are skipped.
func Unmarshal(b []byte, m Message) error {
	if err := m.unmarshal(b); err != nil {
		return fmt.Errorf("unable to unmarshal %T: %w", m, err)
	}

	return nil
}

// field is one decoded key/value pair of a message.
type field struct {
	num protowire.Number
	typ protowire.Type
	v   uint64
	buf []byte
}

// walk calls fn for every varint and length-delimited field of b, in wire
// order. Fields of any other wire type are skipped.
func walk(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}

		b = b[n:]
		f := field{num: num, typ: typ}

		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.buf, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}

		if n < 0 {
			return fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
		}

		b = b[n:]

		if typ != protowire.VarintType && typ != protowire.BytesType {
			continue
		}

		if err := fn(f); err != nil {
			return err
		}
	}

	return nil
}

func (f field) wireTypeError() error {
	return fmt.Errorf("field %d has wire type %d: %w", f.num, f.typ, ErrWireType)
}

func (f field) varint() (uint64, error) {
	if f.typ != protowire.VarintType {
		return 0, f.wireTypeError()
	}

	return f.v, nil
}

func (f field) bytes() ([]byte, error) {
	if f.typ != protowire.BytesType {
		return nil, f.wireTypeError()
	}

	return f.buf, nil
}

func (f field) message(m Message) error {
	b, err := f.bytes()
	if err != nil {
		return err
	}

	return m.unmarshal(b)
}

// setScalar stores a single varint field through conv into *dst.
func setScalar[T any](dst **T, f field, conv func(uint64) T) error {
	v, err := f.varint()
	if err != nil {
		return err
	}

	x := conv(v)
	*dst = &x

	return nil
}

func setString(dst **string, f field) error {
	b, err := f.bytes()
	if err != nil {
		return err
	}

	s := string(b)
	*dst = &s

	return nil
}

// appendRepeated appends either a packed run or a single unpacked element of
// a repeated scalar field to *dst.
func appendRepeated[T any](dst *[]T, f field, conv func(uint64) T) error {
	if f.typ == protowire.VarintType {
		*dst = append(*dst, conv(f.v))

		return nil
	}

	b := f.buf
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return fmt.Errorf("packed field %d: %w", f.num, protowire.ParseError(n))
		}

		*dst = append(*dst, conv(v))
		b = b[n:]
	}

	return nil
}

func asInt32(v uint64) int32   { return int32(v) }
func asInt64(v uint64) int64   { return int64(v) }
func asUint32(v uint64) uint32 { return uint32(v) }
func asSint32(v uint64) int32  { return int32(protowire.DecodeZigZag(v & math.MaxUint32)) }
func asSint64(v uint64) int64  { return protowire.DecodeZigZag(v) }
func asBool(v uint64) bool     { return protowire.DecodeBool(v) }

// Negative int32 values are sign extended, giving the ten byte varint
// protobuf mandates.
func fromInt32(v int32) uint64   { return uint64(int64(v)) }
func fromInt64(v int64) uint64   { return uint64(v) }
func fromUint32(v uint32) uint64 { return uint64(v) }
func fromSint32(v int32) uint64  { return protowire.EncodeZigZag(int64(v)) }
func fromSint64(v int64) uint64  { return protowire.EncodeZigZag(v) }
func fromBool(v bool) uint64     { return protowire.EncodeBool(v) }

func appendScalar[T any](b []byte, num protowire.Number, v *T, conv func(T) uint64) []byte {
	if v == nil {
		return b
	}

	b = protowire.AppendTag(b, num, protowire.VarintType)

	return protowire.AppendVarint(b, conv(*v))
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)

	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v *string) []byte {
	if v == nil {
		return b
	}

	b = protowire.AppendTag(b, num, protowire.BytesType)

	return protowire.AppendString(b, *v)
}

func appendStrings(b []byte, num protowire.Number, vs []string) []byte {
	for _, v := range vs {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, v)
	}

	return b
}

// appendPacked writes vs as a single packed field; empty slices are omitted.
func appendPacked[T any](b []byte, num protowire.Number, vs []T, conv func(T) uint64) []byte {
	if len(vs) == 0 {
		return b
	}

	size := 0
	for _, v := range vs {
		size += protowire.SizeVarint(conv(v))
	}

	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(size))

	for _, v := range vs {
		b = protowire.AppendVarint(b, conv(v))
	}

	return b
}

func appendMessage(b []byte, num protowire.Number, m Message) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)

	return protowire.AppendBytes(b, m.appendTo(nil))
}
