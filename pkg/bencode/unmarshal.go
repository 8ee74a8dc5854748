// Copyright © 2021 Rak Laptudirm <raklaptudirm@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bencode

import (
	"fmt"
	"reflect"
	"strings"
)

// InvalidUnmarshalError is returned by Unmarshal when v is not a
// non-nil pointer.
type InvalidUnmarshalError struct {
	Type reflect.Type
}

func (e *InvalidUnmarshalError) Error() string {
	switch {
	case e.Type == nil:
		return "bencode: Unmarshal(nil)"
	case e.Type.Kind() != reflect.Pointer:
		return fmt.Sprintf("bencode: Unmarshal(non-pointer %s)", e.Type)
	default:
		return fmt.Sprintf("bencode: Unmarshal(nil %s)", e.Type)
	}
}

// UnmarshalTypeError is returned by Unmarshal when a decoded bencode
// value cannot be stored into the destination Go type.
type UnmarshalTypeError struct {
	Value string
	Type  reflect.Type
}

func (e *UnmarshalTypeError) Error() string {
	return fmt.Sprintf("bencode: cannot unmarshal %s into Go value of type %s", e.Value, e.Type)
}

// Unmarshal decodes data and stores the result in v, which must be a
// non-nil pointer. Unmarshal uses the same `bencode:"name,omitempty"`
// struct tags as Marshal; a struct field with no tag is matched against
// its dictionary key case-insensitively, the way the teacher's original
// reflection-based decoder did.
func Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &InvalidUnmarshalError{rv.Type()}
	}

	val, _, err := Decode(data)
	if err != nil {
		return err
	}

	return unmarshalInto(val, rv.Elem())
}

func unmarshalInto(val Value, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return unmarshalInto(val, rv.Elem())

	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return &UnmarshalTypeError{Value: val.Kind.String(), Type: rv.Type()}
		}
		rv.Set(reflect.ValueOf(toAny(val)))
		return nil
	}

	switch val.Kind {
	case KindString:
		return unmarshalString(val.Str(), rv)
	case KindInteger:
		return unmarshalInt(val.Int(), rv)
	case KindList:
		return unmarshalList(val.List(), rv)
	case KindDict:
		return unmarshalDict(val, rv)
	default:
		return &UnmarshalTypeError{Value: "invalid", Type: rv.Type()}
	}
}

func unmarshalString(s []byte, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.String:
		rv.SetString(string(s))
		return nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			rv.SetBytes(append([]byte(nil), s...))
			return nil
		}
	}
	return &UnmarshalTypeError{Value: "string", Type: rv.Type()}
}

func unmarshalInt(n int64, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.OverflowInt(n) {
			return &UnmarshalTypeError{Value: "integer", Type: rv.Type()}
		}
		rv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if n < 0 || rv.OverflowUint(uint64(n)) {
			return &UnmarshalTypeError{Value: "integer", Type: rv.Type()}
		}
		rv.SetUint(uint64(n))
		return nil
	}
	return &UnmarshalTypeError{Value: "integer", Type: rv.Type()}
}

func unmarshalList(items []Value, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Slice:
		rv.Set(reflect.MakeSlice(rv.Type(), len(items), len(items)))
	case reflect.Array:
		if len(items) > rv.Len() {
			items = items[:rv.Len()]
		}
	default:
		return &UnmarshalTypeError{Value: "list", Type: rv.Type()}
	}

	for i, item := range items {
		if i >= rv.Len() {
			break
		}
		if err := unmarshalInto(item, rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func unmarshalDict(val Value, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return &UnmarshalTypeError{Value: "dictionary", Type: rv.Type()}
		}
		if rv.IsNil() {
			rv.Set(reflect.MakeMap(rv.Type()))
		}
		for _, e := range val.Entries() {
			elem := reflect.New(rv.Type().Elem()).Elem()
			if err := unmarshalInto(e.Value, elem); err != nil {
				return err
			}
			rv.SetMapIndex(reflect.ValueOf(string(e.Key)), elem)
		}
		return nil

	case reflect.Struct:
		fs := fields(rv)
		for _, e := range val.Entries() {
			key := string(e.Key)

			if i, ok := fs.names[key]; ok {
				if err := unmarshalInto(e.Value, rv.Field(i)); err != nil {
					return err
				}
				continue
			}

			for _, f := range fs.fields {
				if strings.EqualFold(key, f.name) {
					if err := unmarshalInto(e.Value, rv.FieldByIndex(f.index)); err != nil {
						return err
					}
					break
				}
			}
		}
		return nil

	default:
		return &UnmarshalTypeError{Value: "dictionary", Type: rv.Type()}
	}
}

// toAny converts a Value into the same plain Go representation
// encoding/json-style code expects from an `any` destination: string
// maps to a Go string, integers to int64, lists to []any, dictionaries
// to map[string]any. Byte-strings that are not valid as a Go string
// (i.e. any byte-string at all) are still rendered as a Go string here
// since Go strings are themselves just byte sequences; callers that
// need to tell binary apart from text (like the `decode` CLI command)
// inspect the raw bytes, not this representation.
func toAny(v Value) any {
	switch v.Kind {
	case KindString:
		return string(v.Str())
	case KindInteger:
		return v.Int()
	case KindList:
		items := v.List()
		if len(items) == 0 {
			return []any(nil)
		}
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toAny(item)
		}
		return out
	case KindDict:
		out := make(map[string]any)
		for _, e := range v.Entries() {
			out[string(e.Key)] = toAny(e.Value)
		}
		return out
	default:
		return nil
	}
}
