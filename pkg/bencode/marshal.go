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
)

// Marshal converts v into a bencode Value using Go struct tags of the
// form `bencode:"name,omitempty"`, the way encoding/json's Marshal does
// for JSON. Marshal(v) followed by Encode handles the fixed-shape
// dictionaries (metainfo, tracker announce responses) that the core
// otherwise has to hand-walk as a Value tree.
func Marshal(v any) (Value, error) {
	return marshalValue(reflect.ValueOf(v))
}

// UnsupportedTypeError is returned by Marshal when v contains a Go type
// that has no bencode representation (e.g. a float or a channel).
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("bencode: unsupported type %s", e.Type)
}

func marshalValue(v reflect.Value) (Value, error) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return Value{}, &UnsupportedTypeError{v.Type()}
		}
		return marshalValue(v.Elem())

	case reflect.String:
		return String([]byte(v.String())), nil

	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 && v.Kind() == reflect.Slice {
			return String(v.Bytes()), nil
		}
		items := make([]Value, v.Len())
		for i := range items {
			item, err := marshalValue(v.Index(i))
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return Value{Kind: KindList, list: items}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Integer(v.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Integer(int64(v.Uint())), nil

	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return Value{}, &UnsupportedTypeError{v.Type()}
		}
		var entries []DictEntry
		iter := v.MapRange()
		for iter.Next() {
			val, err := marshalValue(iter.Value())
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, DictEntry{Key: []byte(iter.Key().String()), Value: val})
		}
		return Dict(entries...), nil

	case reflect.Struct:
		return marshalStruct(v)

	default:
		return Value{}, &UnsupportedTypeError{v.Type()}
	}
}

func marshalStruct(v reflect.Value) (Value, error) {
	fs := fields(v)
	fs.order()

	var entries []DictEntry
	for _, f := range fs.fields {
		fv := v.FieldByIndex(f.index)

		if f.contains("omitempty") && isEmpty(fv) {
			continue
		}

		val, err := marshalValue(fv)
		if err != nil {
			return Value{}, err
		}

		entries = append(entries, DictEntry{Key: []byte(f.name), Value: val})
	}

	return Dict(entries...), nil
}

// isEmpty reports whether v is the zero value for its kind: 0, a nil
// pointer/interface, or an empty array/slice/map/string.
func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Array, reflect.Slice, reflect.Map, reflect.String:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
