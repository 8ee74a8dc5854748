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

import "sort"

// Kind identifies which of the four bencode variants a Value holds.
type Kind int

const (
	// KindString identifies a Value holding a byte-string. Strings are
	// not guaranteed to be valid UTF-8 and must never be passed through
	// a lossy text type.
	KindString Kind = iota
	// KindInteger identifies a Value holding a signed 64-bit integer.
	KindInteger
	// KindList identifies a Value holding an ordered list of Values.
	KindList
	// KindDict identifies a Value holding a dictionary, stored as
	// strictly ascending key/value pairs.
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindList:
		return "list"
	case KindDict:
		return "dictionary"
	default:
		return "invalid"
	}
}

// DictEntry is a single key/value pair of a dictionary Value. Keys are
// raw bytes, not strings, since bencode dictionary keys are binary-safe
// byte-strings.
type DictEntry struct {
	Key   []byte
	Value Value
}

// Value is a tagged union over the four bencode types: byte-string,
// integer, list, and dictionary. It is the domain over which Decode and
// Encode operate, and the type Encode's canonical-encoding guarantee is
// stated in terms of.
type Value struct {
	Kind Kind

	str  []byte
	i    int64
	list []Value
	dict []DictEntry
}

// String constructs a byte-string Value. The bytes are retained as-is.
func String(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{Kind: KindString, str: cp}
}

// Integer constructs an integer Value.
func Integer(n int64) Value {
	return Value{Kind: KindInteger, i: n}
}

// List constructs a list Value from vs, in order.
func List(vs ...Value) Value {
	return Value{Kind: KindList, list: vs}
}

// Dict constructs a dictionary Value from entries, sorting them into
// strictly ascending key order (last write wins on duplicate keys) so
// that every dictionary Value, however it is built, encodes canonically.
func Dict(entries ...DictEntry) Value {
	sort.SliceStable(entries, func(i, j int) bool {
		return string(entries[i].Key) < string(entries[j].Key)
	})

	deduped := entries[:0:0]
	for i, e := range entries {
		if i > 0 && string(e.Key) == string(entries[i-1].Key) {
			deduped[len(deduped)-1] = e
			continue
		}
		deduped = append(deduped, e)
	}

	return Value{Kind: KindDict, dict: deduped}
}

// Str returns the raw bytes of a KindString Value. It panics if v is not
// a string.
func (v Value) Str() []byte {
	v.mustBe(KindString)
	return v.str
}

// Int returns the integer value of a KindInteger Value. It panics if v
// is not an integer.
func (v Value) Int() int64 {
	v.mustBe(KindInteger)
	return v.i
}

// List returns the elements of a KindList Value. It panics if v is not
// a list.
func (v Value) List() []Value {
	v.mustBe(KindList)
	return v.list
}

// Entries returns the key-ordered entries of a KindDict Value. It
// panics if v is not a dictionary.
func (v Value) Entries() []DictEntry {
	v.mustBe(KindDict)
	return v.dict
}

// Get looks up key in a KindDict Value using a binary search over its
// ascending entries. It panics if v is not a dictionary.
func (v Value) Get(key string) (Value, bool) {
	v.mustBe(KindDict)
	entries := v.dict
	i := sort.Search(len(entries), func(i int) bool {
		return string(entries[i].Key) >= key
	})
	if i < len(entries) && string(entries[i].Key) == key {
		return entries[i].Value, true
	}
	return Value{}, false
}

func (v Value) mustBe(k Kind) {
	if v.Kind != k {
		panic("bencode: Value is a " + v.Kind.String() + ", not a " + k.String())
	}
}
