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
	"strconv"

	"github.com/arvikar/leech/pkg/bencode/scanner"
	"github.com/arvikar/leech/pkg/bencode/token"
)

// Decode decodes the single bencoded value at the start of data and
// returns it along with the number of bytes it consumed. Data beyond
// the first value, if any, is left untouched.
//
// Decode is total over well-formed input: every malformed input -
// truncated data, a non-digit length, a missing delimiter, an invalid
// integer, an unknown prefix byte, or out-of-order dictionary keys -
// yields a *DecodeError carrying the byte offset of the problem.
func Decode(data []byte) (Value, int, error) {
	s := scanner.New(data)
	if err := s.Next(); err != nil {
		return Value{}, 0, toDecodeError(err)
	}

	d := &decoder{tokens: s.Tokens}
	v, err := d.value()
	if err != nil {
		return Value{}, 0, err
	}

	return v, s.Consumed(), nil
}

// Valid reports whether data is, in its entirety, a single well-formed
// bencoded value.
func Valid(data []byte) bool {
	return scanner.Valid(data)
}

func toDecodeError(err error) error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*scanner.SyntaxError); ok {
		return &DecodeError{Offset: se.Offset, Err: se}
	}
	return &DecodeError{Err: err}
}

// decoder walks a flat token stream (as produced by the scanner) and
// builds the equivalent Value tree. The scanner has already rejected
// malformed syntax and misordered dictionary keys, so decoder itself
// only assembles values; the only failure left to it is integer
// overflow, which the scanner can't see since it never materializes
// the digits into a number.
type decoder struct {
	tokens []token.Token
	pos    int
}

// syntaxPanicMsg is used when the decoder encounters a token sequence
// the scanner should have already rejected. Reaching it is a bug in the
// scanner, not a user-facing decode error.
const syntaxPanicMsg = "bencode: decoder reached a state the scanner should have rejected"

func (d *decoder) value() (Value, error) {
	tok := d.tokens[d.pos]
	switch tok.Type {
	case token.STRING:
		d.pos++
		return String([]byte(tok.RawString())), nil
	case token.NUMBER:
		d.pos++
		n, err := strconv.ParseInt(tok.RawNumber(), 10, 64)
		if err != nil {
			return Value{}, &DecodeError{Offset: tok.Offset, Err: err}
		}
		return Integer(n), nil
	case token.LIST:
		return d.list()
	case token.DICT:
		return d.dict()
	default:
		panic(syntaxPanicMsg)
	}
}

func (d *decoder) list() (Value, error) {
	d.pos++ // consume LIST

	var items []Value
	for d.tokens[d.pos].Type != token.END {
		v, err := d.value()
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	d.pos++ // consume END

	return Value{Kind: KindList, list: items}, nil
}

func (d *decoder) dict() (Value, error) {
	d.pos++ // consume DICT

	var entries []DictEntry
	for d.tokens[d.pos].Type == token.STRING {
		key := d.tokens[d.pos].RawString()
		d.pos++

		v, err := d.value()
		if err != nil {
			return Value{}, err
		}

		entries = append(entries, DictEntry{Key: []byte(key), Value: v})
	}
	d.pos++ // consume END

	// the scanner already enforced strictly ascending keys while
	// tokenizing, so entries is already in canonical order here.
	return Value{Kind: KindDict, dict: entries}, nil
}
