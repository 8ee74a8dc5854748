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
)

// Encode renders v as canonical bencode: the byte sequence is uniquely
// determined by v, regardless of how v was built, because dictionary
// entries are always emitted in ascending key order (Dict and Decode
// both guarantee v.dict is already sorted).
func Encode(v Value) []byte {
	var buf []byte
	return appendValue(buf, v)
}

func appendValue(buf []byte, v Value) []byte {
	switch v.Kind {
	case KindString:
		buf = strconv.AppendInt(buf, int64(len(v.str)), 10)
		buf = append(buf, ':')
		return append(buf, v.str...)

	case KindInteger:
		buf = append(buf, 'i')
		buf = strconv.AppendInt(buf, v.i, 10)
		return append(buf, 'e')

	case KindList:
		buf = append(buf, 'l')
		for _, item := range v.list {
			buf = appendValue(buf, item)
		}
		return append(buf, 'e')

	case KindDict:
		buf = append(buf, 'd')
		for _, entry := range v.dict {
			buf = strconv.AppendInt(buf, int64(len(entry.Key)), 10)
			buf = append(buf, ':')
			buf = append(buf, entry.Key...)
			buf = appendValue(buf, entry.Value)
		}
		return append(buf, 'e')

	default:
		panic("bencode: Encode of Value with invalid Kind")
	}
}
