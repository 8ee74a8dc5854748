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

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arvikar/leech/pkg/bencode"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <bencoded-string>",
	Short: "decode a bencoded value and print its JSON rendering",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, _, err := bencode.Decode([]byte(args[0]))
		if err != nil {
			return err
		}

		out, err := json.Marshal(toJSON(v))
		if err != nil {
			return err
		}

		fmt.Println(string(out))
		return nil
	},
}

// toJSON renders a bencode.Value as a plain Go value suitable for
// encoding/json. A byte-string prints as a JSON string when every byte
// is ASCII, and as an array of byte values otherwise, since non-ASCII
// bytes (including valid multi-byte UTF-8) are not strings per spec.
func toJSON(v bencode.Value) any {
	switch v.Kind {
	case bencode.KindString:
		b := v.Str()
		if isASCII(b) {
			return string(b)
		}
		ints := make([]int, len(b))
		for i, c := range b {
			ints[i] = int(c)
		}
		return ints
	case bencode.KindInteger:
		return v.Int()
	case bencode.KindList:
		items := v.List()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toJSON(item)
		}
		return out
	case bencode.KindDict:
		out := make(map[string]any)
		for _, e := range v.Entries() {
			out[string(e.Key)] = toJSON(e.Value)
		}
		return out
	default:
		return nil
	}
}

// isASCII reports whether every byte in b is a 7-bit ASCII byte.
func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}
