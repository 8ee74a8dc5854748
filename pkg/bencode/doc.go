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

// Package bencode implements the bencode data-interchange format used by
// BitTorrent metainfo files and tracker responses: binary-safe
// byte-strings, signed integers, ordered lists, and dictionaries keyed
// by strictly ascending byte-strings.
//
// Decode and Encode operate on the tagged Value type and are total and
// canonical respectively: Encode's output for a given Value never
// depends on how that Value was constructed. Marshal and Unmarshal are
// a struct-tag convenience layer on top of Value, for callers that want
// to work with a fixed-shape Go struct instead of walking a Value tree.
package bencode
