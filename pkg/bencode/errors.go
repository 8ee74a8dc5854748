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

import "fmt"

// DecodeError is returned by Decode and Unmarshal when the input is not
// well-formed bencode: truncated data, a non-digit string length, a
// missing colon or 'e' delimiter, an integer with a leading zero or a
// "-0", or a dictionary whose keys are not strictly ascending.
type DecodeError struct {
	// Offset is the byte offset into the input at which the scanner
	// detected the problem.
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bencode: decode error at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
