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

// Package manager spools downloaded pieces to a scratch directory so
// an interrupted download doesn't have to keep the whole file in
// memory, and assembles them into the final output once every piece
// has arrived.
package manager

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
)

// ErrStoreClosed is returned from any Store method called before Init
// or after Close.
var ErrStoreClosed = errors.New("manager: store is closed")

// Store spools a torrent's pieces to individual files in a temporary
// directory as they are downloaded, and assembles them in order into a
// single output stream once the caller is done.
type Store struct {
	dir string
}

// New returns a new, uninitialized Store. Call Init before using it.
func New() *Store {
	return &Store{}
}

// Init creates the Store's scratch directory.
func (s *Store) Init() error {
	dir, err := os.MkdirTemp("", "leech-pieces-")
	if err != nil {
		return err
	}
	s.dir = dir
	return nil
}

// Put spools piece i's bytes to disk.
func (s *Store) Put(i int, buf []byte) error {
	if s.isClosed() {
		return ErrStoreClosed
	}
	return os.WriteFile(s.pieceFile(i), buf, 0600)
}

// Get reads back piece i's bytes.
func (s *Store) Get(i int) ([]byte, error) {
	if s.isClosed() {
		return nil, ErrStoreClosed
	}
	return os.ReadFile(s.pieceFile(i))
}

// WriteTo concatenates pieces 0..n-1 in order to w, in the shape of a
// single reassembled file. It is used once every piece has been
// verified, to produce the final downloaded file.
func (s *Store) WriteTo(w io.Writer, n int) error {
	if s.isClosed() {
		return ErrStoreClosed
	}

	for i := 0; i < n; i++ {
		f, err := os.Open(s.pieceFile(i))
		if err != nil {
			return fmt.Errorf("manager: reassembling piece %d: %w", i, err)
		}

		_, err = io.Copy(w, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("manager: writing piece %d: %w", i, err)
		}
	}
	return nil
}

// Close frees the Store's scratch directory. Call it once the final
// output has been assembled with WriteTo.
func (s *Store) Close() error {
	if s.isClosed() {
		return ErrStoreClosed
	}

	dir := s.dir
	s.dir = ""
	return os.RemoveAll(dir)
}

func (s *Store) pieceFile(i int) string {
	return path.Join(s.dir, fmt.Sprintf("%x", i))
}

func (s *Store) isClosed() bool {
	return s.dir == ""
}
