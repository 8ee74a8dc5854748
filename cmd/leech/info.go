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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arvikar/leech/pkg/metainfo"
)

var infoCmd = &cobra.Command{
	Use:   "info <torrent-path>",
	Short: "print a torrent's tracker url, length, info hash and piece hashes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		mi, err := metainfo.Open(f)
		if err != nil {
			return err
		}

		hash := mi.InfoHash()
		fmt.Printf("Tracker URL: %s\n", mi.Announce())
		fmt.Printf("Length: %d\n", mi.Length())
		fmt.Printf("Info Hash: %x\n", hash)
		fmt.Printf("Piece Length: %d\n", mi.PieceLen())
		fmt.Println("Piece Hashes:")
		for i := 0; i < mi.NumPieces(); i++ {
			fmt.Printf("%x\n", mi.PieceHash(i))
		}
		return nil
	},
}
