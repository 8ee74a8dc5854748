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
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/arvikar/leech/internal/client"
	"github.com/arvikar/leech/pkg/metainfo"
)

var downloadPieceOut string

var downloadPieceCmd = &cobra.Command{
	Use:   "download_piece <torrent-path> <index>",
	Short: "download and verify a single piece, writing it to -o",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if downloadPieceOut == "" {
			return errors.New("missing required -o <out> flag")
		}

		index, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Wrapf(err, "parsing piece index %q", args[1])
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		mi, err := metainfo.Open(f)
		if err != nil {
			return err
		}
		if index < 0 || index >= mi.NumPieces() {
			return errors.Errorf("piece index %d out of range [0, %d)", index, mi.NumPieces())
		}

		c := client.New()
		buf, err := c.DownloadOne(cmd.Context(), mi, index)
		if err != nil {
			return err
		}

		if err := os.WriteFile(downloadPieceOut, buf, 0644); err != nil {
			return err
		}

		cmd.Printf("downloaded piece %d (%s) to %s\n", index, humanize.Bytes(uint64(len(buf))), downloadPieceOut)
		return nil
	},
}

func init() {
	downloadPieceCmd.Flags().StringVarP(&downloadPieceOut, "out", "o", "", "output file path")
}
