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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/arvikar/leech/internal/client"
	"github.com/arvikar/leech/pkg/metainfo"
)

var downloadOut string

var downloadCmd = &cobra.Command{
	Use:   "download <torrent-path>",
	Short: "download every piece sequentially from one peer and assemble -o",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if downloadOut == "" {
			return errors.New("missing required -o <out> flag")
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

		out, err := os.Create(downloadOut)
		if err != nil {
			return err
		}
		defer out.Close()

		start := time.Now()

		c := client.New()
		if err := c.DownloadAll(cmd.Context(), mi, out); err != nil {
			return err
		}

		cmd.Printf("downloaded %s to %s in %s\n", humanize.Bytes(uint64(mi.Length())), downloadOut, time.Since(start))
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOut, "out", "o", "", "output file path")
}
