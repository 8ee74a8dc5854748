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

	"github.com/arvikar/leech/internal/client"
	"github.com/arvikar/leech/pkg/metainfo"
)

var peersCmd = &cobra.Command{
	Use:   "peers <torrent-path>",
	Short: "announce to the tracker and print each peer as ip:port",
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

		c := client.New()
		peers, err := c.Peers(cmd.Context(), mi)
		if err != nil {
			return err
		}

		for _, p := range peers {
			fmt.Println(p.String())
		}
		return nil
	},
}
