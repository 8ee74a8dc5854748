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
	"net"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/arvikar/leech/internal/client"
	"github.com/arvikar/leech/pkg/metainfo"
	"github.com/arvikar/leech/pkg/peer"
)

var handshakeCmd = &cobra.Command{
	Use:   "handshake <torrent-path> <peer-ip:port>",
	Short: "perform the peer handshake with one named peer and print its peer-id",
	Args:  cobra.ExactArgs(2),
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

		p, err := parsePeerAddr(args[1])
		if err != nil {
			return err
		}

		c := client.New()
		peerID, err := c.Handshake(p, mi.InfoHash())
		if err != nil {
			return err
		}

		fmt.Printf("Peer ID: %x\n", peerID)
		return nil
	},
}

// parsePeerAddr parses an "ip:port" string into a peer.Peer.
func parsePeerAddr(addr string) (peer.Peer, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return peer.Peer{}, errors.Wrapf(err, "parsing peer address %q", addr)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return peer.Peer{}, fmt.Errorf("invalid peer ip %q", host)
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return peer.Peer{}, errors.Wrapf(err, "parsing peer port %q", portStr)
	}

	return peer.Peer{IP: ip, Port: uint16(port)}, nil
}
