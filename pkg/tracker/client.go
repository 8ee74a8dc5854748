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

// Package tracker announces a torrent to its HTTP tracker and parses
// the compact peer list out of the response.
package tracker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arvikar/leech/pkg/bencode"
	"github.com/arvikar/leech/pkg/peer"
)

// TrackerError wraps a failure to announce: an HTTP-level error, a
// non-bencoded body, or a response missing the peers key.
type TrackerError struct {
	Reason string
	Err    error
}

func (e *TrackerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tracker: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("tracker: %s", e.Reason)
}

func (e *TrackerError) Unwrap() error { return e.Err }

// Response is the parsed form of a tracker's announce response.
type Response struct {
	Interval int
	Peers    []peer.Peer
}

// timeout bounds how long Announce waits for the tracker's HTTP
// response.
const timeout = 15 * time.Second

// BuildURL builds the announce GET URL for a tracker, percent-encoding
// infoHash and peerID byte-by-byte rather than relying on
// net/url.Values, which form-urlencodes its values and would mangle
// arbitrary binary bytes that happen to look like printable ASCII.
func BuildURL(announce string, infoHash, peerID [20]byte, port uint16, uploaded, downloaded, left int64) (string, error) {
	base, err := url.Parse(announce)
	if err != nil {
		return "", &TrackerError{Reason: "parsing announce url", Err: err}
	}

	query := fmt.Sprintf(
		"info_hash=%s&peer_id=%s&port=%d&uploaded=%d&downloaded=%d&left=%d&compact=1",
		percentEncode(infoHash[:]),
		percentEncode(peerID[:]),
		port, uploaded, downloaded, left,
	)

	if base.RawQuery != "" {
		base.RawQuery += "&" + query
	} else {
		base.RawQuery = query
	}
	return base.String(), nil
}

// percentEncode encodes every byte of buf as a lowercase %XX escape,
// regardless of whether the byte is itself a safe, printable ASCII
// character. The tracker's info_hash and peer_id are arbitrary binary
// and must round-trip exactly, so no byte is left unescaped.
func percentEncode(buf []byte) string {
	const hexDigits = "0123456789abcdef"

	var b strings.Builder
	b.Grow(len(buf) * 3)
	for _, c := range buf {
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0xf])
	}
	return b.String()
}

// Announce requests the announce URL from the tracker, using client to
// perform the HTTP GET, and parses the peer list out of the bencoded
// response body.
func Announce(ctx context.Context, client *http.Client, announceURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, announceURL, nil)
	if err != nil {
		return nil, &TrackerError{Reason: "building request", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req = req.WithContext(ctx)

	logrus.WithField("url", announceURL).Debug("tracker: announcing")

	res, err := client.Do(req)
	if err != nil {
		return nil, &TrackerError{Reason: "requesting announce url", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &TrackerError{Reason: fmt.Sprintf("tracker returned status %s", res.Status)}
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TrackerError{Reason: "reading response body", Err: err}
	}

	var body struct {
		Failure  string `bencode:"failure reason,omitempty"`
		Warning  string `bencode:"warning message,omitempty"`
		Interval int    `bencode:"interval"`
		Peers    string `bencode:"peers"`
	}
	if err := bencode.Unmarshal(raw, &body); err != nil {
		return nil, &TrackerError{Reason: "decoding tracker response", Err: err}
	}

	if body.Failure != "" {
		return nil, &TrackerError{Reason: body.Failure}
	}
	if body.Warning != "" {
		logrus.WithField("warning", body.Warning).Warn("tracker: warning in announce response")
	}

	// Unmarshal into a struct only succeeds for a dict, so top is one.
	top, _, err := bencode.Decode(raw)
	if err != nil {
		return nil, &TrackerError{Reason: "decoding tracker response", Err: err}
	}
	if _, ok := top.Get("interval"); !ok {
		logrus.Warn("tracker: announce response missing interval")
	}
	if _, ok := top.Get("peers"); !ok {
		return nil, &TrackerError{Reason: "response missing peers key"}
	}

	peers, err := peer.Unmarshal([]byte(body.Peers))
	if err != nil {
		return nil, &TrackerError{Reason: "parsing compact peer list", Err: err}
	}

	return &Response{Interval: body.Interval, Peers: peers}, nil
}
