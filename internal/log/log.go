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

// Package log configures the logrus logger every package in this
// module logs through, so the CLI's -v flag is the single knob that
// controls verbosity everywhere.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// init sets up a text formatter that only prints level+message+fields
// to standard error, leaving standard output free for the CLI's actual
// command output.
func init() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	logrus.SetLevel(logrus.WarnLevel)
}

// SetVerbose raises the log level to Info (or Debug if twice) so the
// orchestrator's progress logging becomes visible.
func SetVerbose(level int) {
	switch {
	case level >= 2:
		logrus.SetLevel(logrus.DebugLevel)
	case level == 1:
		logrus.SetLevel(logrus.InfoLevel)
	}
}
