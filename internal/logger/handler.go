// Copyright 2023 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// textTimeLayout produces a fixed-width, 26-character timestamp: the same
// width whether or not the current instant has trailing zero microseconds.
const textTimeLayout = "01/02/2006 15:04:05.000000"

// handler is a minimal slog.Handler emitting one line per record in either
// a human-readable "text" format or a "json" format, each carrying just
// time, severity, and message — no structured attributes, since every
// caller of this package builds its message with Printf-style formatting
// rather than attaching slog.Attrs.
type handler struct {
	out    io.Writer
	level  *slog.LevelVar
	format string
	prefix string
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	severity := severityName(r.Level)
	message := h.prefix + r.Message

	var line string
	if h.format == "text" {
		line = fmt.Sprintf("time=%q severity=%s message=%q\n", r.Time.Format(textTimeLayout), severity, message)
	} else {
		line = fmt.Sprintf(`{"timestamp":{"seconds":%d,"nanos":%d},"severity":%q,"message":%q}`+"\n",
			r.Time.Unix(), r.Time.Nanosecond(), severity, message)
	}

	_, err := io.WriteString(h.out, line)
	return err
}

func (h *handler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *handler) WithGroup(_ string) slog.Handler      { return h }

func severityName(level slog.Level) string {
	switch {
	case level < LevelDebug:
		return TRACE
	case level < LevelInfo:
		return DEBUG
	case level < LevelWarn:
		return INFO
	case level < LevelError:
		return WARNING
	default:
		return ERROR
	}
}
