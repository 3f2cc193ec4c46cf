// Copyright (C) 2021  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package textproto

import (
	"bufio"
	"fmt"
	"io"
)

// Writer wraps a buffered writer for line based protocols.
type Writer struct {
	w *bufio.Writer
}

func newWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Printf writes a formatted string to the buffer.
func (w *Writer) Printf(format string, v ...interface{}) error {
	_, err := fmt.Fprintf(w.w, format, v...)
	return err
}

// Endline writes a protocol line break ("\r\n") to the buffer.
func (w *Writer) Endline() error {
	_, err := w.w.WriteString("\r\n")
	return err
}

// Flush writes any buffered data to the underlying connection.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
