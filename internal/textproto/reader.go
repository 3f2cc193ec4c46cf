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
	"io"
)

// Reader wraps a buffered reader for line based protocols.
type Reader struct {
	r *bufio.Reader
}

func newReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadLine reads a single line of text until a line break. The line break itself is
// discarded and not part of the returned string.
func (r *Reader) ReadLine() (string, error) {
	line, err := r.r.ReadString('\n')
	if err != nil {
		return "", err
	}

	return trimNewline(line), nil
}

// DotReader returns an io.Reader to decode a dot encoded block of text. The reader
// returns io.EOF when the terminating dot line is reached.
func (r *Reader) DotReader() io.Reader {
	return &dotReader{r: r.r}
}

func trimNewline(line string) string {
	for len(line) > 0 {
		last := line[len(line)-1]
		if last != '\r' && last != '\n' {
			break
		}

		line = line[:len(line)-1]
	}

	return line
}
