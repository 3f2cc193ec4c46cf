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
	"strings"
)

// dotReader decodes a dot encoded block of text as defined in RFC 5321 #4.5.2.
// Lines starting with a dot are unstuffed and a line containing only a dot
// terminates the block. Line breaks are normalized to "\r\n".
type dotReader struct {
	r   *bufio.Reader
	buf []byte
	eof bool
}

func (d *dotReader) Read(p []byte) (int, error) {
	for len(d.buf) == 0 {
		if d.eof {
			return 0, io.EOF
		}

		if err := d.fill(); err != nil {
			return 0, err
		}
	}

	n := copy(p, d.buf)
	d.buf = d.buf[n:]

	return n, nil
}

func (d *dotReader) fill() error {
	line, err := d.r.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			// The connection must not end before the terminating dot line.
			err = io.ErrUnexpectedEOF
		}

		return err
	}

	line = trimNewline(line)

	if line == "." {
		d.eof = true
		return nil
	}

	if strings.HasPrefix(line, ".") {
		line = line[1:]
	}

	d.buf = append(d.buf[:0], line...)
	d.buf = append(d.buf, '\r', '\n')

	return nil
}
