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
	"io"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDotReader(t *testing.T) {
	r := newReader(strings.NewReader("first line\r\n..stuffed\r\nlast line\r\n.\r\nafter\r\n"))

	actual, err := ioutil.ReadAll(r.DotReader())
	assert.NoError(t, err)
	assert.Equal(t, "first line\r\n.stuffed\r\nlast line\r\n", string(actual))

	// Reading beyond the terminating dot must not consume the following data.
	line, err := r.ReadLine()
	assert.NoError(t, err)
	assert.Equal(t, "after", line)
}

func TestDotReaderNormalizesNewlines(t *testing.T) {
	r := newReader(strings.NewReader("unix\nstyle\n.\n"))

	actual, err := ioutil.ReadAll(r.DotReader())
	assert.NoError(t, err)
	assert.Equal(t, "unix\r\nstyle\r\n", string(actual))
}

func TestDotReaderUnexpectedEOF(t *testing.T) {
	r := newReader(strings.NewReader("missing terminator\r\n"))

	_, err := ioutil.ReadAll(r.DotReader())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadLineTrimsLinebreak(t *testing.T) {
	r := newReader(strings.NewReader("hello world\r\n"))

	line, err := r.ReadLine()
	assert.NoError(t, err)
	assert.Equal(t, "hello world", line)
}
