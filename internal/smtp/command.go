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

package smtp

import (
	"errors"
	"strings"

	"github.com/lukasdietrich/briefkasten/internal/textproto"
)

var errCommandSyntax = errors.New("smtp: invalid command syntax")

// command represents a command-line of the form:
//
//     <head> <SP> <tail> <CR> <LF>
type command struct {
	head string
	tail string
}

func (c *command) readFrom(r *textproto.Reader) error {
	line, err := r.ReadLine()
	if err != nil {
		return err
	}

	c.parse(line)
	return nil
}

// parse splits a line into head and tail of a command.
// tail will be empty if no space is found.
func (c *command) parse(line string) {
	space := strings.IndexByte(line, ' ')

	if space < 0 {
		c.head = line
		c.tail = ""
	} else {
		c.head = line[:space]
		c.tail = line[space+1:]
	}
}

// args parses the tail of the form:
//
//     <name> ":<" <arg> ">" [ SP <key> [ "=" <value> ] ]*
//
// Parameter keys are folded to upper case. The arg may be empty, which is used
// for null reverse-paths of bounce messages.
func (c *command) args(name string) (arg string, params map[string]string, err error) {
	tail := c.tail

	if len(tail) < len(name)+3 { // len(FROM:<...>) < len(FROM) + len(:<>)
		return "", nil, errCommandSyntax
	}

	if !strings.EqualFold(tail[:len(name)], name) {
		return "", nil, errCommandSyntax
	}

	if !strings.HasPrefix(tail[len(name):], ":<") {
		return "", nil, errCommandSyntax
	}

	end := strings.IndexByte(tail, '>')
	if end < 0 {
		return "", nil, errCommandSyntax
	}

	arg = tail[len(name)+2 : end]
	fields := strings.Fields(tail[end+1:])

	if len(fields) > 0 {
		params = make(map[string]string, len(fields))

		for _, field := range fields {
			if eq := strings.IndexByte(field, '='); eq < 0 {
				params[strings.ToUpper(field)] = ""
			} else {
				params[strings.ToUpper(field[:eq])] = field[eq+1:]
			}
		}
	}

	return arg, params, nil
}
