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
	"time"

	"github.com/lukasdietrich/briefkasten/internal/models"
	"github.com/lukasdietrich/briefkasten/internal/smtp/hook"
	"github.com/lukasdietrich/briefkasten/internal/textproto"
)

type sessionState uint

const (
	sInit sessionState = iota
	sHelo
	sMail
	sRcpt
)

func (s sessionState) String() string {
	return [...]string{
		"init",
		"helo",
		"mail",
		"rcpt",
	}[s]
}

func (s sessionState) in(any ...sessionState) bool {
	for _, other := range any {
		if other == s {
			return true
		}
	}

	return false
}

type session struct {
	textproto.Conn

	state      sessionState
	envelope   models.Envelope
	recipients []models.Address
	headers    []hook.HeaderField
}

// resetTransaction clears all state of the current mail transaction, but keeps the greeting.
func (s *session) resetTransaction() {
	s.envelope.From = models.ZeroAddress
	s.envelope.SizeHint = 0
	s.recipients = nil
	s.headers = nil
}

func (s *session) reply(code int, text string) error {
	if err := s.SetWriteTimeout(time.Minute * 5); err != nil {
		return err
	}

	w := s.Writer()

	if err := w.Printf("%d %s", code, text); err != nil {
		return err
	}

	if err := w.Endline(); err != nil {
		return err
	}

	return w.Flush()
}

func (s *session) read(c *command) error {
	if err := s.SetReadTimeout(time.Minute * 5); err != nil {
		return err
	}

	return c.readFrom(s.Reader())
}
