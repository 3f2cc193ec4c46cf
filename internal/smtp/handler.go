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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"strconv"
	"time"

	"github.com/lukasdietrich/briefkasten/internal/delivery"
	"github.com/lukasdietrich/briefkasten/internal/log"
	"github.com/lukasdietrich/briefkasten/internal/models"
	"github.com/lukasdietrich/briefkasten/internal/smtp/hook"
)

const maxRecipients = 100

var (
	errCloseSession = errors.New("smtp: session closed")
	errBadSequence  = errors.New("smtp: bad sequence of commands")
)

type handler func(context.Context, *session, *command) error

type smtpError struct {
	code  int
	text  string
	cause error
}

func (e smtpError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%v: %d %s", e.cause, e.code, e.text)
	}

	return fmt.Sprintf("%d %s", e.code, e.text)
}

// `HELO` command as specified in RFC#5321 4.1.1.1
//
//     "HELO" SP <Domain> CRLF
func helo(hostname string) handler {
	return func(ctx context.Context, s *session, c *command) error {
		s.state = sHelo
		s.envelope.Helo = c.tail
		s.resetTransaction()

		log.DebugContext(ctx).
			Str("hostname", s.envelope.Helo).
			Msg("resetting transaction state")

		return s.reply(250, hostname)
	}
}

// `EHLO` command as specified in RFC#5321 4.1.1.1
//
//     "EHLO" SP <Domain OR address-literal> CRLF
func ehlo(hostname string, extensions ...string) handler {
	extensions = append(extensions, "8BITMIME")

	return func(ctx context.Context, s *session, c *command) error {
		s.state = sHelo
		s.envelope.Helo = c.tail
		s.resetTransaction()

		log.DebugContext(ctx).
			Str("hostname", s.envelope.Helo).
			Msg("resetting transaction state")

		if err := s.SetWriteTimeout(time.Minute * 5); err != nil {
			return err
		}

		w := s.Writer()
		w.Printf("250-%s", hostname)
		w.Endline()

		for i, ext := range extensions {
			if i < len(extensions)-1 {
				w.Printf("250-%s", ext)
			} else {
				w.Printf("250 %s", ext)
			}

			w.Endline()
		}

		return w.Flush()
	}
}

// `NOOP` command as specified in RFC#5321 4.1.1.9
//
//     "NOOP" CRLF
func noop() handler {
	return func(_ context.Context, s *session, _ *command) error {
		return s.reply(250, "nothing happened. as expected")
	}
}

// `RSET` command as specified in RFC#5321 4.1.1.5
//
//     "RSET" CRLF
func rset() handler {
	return func(ctx context.Context, s *session, _ *command) error {
		if !s.state.in(sInit, sHelo) {
			s.state = sHelo
		}

		s.resetTransaction()

		log.DebugContext(ctx).Msg("resetting transaction state")

		return s.reply(250, "everything gone. pinky promise")
	}
}

// `VRFY` command as specified in RFC#5321 4.1.1.6
//
//     "VRFY" SP <user OR mailbox> CRLF
func vrfy() handler {
	return func(_ context.Context, s *session, _ *command) error {
		return s.reply(252, "maybe, maybe not? who knows for sure")
	}
}

// `QUIT` command as specified in RFC#5321 4.1.1.10
//
//     "QUIT" CRLF
func quit() handler {
	return func(ctx context.Context, s *session, _ *command) error {
		log.DebugContext(ctx).Msg("closing session")
		return errCloseSession
	}
}

// `MAIL` command as specified in RFC#5321 4.1.1.2
//
//     "MAIL FROM:<" <Reverse-path> ">" [ SP Parameters ] CRLF
func mail(inboxer delivery.Inboxer, hooks []hook.FromHook) handler {
	return func(ctx context.Context, s *session, c *command) error {
		if !s.state.in(sHelo, sMail) {
			return errBadSequence
		}

		arg, params, err := c.args("FROM")
		if err != nil {
			return err
		}

		// An empty reverse-path is allowed for bounce messages.
		var from models.Address
		if arg != "" {
			from, err = models.ParseUnicode(arg)
			if err != nil {
				return err
			}
		}

		size, err := checkSizeParameter(ctx, inboxer, params)
		if err != nil {
			return err
		}

		if err := execFromHooks(ctx, s, from, hooks); err != nil {
			return err
		}

		s.envelope.From = from
		s.envelope.SizeHint = size
		s.state = sMail

		log.DebugContext(ctx).
			Str("from", arg).
			Msg("beginning mail transaction")

		return s.reply(250, "noted.")
	}
}

// checkSizeParameter enforces the size limit on the optional SIZE parameter.
// See RFC#1870 "6. The extended MAIL command".
func checkSizeParameter(
	ctx context.Context,
	inboxer delivery.Inboxer,
	params map[string]string,
) (int64, error) {
	sizeParam, ok := params["SIZE"]
	if !ok {
		return 0, nil
	}

	size, err := strconv.ParseInt(sizeParam, 10, 64)
	if err != nil {
		log.DebugContext(ctx).
			Str("size", sizeParam).
			Msg("invalid SIZE parameter")

		return 0, errCommandSyntax
	}

	if err := inboxer.CheckSize(size); err != nil {
		log.InfoContext(ctx).
			Int64("size", size).
			Msg("announced SIZE exceeding maximum message size")

		return 0, smtpError{code: 552, text: "that is a bit too much", cause: err}
	}

	return size, nil
}

func execFromHooks(
	ctx context.Context,
	s *session,
	from models.Address,
	hooks []hook.FromHook,
) error {
	var headers []hook.HeaderField

	for _, hook := range hooks {
		result, err := hook(ctx, s.RemoteAddr(), from)
		if err != nil {
			return err
		}

		if result.Reject {
			return smtpError{code: result.Code, text: result.Text}
		}

		headers = append(headers, result.Headers...)
	}

	s.headers = headers
	return nil
}

// `RCPT` command as specified in RFC#5321 4.1.1.3
//
//     "RCPT TO:<" <Forward-path> ">" [ SP Parameters ] CRLF
func rcpt(inboxer delivery.Inboxer) handler {
	return func(ctx context.Context, s *session, c *command) error {
		if !s.state.in(sMail, sRcpt) {
			return errBadSequence
		}

		arg, _, err := c.args("TO")
		if err != nil {
			return err
		}

		if len(s.recipients) >= maxRecipients {
			log.DebugContext(ctx).
				Int("recipientCount", len(s.recipients)).
				Msg("too many recipients")

			return s.reply(452, "that is quite a crowd already!")
		}

		to, err := models.ParseUnicode(arg)
		if err != nil {
			return err
		}

		if err := inboxer.CheckRecipient(ctx, to); err != nil {
			if errors.Is(err, delivery.ErrBadRecipient) ||
				errors.Is(err, delivery.ErrUnknownRecipient) {
				log.DebugContext(ctx).
					Stringer("to", to).
					Msg("invalid recipient")

				return s.reply(550, "never heard of that person.")
			}

			return err
		}

		s.recipients = append(s.recipients, to)
		s.state = sRcpt

		log.DebugContext(ctx).
			Str("to", arg).
			Msg("recipient added")

		return s.reply(250, "yup, another?")
	}
}

// `DATA` command as specified in RFC#5321 4.1.1.4
//
//     "DATA" CRLF
func data(inboxer delivery.Inboxer, hostname string, maxSize int64) handler {
	return func(ctx context.Context, s *session, _ *command) error {
		if !s.state.in(sRcpt) {
			return errBadSequence
		}

		log.DebugContext(ctx).Msg("receiving mail content")

		if err := s.reply(354, "go ahead. period."); err != nil {
			return err
		}

		if err := s.SetReadTimeout(time.Minute * 10); err != nil {
			return err
		}

		s.envelope.Date = time.Now()

		r := s.Reader().DotReader()

		// limit the reader to the allowed size plus a little extra for
		// the headers prepended below
		raw, err := ioutil.ReadAll(&limitedReader{r, maxSize + 1024})
		if err != nil {
			if errors.Is(err, errReaderLimitReached) {
				// discard remaining bytes (but not forever) to flush
				// the input stream
				if _, err := io.Copy(ioutil.Discard, &limitedReader{r, maxSize}); err != nil {
					return err
				}

				return s.reply(552, "I am already full, thanks")
			}

			return err
		}

		prepender := newPrepender(len(s.headers) + 1)
		prepender.prepend("Received", fmt.Sprintf("from %s by %s; %s",
			s.envelope.Helo,
			hostname,
			s.envelope.Date.Format(time.RFC1123Z)))

		for _, header := range s.headers {
			prepender.prepend(header.Key, header.Value)
		}

		log.InfoContext(ctx).
			Int("recipientCount", len(s.recipients)).
			Msg("committing mail transaction")

		if err := deliverToRecipients(ctx, s, inboxer, prepender, raw); err != nil {
			return err
		}

		s.state = sHelo
		s.resetTransaction()

		return s.reply(250, "confirmed transfer.")
	}
}

// deliverToRecipients stores one copy of the message per accepted recipient. A recipient
// that disappeared since `RCPT` is skipped, the transaction only fails when no copy could
// be stored at all.
func deliverToRecipients(
	ctx context.Context,
	s *session,
	inboxer delivery.Inboxer,
	prepender *prepender,
	raw []byte,
) error {
	var delivered int

	for _, to := range s.recipients {
		envelope := s.envelope
		envelope.To = to

		_, err := inboxer.Accept(ctx, envelope, prepender.reader(bytes.NewReader(raw)))
		if err != nil {
			switch {
			case errors.Is(err, delivery.ErrMessageTooLarge):
				return smtpError{code: 552, text: "I am already full, thanks", cause: err}

			case errors.Is(err, delivery.ErrBadRecipient),
				errors.Is(err, delivery.ErrUnknownRecipient):
				log.WarnContext(ctx).
					Stringer("to", to).
					Msg("recipient vanished since rcpt")
				continue

			default:
				return err
			}
		}

		delivered++
	}

	if delivered == 0 {
		return smtpError{code: 554, text: "transaction failed"}
	}

	return nil
}
