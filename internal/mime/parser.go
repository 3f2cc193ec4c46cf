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

package mime

import (
	"errors"
	"io"
	"io/ioutil"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// ErrMalformedMessage is returned when a message cannot be parsed at all.
var ErrMalformedMessage = errors.New("mime: malformed message")

// Summary is the parsed representation of a message. Only the parts needed for display are
// extracted, everything else stays in the raw payload.
type Summary struct {
	// Sender is the address of the first entry of the "From" header, if any.
	Sender string
	// Subject is the decoded "Subject" header.
	Subject string
	// Date is the parsed "Date" header. The zero time indicates a missing or unparsable header.
	Date time.Time
	// Text is the first inline "text/plain" part.
	Text string
	// HTML is the first inline "text/html" part.
	HTML string
}

// Parser extracts a Summary from a raw message.
type Parser interface {
	Parse(r io.Reader) (*Summary, error)
}

// NewParser creates a new Parser.
func NewParser() Parser {
	return parser{}
}

type parser struct{}

func (parser) Parse(r io.Reader) (*Summary, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, ErrMalformedMessage
	}

	var summary Summary
	parseHeader(&summary, mr.Header)

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}

		if err != nil {
			if message.IsUnknownCharset(err) || message.IsUnknownEncoding(err) {
				continue
			}

			break
		}

		parsePart(&summary, part)
	}

	return &summary, nil
}

func parseHeader(summary *Summary, header mail.Header) {
	if addressSlice, err := header.AddressList("From"); err == nil && len(addressSlice) > 0 {
		summary.Sender = addressSlice[0].Address
	}

	if subject, err := header.Subject(); err == nil {
		summary.Subject = subject
	}

	if date, err := header.Date(); err == nil {
		summary.Date = date
	}
}

func parsePart(summary *Summary, part *mail.Part) {
	header, ok := part.Header.(*mail.InlineHeader)
	if !ok {
		return
	}

	contentType, _, err := header.ContentType()
	if err != nil {
		return
	}

	switch {
	case strings.EqualFold(contentType, "text/plain") && summary.Text == "":
		summary.Text = readBody(part.Body)
	case strings.EqualFold(contentType, "text/html") && summary.HTML == "":
		summary.HTML = readBody(part.Body)
	}
}

func readBody(r io.Reader) string {
	// Decoding errors mid-part degrade to a truncated body instead of rejecting the mail.
	body, _ := ioutil.ReadAll(r)
	return string(body)
}
