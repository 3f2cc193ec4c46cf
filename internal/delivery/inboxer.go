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

package delivery

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefkasten/internal/crypto"
	"github.com/lukasdietrich/briefkasten/internal/database"
	"github.com/lukasdietrich/briefkasten/internal/log"
	"github.com/lukasdietrich/briefkasten/internal/mime"
	"github.com/lukasdietrich/briefkasten/internal/models"
	"github.com/lukasdietrich/briefkasten/internal/storage"
)

func init() {
	viper.SetDefault("mail.sizelimit", 10*1024*1024)
	viper.SetDefault("mail.bodylimit", 256*1024)
}

var (
	// ErrBadRecipient is a permanent rejection for recipients, that cannot be parsed at all.
	ErrBadRecipient = errors.New("delivery: bad recipient")

	// ErrUnknownRecipient is a permanent rejection for recipients this server is not responsible
	// for. A foreign domain, a missing alias, a disabled alias and a disabled account all look
	// the same from the outside.
	ErrUnknownRecipient = errors.New("delivery: unknown recipient")

	// ErrMessageTooLarge is a permanent rejection for messages above the configured size limit.
	ErrMessageTooLarge = errors.New("delivery: message too large")

	// ErrMalformedMessage is a transient rejection for messages the parser cannot make sense
	// of. The sender may retry, nothing is stored.
	ErrMalformedMessage = errors.New("delivery: malformed message")
)

// Inboxer decides whether inbound mail is accepted and turns accepted mail into records.
type Inboxer interface {
	// CheckRecipient decides at the envelope stage, if mail for the recipient would be accepted.
	CheckRecipient(ctx context.Context, to models.Address) error
	// CheckSize decides, if an announced message size would be accepted. A size of zero is
	// always accepted, the actual limit is enforced again while reading.
	CheckSize(size int64) error
	// Accept reads a message and stores a record for the recipient of the envelope. The raw
	// payload is written to blob storage best-effort, a failure there does not reject the mail.
	Accept(ctx context.Context, envelope models.Envelope, r io.Reader) (*models.MailEntity, error)
}

// NewInboxer creates a new Inboxer.
func NewInboxer(
	conn database.Conn,
	accountDao database.AccountDao,
	aliasDao database.AliasDao,
	mailDao database.MailDao,
	idGenerator crypto.IDGenerator,
	parser mime.Parser,
	blobs storage.Blobs,
) Inboxer {
	return inboxer{
		conn:        conn,
		accountDao:  accountDao,
		aliasDao:    aliasDao,
		mailDao:     mailDao,
		idGenerator: idGenerator,
		parser:      parser,
		blobs:       blobs,
	}
}

type inboxer struct {
	conn        database.Conn
	accountDao  database.AccountDao
	aliasDao    database.AliasDao
	mailDao     database.MailDao
	idGenerator crypto.IDGenerator
	parser      mime.Parser
	blobs       storage.Blobs
}

func (i inboxer) CheckRecipient(ctx context.Context, to models.Address) error {
	_, err := i.resolveRecipient(ctx, to)
	return err
}

func (i inboxer) CheckSize(size int64) error {
	if size > viper.GetInt64("mail.sizelimit") {
		return ErrMessageTooLarge
	}

	return nil
}

func (i inboxer) Accept(
	ctx context.Context,
	envelope models.Envelope,
	r io.Reader,
) (*models.MailEntity, error) {
	alias, err := i.resolveRecipient(ctx, envelope.To)
	if err != nil {
		return nil, err
	}

	if err := i.CheckSize(envelope.SizeHint); err != nil {
		return nil, err
	}

	raw, err := readLimited(r, viper.GetInt64("mail.sizelimit"))
	if err != nil {
		return nil, err
	}

	id, err := i.idGenerator.GenerateID()
	if err != nil {
		return nil, err
	}

	mail := models.MailEntity{
		ID:         id,
		AccountID:  alias.AccountID,
		LocalPart:  alias.LocalPart,
		Domain:     alias.Domain,
		Sender:     envelope.From.String(),
		Recipient:  envelope.To.String(),
		Size:       int64(len(raw)),
		ReceivedAt: envelope.Date.Unix(),
	}

	if err := i.summarize(ctx, &mail, raw); err != nil {
		return nil, err
	}

	i.storeBlob(ctx, &mail, raw)

	if err := i.mailDao.Insert(ctx, i.conn, &mail); err != nil {
		if mail.BlobKey.Valid {
			i.blobs.Delete(ctx, mail.BlobKey.String)
		}

		return nil, err
	}

	log.InfoContext(ctx).
		Str("mail", mail.ID).
		Int64("account", mail.AccountID).
		Int64("size", mail.Size).
		Msg("mail accepted")

	return &mail, nil
}

// resolveRecipient walks from the raw recipient to an enabled alias of an enabled account. Every
// failure along the way collapses into a rejection, the sender learns nothing about which step
// failed.
func (i inboxer) resolveRecipient(
	ctx context.Context,
	to models.Address,
) (*models.AliasEntity, error) {
	localPart := models.NormalizeLocalPart(to.LocalPart())

	domain, err := models.DomainToUnicode(to.Domain())
	if err != nil {
		return nil, ErrBadRecipient
	}

	if !isLocalDomain(domain) {
		return nil, ErrUnknownRecipient
	}

	alias, err := i.aliasDao.FindByAddress(ctx, i.conn, localPart, domain)
	if err != nil {
		if database.IsErrNoRows(err) {
			return nil, ErrUnknownRecipient
		}

		return nil, err
	}

	if !alias.Enabled {
		return nil, ErrUnknownRecipient
	}

	account, err := i.accountDao.FindByID(ctx, i.conn, alias.AccountID)
	if err != nil {
		if database.IsErrNoRows(err) {
			return nil, ErrUnknownRecipient
		}

		return nil, err
	}

	if !account.Enabled {
		return nil, ErrUnknownRecipient
	}

	return alias, nil
}

// summarize extracts the display parts of the message. A message the parser cannot handle is
// rejected as transient, nothing is stored for it.
func (i inboxer) summarize(ctx context.Context, mail *models.MailEntity, raw []byte) error {
	summary, err := i.parser.Parse(bytes.NewReader(raw))
	if err != nil {
		log.WarnContext(ctx).
			Err(err).
			Str("mail", mail.ID).
			Msg("could not parse message")

		return ErrMalformedMessage
	}

	bodyLimit := viper.GetInt("mail.bodylimit")

	mail.Subject = summary.Subject
	mail.TextBody = truncate(summary.Text, bodyLimit)
	mail.HTMLBody = truncate(summary.HTML, bodyLimit)

	// The envelope sender stays authoritative. The header only fills in a bounce envelope.
	if mail.Sender == "" {
		mail.Sender = summary.Sender
	}

	if !summary.Date.IsZero() {
		mail.Date = sql.NullInt64{Int64: summary.Date.Unix(), Valid: true}
	}

	return nil
}

func (i inboxer) storeBlob(ctx context.Context, mail *models.MailEntity, raw []byte) {
	if _, err := i.blobs.Write(ctx, mail.ID, bytes.NewReader(raw)); err != nil {
		if errors.Is(err, storage.ErrBlobsDisabled) {
			return
		}

		log.WarnContext(ctx).
			Err(err).
			Str("mail", mail.ID).
			Msg("could not store raw payload")

		return
	}

	mail.BlobKey = sql.NullString{String: mail.ID, Valid: true}
}

// truncate caps a body at limit bytes without splitting a utf8 sequence.
func truncate(body string, limit int) string {
	if len(body) <= limit {
		return body
	}

	for limit > 0 && !utf8.RuneStart(body[limit]) {
		limit--
	}

	return body[:limit]
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	var buffer bytes.Buffer

	n, err := io.Copy(&buffer, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}

	if n > limit {
		return nil, ErrMessageTooLarge
	}

	return buffer.Bytes(), nil
}

func isLocalDomain(domain string) bool {
	for _, candidate := range viper.GetStringSlice("mail.domains") {
		if candidate == domain {
			return true
		}
	}

	return false
}
