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

package accounts

import (
	"context"
	"time"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefkasten/internal/crypto"
	"github.com/lukasdietrich/briefkasten/internal/database"
	"github.com/lukasdietrich/briefkasten/internal/log"
	"github.com/lukasdietrich/briefkasten/internal/models"
)

func init() {
	viper.SetDefault("security.resets.ttl", time.Hour)
}

// Resets manages password reset tokens.
type Resets interface {
	// Request issues a reset token for the account registered under the given email and hands it
	// to the Sender. An unknown email is not an error, the caller cannot probe for registered
	// addresses.
	Request(ctx context.Context, email string) error
	// Confirm consumes a reset token and replaces the account credential. The token is single
	// use. All open sessions of the account are destroyed.
	Confirm(ctx context.Context, token string, pass []byte) error
}

// NewResets creates a new Resets.
func NewResets(
	conn database.Conn,
	accountDao database.AccountDao,
	sessionDao database.SessionDao,
	resetTokenDao database.ResetTokenDao,
	sender Sender,
) Resets {
	return resets{
		conn:          conn,
		accountDao:    accountDao,
		sessionDao:    sessionDao,
		resetTokenDao: resetTokenDao,
		sender:        sender,
	}
}

type resets struct {
	conn          database.Conn
	accountDao    database.AccountDao
	sessionDao    database.SessionDao
	resetTokenDao database.ResetTokenDao
	sender        Sender
}

func (r resets) Request(ctx context.Context, email string) error {
	addr, err := models.ParseNormalized(email)
	if err != nil {
		return nil
	}

	account, err := r.accountDao.FindByEmail(ctx, r.conn, addr.String())
	if err != nil {
		if database.IsErrNoRows(err) {
			log.DebugContext(ctx).Msg("reset requested for unknown email")
			return nil
		}

		return err
	}

	if !account.Enabled {
		log.DebugContext(ctx).Msg("reset requested for disabled account")
		return nil
	}

	token, err := crypto.NewToken()
	if err != nil {
		return err
	}

	now := time.Now()
	resetToken := models.ResetTokenEntity{
		TokenDigest: crypto.DigestToken(token),
		AccountID:   account.ID,
		ExpiresAt:   now.Add(viper.GetDuration("security.resets.ttl")).Unix(),
		CreatedAt:   now.Unix(),
	}

	if err := r.resetTokenDao.Insert(ctx, r.conn, &resetToken); err != nil {
		return err
	}

	log.InfoContext(ctx).
		Int64("account", account.ID).
		Msg("reset token issued")

	// A failed delivery must not change the response. Otherwise the outcome would reveal which
	// emails belong to an account whenever the relay acts up.
	if err := r.sender.SendResetToken(ctx, account, token); err != nil {
		log.WarnContext(ctx).
			Err(err).
			Int64("account", account.ID).
			Msg("could not deliver reset token")
	}

	return nil
}

func (r resets) Confirm(ctx context.Context, token string, pass []byte) error {
	digest := crypto.DigestToken(token)

	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	resetToken, err := r.resetTokenDao.FindByDigest(ctx, tx, digest)
	if err != nil {
		if database.IsErrNoRows(err) {
			return ErrResetTokenInvalid
		}

		return err
	}

	if resetToken.ExpiresAt <= time.Now().Unix() {
		return ErrResetTokenInvalid
	}

	// The delete doubles as the single-use guard. A concurrent confirmation of the same token
	// fails here instead of updating the credential twice.
	if err := r.resetTokenDao.DeleteByDigest(ctx, tx, digest); err != nil {
		if database.IsErrNoRows(err) {
			return ErrResetTokenInvalid
		}

		return err
	}

	account, err := r.accountDao.FindByID(ctx, tx, resetToken.AccountID)
	if err != nil {
		return err
	}

	if err := crypto.Hash(account, pass); err != nil {
		return err
	}

	if err := r.accountDao.Update(ctx, tx, account); err != nil {
		return err
	}

	if err := r.sessionDao.DeleteByAccount(ctx, tx, account.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.InfoContext(ctx).
		Int64("account", account.ID).
		Msg("credential reset confirmed")

	return nil
}
