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

	"github.com/lukasdietrich/briefkasten/internal/database"
	"github.com/lukasdietrich/briefkasten/internal/log"
	"github.com/lukasdietrich/briefkasten/internal/models"
	"github.com/lukasdietrich/briefkasten/internal/storage"
)

// Lifecycle manages administrative account operations.
type Lifecycle interface {
	// List returns all accounts.
	List(ctx context.Context) ([]models.AccountEntity, error)
	// SetEnabled enables or disables an account. Disabling the last enabled administrator fails
	// with ErrLastAdmin.
	SetEnabled(ctx context.Context, actor *models.AccountEntity, accountID int64, enabled bool) error
	// Delete removes an account and everything it owns. Sessions, reset tokens, mail records and
	// aliases go with it. Raw payload blobs are removed best-effort after the commit.
	Delete(ctx context.Context, actor *models.AccountEntity, accountID int64) error
}

// NewLifecycle creates a new Lifecycle.
func NewLifecycle(
	conn database.Conn,
	accountDao database.AccountDao,
	aliasDao database.AliasDao,
	mailDao database.MailDao,
	sessionDao database.SessionDao,
	resetTokenDao database.ResetTokenDao,
	blobs storage.Blobs,
) Lifecycle {
	return lifecycle{
		conn:          conn,
		accountDao:    accountDao,
		aliasDao:      aliasDao,
		mailDao:       mailDao,
		sessionDao:    sessionDao,
		resetTokenDao: resetTokenDao,
		blobs:         blobs,
	}
}

type lifecycle struct {
	conn          database.Conn
	accountDao    database.AccountDao
	aliasDao      database.AliasDao
	mailDao       database.MailDao
	sessionDao    database.SessionDao
	resetTokenDao database.ResetTokenDao
	blobs         storage.Blobs
}

func (l lifecycle) List(ctx context.Context) ([]models.AccountEntity, error) {
	return l.accountDao.FindAll(ctx, l.conn)
}

func (l lifecycle) SetEnabled(
	ctx context.Context,
	actor *models.AccountEntity,
	accountID int64,
	enabled bool,
) error {
	tx, err := l.conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	account, err := l.accountDao.FindByID(ctx, tx, accountID)
	if err != nil {
		return err
	}

	// Disabling is guarded against the enabled admins only. A disabled admin on the side does
	// not keep the instance administrable.
	if !enabled && account.Enabled && account.Role == models.RoleAdmin {
		count, err := l.accountDao.CountEnabledByRole(ctx, tx, models.RoleAdmin)
		if err != nil {
			return err
		}

		if count <= 1 {
			return ErrLastAdmin
		}
	}

	account.Enabled = enabled

	if err := l.accountDao.Update(ctx, tx, account); err != nil {
		return err
	}

	if !enabled {
		// A disabled account must not keep usable sessions around.
		if err := l.sessionDao.DeleteByAccount(ctx, tx, account.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.InfoContext(ctx).
		Int64("actor", actor.ID).
		Int64("account", account.ID).
		Bool("enabled", enabled).
		Msg("account toggled")

	return nil
}

func (l lifecycle) Delete(
	ctx context.Context,
	actor *models.AccountEntity,
	accountID int64,
) error {
	if actor.ID == accountID {
		return ErrSelfDelete
	}

	tx, err := l.conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	account, err := l.accountDao.FindByID(ctx, tx, accountID)
	if err != nil {
		return err
	}

	if account.Role == models.RoleAdmin {
		if err := l.ensureNotLastAdmin(ctx, tx); err != nil {
			return err
		}
	}

	blobKeySlice, err := l.mailDao.FindBlobKeysByAccount(ctx, tx, account.ID)
	if err != nil {
		return err
	}

	if err := l.cascade(ctx, tx, account); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.InfoContext(ctx).
		Int64("actor", actor.ID).
		Int64("account", account.ID).
		Msg("account deleted")

	// Blob deletion happens outside the transaction. A leftover blob is reclaimable, a dangling
	// mail record is not.
	for _, key := range blobKeySlice {
		if err := l.blobs.Delete(ctx, key); err != nil {
			log.WarnContext(ctx).
				Err(err).
				Str("blob", key).
				Msg("could not delete blob of removed account")
		}
	}

	return nil
}

func (l lifecycle) cascade(ctx context.Context, tx database.Tx, account *models.AccountEntity) error {
	if err := l.sessionDao.DeleteByAccount(ctx, tx, account.ID); err != nil {
		return err
	}

	if err := l.resetTokenDao.DeleteByAccount(ctx, tx, account.ID); err != nil {
		return err
	}

	if err := l.mailDao.DeleteByAccount(ctx, tx, account.ID); err != nil {
		return err
	}

	if err := l.aliasDao.DeleteByAccount(ctx, tx, account.ID); err != nil {
		return err
	}

	return l.accountDao.Delete(ctx, tx, account)
}

func (l lifecycle) ensureNotLastAdmin(ctx context.Context, tx database.Tx) error {
	count, err := l.accountDao.CountByRole(ctx, tx, models.RoleAdmin)
	if err != nil {
		return err
	}

	if count <= 1 {
		return ErrLastAdmin
	}

	return nil
}
