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
	viper.SetDefault("accounts.aliasquota", 10)
}

// Registrar creates new accounts.
type Registrar interface {
	// Register creates a new account. The very first account becomes an administrator, every
	// account after that a regular user.
	Register(ctx context.Context, username, email string, pass []byte) (*models.AccountEntity, error)
}

// NewRegistrar creates a new Registrar.
func NewRegistrar(conn database.Conn, accountDao database.AccountDao) Registrar {
	return registrar{
		conn:       conn,
		accountDao: accountDao,
	}
}

type registrar struct {
	conn       database.Conn
	accountDao database.AccountDao
}

func (r registrar) Register(
	ctx context.Context,
	username string,
	email string,
	pass []byte,
) (*models.AccountEntity, error) {
	if err := models.ValidateLocalPart(username); err != nil {
		return nil, err
	}

	addr, err := models.ParseNormalized(email)
	if err != nil {
		return nil, err
	}

	account := models.AccountEntity{
		Username:   username,
		Email:      addr.String(),
		Role:       models.RoleUser,
		AliasQuota: viper.GetInt("accounts.aliasquota"),
		Enabled:    true,
		CreatedAt:  time.Now().Unix(),
	}

	if err := crypto.Hash(&account, pass); err != nil {
		return nil, err
	}

	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}

	defer tx.Rollback()

	count, err := r.accountDao.CountByRole(ctx, tx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if count == 0 {
		account.Role = models.RoleAdmin
	}

	if err := r.accountDao.Insert(ctx, tx, &account); err != nil {
		if database.IsErrUnique(err) {
			return nil, r.classifyUniqueError(ctx, tx, username)
		}

		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.InfoContext(ctx).
		Int64("account", account.ID).
		Str("role", string(account.Role)).
		Msg("account registered")

	return &account, nil
}

// classifyUniqueError checks which of the two unique columns caused a constraint violation.
// The lookup has to happen on the open transaction, a fresh pool connection may not see the
// same database.
func (r registrar) classifyUniqueError(ctx context.Context, q database.Queryer, username string) error {
	if _, err := r.accountDao.FindByUsername(ctx, q, username); err == nil {
		return ErrUsernameTaken
	}

	return ErrEmailTaken
}
