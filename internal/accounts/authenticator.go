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
	"errors"
	"time"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefkasten/internal/crypto"
	"github.com/lukasdietrich/briefkasten/internal/database"
	"github.com/lukasdietrich/briefkasten/internal/log"
	"github.com/lukasdietrich/briefkasten/internal/models"
)

func init() {
	viper.SetDefault("security.auth.minduration", time.Millisecond*500)
}

// Authenticator verifies username and password credentials.
type Authenticator interface {
	// Authenticate returns the account matching the credentials. All failures except
	// ErrResetRequired collapse into ErrCredentialsInvalid. Every attempt takes at least
	// `security.auth.minduration`, so a missing account is not measurably faster than a wrong
	// password.
	Authenticate(ctx context.Context, username string, pass []byte) (*models.AccountEntity, error)
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(conn database.Conn, accountDao database.AccountDao) Authenticator {
	return authenticator{
		conn:       conn,
		accountDao: accountDao,
	}
}

type authenticator struct {
	conn       database.Conn
	accountDao database.AccountDao
}

func (a authenticator) Authenticate(
	ctx context.Context,
	username string,
	pass []byte,
) (*models.AccountEntity, error) {
	started := time.Now()
	defer padDuration(started)

	account, err := a.accountDao.FindByUsername(ctx, a.conn, username)
	if err != nil {
		if database.IsErrNoRows(err) {
			return nil, ErrCredentialsInvalid
		}

		return nil, err
	}

	if err := crypto.Verify(account, pass); err != nil {
		if errors.Is(err, crypto.ErrIterationsUnsupported) {
			log.WarnContext(ctx).
				Int64("account", account.ID).
				Int("iterations", account.Iterations).
				Msg("credential derivation not supported, reset required")

			return nil, ErrResetRequired
		}

		if errors.Is(err, crypto.ErrPasswordMismatch) {
			return nil, ErrCredentialsInvalid
		}

		return nil, err
	}

	if !account.Enabled {
		return nil, ErrCredentialsInvalid
	}

	return account, nil
}

func padDuration(started time.Time) {
	minDuration := viper.GetDuration("security.auth.minduration")

	if elapsed := time.Since(started); elapsed < minDuration {
		time.Sleep(minDuration - elapsed)
	}
}
