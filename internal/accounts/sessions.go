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
	viper.SetDefault("security.sessions.ttl", time.Hour*24)
}

// Sessions manages bearer token sessions.
type Sessions interface {
	// Create opens a new session for an account and returns the raw bearer token. The token is
	// not recoverable afterwards, only its digest is stored.
	Create(ctx context.Context, account *models.AccountEntity) (string, error)
	// Resolve returns the account a bearer token belongs to. An unknown token, an expired session
	// and a disabled account all fail with ErrSessionInvalid.
	Resolve(ctx context.Context, token string) (*models.AccountEntity, error)
	// Destroy ends a session. Destroying an already ended session is not an error.
	Destroy(ctx context.Context, token string) error
}

// NewSessions creates a new Sessions.
func NewSessions(
	conn database.Conn,
	accountDao database.AccountDao,
	sessionDao database.SessionDao,
) Sessions {
	return sessions{
		conn:       conn,
		accountDao: accountDao,
		sessionDao: sessionDao,
	}
}

type sessions struct {
	conn       database.Conn
	accountDao database.AccountDao
	sessionDao database.SessionDao
}

func (s sessions) Create(ctx context.Context, account *models.AccountEntity) (string, error) {
	token, err := crypto.NewToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := models.SessionEntity{
		TokenDigest: crypto.DigestToken(token),
		AccountID:   account.ID,
		ExpiresAt:   now.Add(viper.GetDuration("security.sessions.ttl")).Unix(),
		CreatedAt:   now.Unix(),
	}

	if err := s.sessionDao.Insert(ctx, s.conn, &session); err != nil {
		return "", err
	}

	log.DebugContext(ctx).
		Int64("account", account.ID).
		Msg("session created")

	return token, nil
}

func (s sessions) Resolve(ctx context.Context, token string) (*models.AccountEntity, error) {
	digest := crypto.DigestToken(token)

	session, err := s.sessionDao.FindByDigest(ctx, s.conn, digest)
	if err != nil {
		if database.IsErrNoRows(err) {
			return nil, ErrSessionInvalid
		}

		return nil, err
	}

	// Expiry is checked at read time. The sweep only reclaims storage.
	if session.ExpiresAt <= time.Now().Unix() {
		if err := s.sessionDao.DeleteByDigest(ctx, s.conn, digest); err != nil {
			log.WarnContext(ctx).
				Err(err).
				Msg("could not delete expired session")
		}

		return nil, ErrSessionInvalid
	}

	account, err := s.accountDao.FindByID(ctx, s.conn, session.AccountID)
	if err != nil {
		if database.IsErrNoRows(err) {
			return nil, ErrSessionInvalid
		}

		return nil, err
	}

	if !account.Enabled {
		return nil, ErrSessionInvalid
	}

	return account, nil
}

func (s sessions) Destroy(ctx context.Context, token string) error {
	return s.sessionDao.DeleteByDigest(ctx, s.conn, crypto.DigestToken(token))
}
