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
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/briefkasten/internal/crypto"
	"github.com/lukasdietrich/briefkasten/internal/database"
	"github.com/lukasdietrich/briefkasten/internal/models"
)

func TestSessionsTestSuite(t *testing.T) {
	suite.Run(t, new(SessionsTestSuite))
}

type SessionsTestSuite struct {
	baseAccountsTestSuite

	sessions Sessions
}

func (s *SessionsTestSuite) SetupTest() {
	s.baseAccountsTestSuite.SetupTest()
	s.sessions = NewSessions(s.conn, s.accountDao, s.sessionDao)
}

func (s *SessionsTestSuite) TestCreateAndResolve() {
	account := s.requireAccount("someone", "hunter2")

	token, err := s.sessions.Create(s.ctx, account)
	s.Require().NoError(err)
	s.Require().NotEmpty(token)

	resolved, err := s.sessions.Resolve(s.ctx, token)
	s.Require().NoError(err)
	s.Assert().Equal(account.ID, resolved.ID)

	// The raw token is never stored.
	_, err = s.sessionDao.FindByDigest(s.ctx, s.conn, token)
	s.Assert().True(database.IsErrNoRows(err))
}

func (s *SessionsTestSuite) TestResolveUnknownToken() {
	_, err := s.sessions.Resolve(s.ctx, "not-a-token")
	s.Assert().ErrorIs(err, ErrSessionInvalid)
}

func (s *SessionsTestSuite) TestResolveExpired() {
	account := s.requireAccount("someone", "hunter2")

	token, err := crypto.NewToken()
	s.Require().NoError(err)

	session := models.SessionEntity{
		TokenDigest: crypto.DigestToken(token),
		AccountID:   account.ID,
		ExpiresAt:   time.Now().Add(-time.Minute).Unix(),
		CreatedAt:   time.Now().Add(-time.Hour).Unix(),
	}
	s.Require().NoError(s.sessionDao.Insert(s.ctx, s.conn, &session))

	_, err = s.sessions.Resolve(s.ctx, token)
	s.Assert().ErrorIs(err, ErrSessionInvalid)

	// Resolving an expired session removes it.
	_, err = s.sessionDao.FindByDigest(s.ctx, s.conn, session.TokenDigest)
	s.Assert().True(database.IsErrNoRows(err))
}

func (s *SessionsTestSuite) TestResolveDisabledAccount() {
	account := s.requireAccount("someone", "hunter2")

	token, err := s.sessions.Create(s.ctx, account)
	s.Require().NoError(err)

	account.Enabled = false
	s.Require().NoError(s.accountDao.Update(s.ctx, s.conn, account))

	_, err = s.sessions.Resolve(s.ctx, token)
	s.Assert().ErrorIs(err, ErrSessionInvalid)
}

func (s *SessionsTestSuite) TestDestroy() {
	account := s.requireAccount("someone", "hunter2")

	token, err := s.sessions.Create(s.ctx, account)
	s.Require().NoError(err)

	s.Assert().NoError(s.sessions.Destroy(s.ctx, token))

	_, err = s.sessions.Resolve(s.ctx, token)
	s.Assert().ErrorIs(err, ErrSessionInvalid)

	// Destroy is idempotent.
	s.Assert().NoError(s.sessions.Destroy(s.ctx, token))
}
