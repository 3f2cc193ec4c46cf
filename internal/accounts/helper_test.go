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
	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/briefkasten/internal/crypto"
	"github.com/lukasdietrich/briefkasten/internal/database"
	"github.com/lukasdietrich/briefkasten/internal/models"
)

type baseAccountsTestSuite struct {
	suite.Suite

	ctx  context.Context
	conn database.Conn

	accountDao    database.AccountDao
	aliasDao      database.AliasDao
	mailDao       database.MailDao
	sessionDao    database.SessionDao
	resetTokenDao database.ResetTokenDao
}

func (s *baseAccountsTestSuite) SetupTest() {
	viper.Set("storage.database.filename", ":memory:")
	viper.Set("storage.database.journalmode", "memory")
	viper.Set("security.auth.minduration", time.Duration(0))
	viper.Set("security.crypto.pbkdf2.iterations", crypto.MinIterations)

	conn, err := database.OpenConnection()
	s.Require().NoError(err)

	s.ctx = context.Background()
	s.conn = conn

	s.accountDao = database.NewAccountDao()
	s.aliasDao = database.NewAliasDao()
	s.mailDao = database.NewMailDao()
	s.sessionDao = database.NewSessionDao()
	s.resetTokenDao = database.NewResetTokenDao()
}

func (s *baseAccountsTestSuite) TearDownTest() {
	s.Require().NoError(s.conn.Close())
}

// requireAccount seeds an account with a usable credential.
func (s *baseAccountsTestSuite) requireAccount(username string, pass string) *models.AccountEntity {
	s.T().Helper()

	account := models.AccountEntity{
		Username:   username,
		Email:      username + "@example.com",
		Role:       models.RoleUser,
		AliasQuota: 10,
		Enabled:    true,
		CreatedAt:  time.Now().Unix(),
	}

	s.Require().NoError(crypto.Hash(&account, []byte(pass)))
	s.Require().NoError(s.accountDao.Insert(s.ctx, s.conn, &account))

	return &account
}

func (s *baseAccountsTestSuite) requireAdmin(username string, pass string) *models.AccountEntity {
	s.T().Helper()

	account := s.requireAccount(username, pass)
	account.Role = models.RoleAdmin
	s.Require().NoError(s.accountDao.Update(s.ctx, s.conn, account))

	return account
}

// recordingSender captures reset tokens instead of relaying them.
type recordingSender struct {
	tokens []string
}

func (r *recordingSender) SendResetToken(
	ctx context.Context,
	account *models.AccountEntity,
	token string,
) error {
	r.tokens = append(r.tokens, token)
	return nil
}

// failingSender simulates an unreachable relay.
type failingSender struct{}

func (failingSender) SendResetToken(
	ctx context.Context,
	account *models.AccountEntity,
	token string,
) error {
	return errors.New("relay unreachable")
}
