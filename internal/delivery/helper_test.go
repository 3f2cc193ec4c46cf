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
	"context"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/briefkasten/internal/database"
	"github.com/lukasdietrich/briefkasten/internal/models"
)

type baseDeliveryTestSuite struct {
	suite.Suite

	ctx  context.Context
	conn database.Conn

	accountDao    database.AccountDao
	aliasDao      database.AliasDao
	mailDao       database.MailDao
	sessionDao    database.SessionDao
	resetTokenDao database.ResetTokenDao
}

func (s *baseDeliveryTestSuite) SetupTest() {
	viper.Set("storage.database.filename", ":memory:")
	viper.Set("storage.database.journalmode", "memory")
	viper.Set("mail.domains", []string{"example.com", "example.org"})

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

func (s *baseDeliveryTestSuite) TearDownTest() {
	s.Require().NoError(s.conn.Close())
}

func (s *baseDeliveryTestSuite) requireAccount(username string, quota int) *models.AccountEntity {
	s.T().Helper()

	account := models.AccountEntity{
		Username:   username,
		Email:      username + "@elsewhere.tld",
		Salt:       "salt",
		Hash:       "hash",
		Iterations: 10000,
		Role:       models.RoleUser,
		AliasQuota: quota,
		Enabled:    true,
		CreatedAt:  time.Now().Unix(),
	}

	s.Require().NoError(s.accountDao.Insert(s.ctx, s.conn, &account))
	return &account
}

func (s *baseDeliveryTestSuite) requireAlias(
	account *models.AccountEntity,
	localPart string,
	domain string,
) *models.AliasEntity {
	s.T().Helper()

	alias := models.AliasEntity{
		LocalPart: localPart,
		Domain:    domain,
		AccountID: account.ID,
		Enabled:   true,
		CreatedAt: time.Now().Unix(),
	}

	s.Require().NoError(s.aliasDao.Insert(s.ctx, s.conn, &alias))
	return &alias
}

func (s *baseDeliveryTestSuite) parseAddress(raw string) models.Address {
	s.T().Helper()

	addr, err := models.Parse(raw)
	s.Require().NoError(err)
	return addr
}
