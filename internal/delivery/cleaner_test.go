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
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/briefkasten/internal/database"
	"github.com/lukasdietrich/briefkasten/internal/models"
)

func TestCleanerTestSuite(t *testing.T) {
	suite.Run(t, new(CleanerTestSuite))
}

type CleanerTestSuite struct {
	baseDeliveryTestSuite

	cleaner Cleaner
}

func (s *CleanerTestSuite) SetupTest() {
	s.baseDeliveryTestSuite.SetupTest()
	viper.Set("security.cleaner.interval", time.Duration(0))
	s.cleaner = NewCleaner(s.conn, s.sessionDao, s.resetTokenDao)
}

func (s *CleanerTestSuite) seedCredentials(account *models.AccountEntity) {
	s.T().Helper()

	now := time.Now()

	for _, entry := range []struct {
		digest    string
		expiresAt time.Time
	}{
		{"session-expired", now.Add(-time.Minute)},
		{"session-alive", now.Add(time.Hour)},
	} {
		s.Require().NoError(s.sessionDao.Insert(s.ctx, s.conn, &models.SessionEntity{
			TokenDigest: entry.digest,
			AccountID:   account.ID,
			ExpiresAt:   entry.expiresAt.Unix(),
			CreatedAt:   now.Unix(),
		}))
	}

	for _, entry := range []struct {
		digest    string
		expiresAt time.Time
	}{
		{"reset-expired", now.Add(-time.Minute)},
		{"reset-alive", now.Add(time.Hour)},
	} {
		s.Require().NoError(s.resetTokenDao.Insert(s.ctx, s.conn, &models.ResetTokenEntity{
			TokenDigest: entry.digest,
			AccountID:   account.ID,
			ExpiresAt:   entry.expiresAt.Unix(),
			CreatedAt:   now.Unix(),
		}))
	}
}

func (s *CleanerTestSuite) TestSweep() {
	account := s.requireAccount("someone", 10)
	s.seedCredentials(account)

	s.Require().NoError(s.cleaner.Sweep(s.ctx))

	_, err := s.sessionDao.FindByDigest(s.ctx, s.conn, "session-expired")
	s.Assert().True(database.IsErrNoRows(err))

	_, err = s.sessionDao.FindByDigest(s.ctx, s.conn, "session-alive")
	s.Assert().NoError(err)

	_, err = s.resetTokenDao.FindByDigest(s.ctx, s.conn, "reset-expired")
	s.Assert().True(database.IsErrNoRows(err))

	_, err = s.resetTokenDao.FindByDigest(s.ctx, s.conn, "reset-alive")
	s.Assert().NoError(err)
}

func (s *CleanerTestSuite) TestSweepRateLimited() {
	viper.Set("security.cleaner.interval", time.Hour)

	account := s.requireAccount("someone", 10)

	s.Require().NoError(s.cleaner.Sweep(s.ctx))

	s.seedCredentials(account)

	// The second sweep within the interval is a no-op.
	s.Require().NoError(s.cleaner.Sweep(s.ctx))

	_, err := s.sessionDao.FindByDigest(s.ctx, s.conn, "session-expired")
	s.Assert().NoError(err)
}
