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

package database

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/briefkasten/internal/models"
)

func TestSessionDaoTestSuite(t *testing.T) {
	suite.Run(t, new(SessionDaoTestSuite))
}

type SessionDaoTestSuite struct {
	baseDatabaseTestSuite

	sessionDao SessionDao
}

func (s *SessionDaoTestSuite) SetupSuite() {
	s.sessionDao = NewSessionDao()
}

func (s *SessionDaoTestSuite) TestInsert() {
	s.requireAccount(1, "someone")

	session := models.SessionEntity{
		TokenDigest: "deadbeef",
		AccountID:   1,
		ExpiresAt:   2000,
		CreatedAt:   1000,
	}

	s.Assert().NoError(s.sessionDao.Insert(s.ctx, s.conn, &session))

	s.assertQuery(
		`
			select "token_digest", "account_id", "expires_at", "created_at"
			from "sessions" ;
		`,
		[]string{"deadbeef", "1", "2000", "1000"},
	)
}

func (s *SessionDaoTestSuite) TestFindByDigest() {
	s.requireAccount(1, "someone")
	s.requireExec(`
		insert into "sessions" ( "token_digest", "account_id", "expires_at", "created_at" )
		values ( 'deadbeef', 1, 2000, 1000 ) ;
	`)

	session, err := s.sessionDao.FindByDigest(s.ctx, s.conn, "deadbeef")
	s.Require().NoError(err)
	s.Assert().EqualValues(1, session.AccountID)
	s.Assert().EqualValues(2000, session.ExpiresAt)

	_, err = s.sessionDao.FindByDigest(s.ctx, s.conn, "cafebabe")
	s.Assert().True(IsErrNoRows(err))
}

func (s *SessionDaoTestSuite) TestDeleteByDigest() {
	s.requireAccount(1, "someone")
	s.requireExec(`
		insert into "sessions" ( "token_digest", "account_id", "expires_at", "created_at" )
		values ( 'deadbeef', 1, 2000, 1000 ) ;
	`)

	s.Assert().NoError(s.sessionDao.DeleteByDigest(s.ctx, s.conn, "deadbeef"))
	s.assertQuery(`select count(*) from "sessions" ;`, []string{"0"})

	// Deleting the same digest again must not be an error.
	s.Assert().NoError(s.sessionDao.DeleteByDigest(s.ctx, s.conn, "deadbeef"))
}

func (s *SessionDaoTestSuite) TestDeleteByAccount() {
	s.requireAccount(1, "someone")
	s.requireAccount(2, "elsewhere")
	s.requireExec(`
		insert into "sessions" ( "token_digest", "account_id", "expires_at", "created_at" )
		values
			( 'one', 1, 2000, 1000 ) ,
			( 'two', 1, 2000, 1000 ) ,
			( 'three', 2, 2000, 1000 ) ;
	`)

	s.Assert().NoError(s.sessionDao.DeleteByAccount(s.ctx, s.conn, 1))
	s.assertQuery(`select "token_digest" from "sessions" ;`, []string{"three"})
}

func (s *SessionDaoTestSuite) TestDeleteExpired() {
	s.requireAccount(1, "someone")
	s.requireExec(`
		insert into "sessions" ( "token_digest", "account_id", "expires_at", "created_at" )
		values
			( 'expired', 1, 1500, 1000 ) ,
			( 'boundary', 1, 2000, 1000 ) ,
			( 'alive', 1, 2500, 1000 ) ;
	`)

	// Expiry is inclusive of the boundary.
	count, err := s.sessionDao.DeleteExpired(s.ctx, s.conn, 2000)
	s.Require().NoError(err)
	s.Assert().EqualValues(2, count)

	s.assertQuery(`select "token_digest" from "sessions" ;`, []string{"alive"})
}
