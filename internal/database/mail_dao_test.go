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
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/briefkasten/internal/models"
)

func TestMailDaoTestSuite(t *testing.T) {
	suite.Run(t, new(MailDaoTestSuite))
}

type MailDaoTestSuite struct {
	baseDatabaseTestSuite

	mailDao MailDao
}

func (s *MailDaoTestSuite) SetupSuite() {
	s.mailDao = NewMailDao()
}

func (s *MailDaoTestSuite) requireMail(id string, accountID int64, receivedAt int64) {
	s.T().Helper()
	s.requireExec(fmt.Sprintf(`
		insert into "mails"
			( "id", "account_id", "local_part", "domain", "sender", "recipient"
			, "subject", "date", "text_body", "html_body", "blob_key", "size", "received_at" )
		values
			( '%s', %d, 'someone', 'example.com', 'out@there.tld'
			, 'someone@example.com', 'hello', null, 'hi', '', null, 2, %d ) ;
	`, id, accountID, receivedAt))
}

func (s *MailDaoTestSuite) TestInsert() {
	s.requireAccount(1, "someone")

	mail := models.MailEntity{
		ID:         "abc123",
		AccountID:  1,
		LocalPart:  "someone",
		Domain:     "example.com",
		Sender:     "out@there.tld",
		Recipient:  "someone@example.com",
		Subject:    "hello",
		Date:       sql.NullInt64{Int64: 1234, Valid: true},
		TextBody:   "hi",
		HTMLBody:   "",
		BlobKey:    sql.NullString{String: "blob-1", Valid: true},
		Size:       2,
		ReceivedAt: 5678,
	}

	s.Assert().NoError(s.mailDao.Insert(s.ctx, s.conn, &mail))

	s.assertQuery(
		`
			select "id", "account_id", "sender", "subject", "blob_key", "received_at"
			from "mails" ;
		`,
		[]string{"abc123", "1", "out@there.tld", "hello", "blob-1", "5678"},
	)
}

func (s *MailDaoTestSuite) TestDelete() {
	s.requireAccount(1, "someone")
	s.requireMail("abc123", 1, 0)

	s.Assert().NoError(s.mailDao.Delete(s.ctx, s.conn, &models.MailEntity{ID: "abc123"}))
	s.assertQuery(`select count(*) from "mails" ;`, []string{"0"})
}

func (s *MailDaoTestSuite) TestDeleteByAccount() {
	s.requireAccount(1, "someone")
	s.requireAccount(2, "elsewhere")
	s.requireMail("one", 1, 0)
	s.requireMail("two", 1, 0)
	s.requireMail("three", 2, 0)

	s.Assert().NoError(s.mailDao.DeleteByAccount(s.ctx, s.conn, 1))
	s.assertQuery(`select "id" from "mails" ;`, []string{"three"})
}

func (s *MailDaoTestSuite) TestFindByAccount() {
	s.requireAccount(1, "someone")
	s.requireMail("later", 1, 2000)
	s.requireMail("earlier", 1, 1000)

	mailSlice, err := s.mailDao.FindByAccount(s.ctx, s.conn, 1)
	s.Require().NoError(err)
	s.Require().Len(mailSlice, 2)
	s.Assert().Equal("earlier", mailSlice[0].ID)
	s.Assert().Equal("later", mailSlice[1].ID)
}

func (s *MailDaoTestSuite) TestFindOwned() {
	s.requireAccount(1, "someone")
	s.requireAccount(2, "elsewhere")
	s.requireMail("abc123", 1, 0)

	mail, err := s.mailDao.FindOwned(s.ctx, s.conn, "abc123", 1)
	s.Require().NoError(err)
	s.Assert().Equal("someone@example.com", mail.Recipient)

	// The same lookup by another account must look like a missing mail.
	_, err = s.mailDao.FindOwned(s.ctx, s.conn, "abc123", 2)
	s.Assert().True(IsErrNoRows(err))
}

func (s *MailDaoTestSuite) TestFindBlobKeysByAccount() {
	s.requireAccount(1, "someone")
	s.requireMail("without", 1, 0)
	s.requireExec(`
		insert into "mails"
			( "id", "account_id", "local_part", "domain", "sender", "recipient"
			, "subject", "date", "text_body", "html_body", "blob_key", "size", "received_at" )
		values
			( 'with', 1, 'someone', 'example.com', 'out@there.tld'
			, 'someone@example.com', 'hello', null, 'hi', '', 'blob-1', 2, 0 ) ;
	`)

	keySlice, err := s.mailDao.FindBlobKeysByAccount(s.ctx, s.conn, 1)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"blob-1"}, keySlice)
}
