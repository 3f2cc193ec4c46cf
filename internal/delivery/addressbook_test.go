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

	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/briefkasten/internal/models"
)

func TestAddressbookTestSuite(t *testing.T) {
	suite.Run(t, new(AddressbookTestSuite))
}

type AddressbookTestSuite struct {
	baseDeliveryTestSuite

	addressbook Addressbook
}

func (s *AddressbookTestSuite) SetupTest() {
	s.baseDeliveryTestSuite.SetupTest()
	s.addressbook = NewAddressbook(s.conn, s.aliasDao)
}

func (s *AddressbookTestSuite) TestCreate() {
	account := s.requireAccount("someone", 10)

	alias, err := s.addressbook.Create(s.ctx, account, "shopping", "example.org")
	s.Require().NoError(err)
	s.Assert().Equal("shopping@example.org", alias.Address())
	s.Assert().True(alias.Enabled)
	s.Assert().NotZero(alias.ID)
}

func (s *AddressbookTestSuite) TestCreateDefaultDomain() {
	account := s.requireAccount("someone", 10)

	alias, err := s.addressbook.Create(s.ctx, account, "shopping", "")
	s.Require().NoError(err)
	s.Assert().Equal("example.com", alias.Domain)
}

func (s *AddressbookTestSuite) TestCreateForeignDomain() {
	account := s.requireAccount("someone", 10)

	_, err := s.addressbook.Create(s.ctx, account, "shopping", "evil.tld")
	s.Assert().ErrorIs(err, ErrDomainNotLocal)
}

func (s *AddressbookTestSuite) TestCreateInvalidLocalPart() {
	account := s.requireAccount("someone", 10)

	_, err := s.addressbook.Create(s.ctx, account, "Not Valid!", "example.com")
	s.Assert().ErrorIs(err, models.ErrLocalPartInvalid)
}

func (s *AddressbookTestSuite) TestCreateTaken() {
	first := s.requireAccount("someone", 10)
	second := s.requireAccount("elsewhere", 10)

	_, err := s.addressbook.Create(s.ctx, first, "shopping", "example.com")
	s.Require().NoError(err)

	// Claimed is claimed, regardless of who asks.
	_, err = s.addressbook.Create(s.ctx, second, "shopping", "example.com")
	s.Assert().ErrorIs(err, ErrAliasTaken)
}

func (s *AddressbookTestSuite) TestCreateQuota() {
	account := s.requireAccount("someone", 2)

	_, err := s.addressbook.Create(s.ctx, account, "one", "example.com")
	s.Require().NoError(err)
	_, err = s.addressbook.Create(s.ctx, account, "two", "example.com")
	s.Require().NoError(err)

	_, err = s.addressbook.Create(s.ctx, account, "three", "example.com")
	s.Assert().ErrorIs(err, ErrAliasQuotaExceeded)
}

func (s *AddressbookTestSuite) TestDisabledAliasFreesQuota() {
	account := s.requireAccount("someone", 1)

	alias, err := s.addressbook.Create(s.ctx, account, "one", "example.com")
	s.Require().NoError(err)

	_, err = s.addressbook.Create(s.ctx, account, "two", "example.com")
	s.Assert().ErrorIs(err, ErrAliasQuotaExceeded)

	s.Require().NoError(s.addressbook.SetEnabled(s.ctx, account, alias.ID, false))

	// Only enabled aliases occupy quota.
	_, err = s.addressbook.Create(s.ctx, account, "two", "example.com")
	s.Assert().NoError(err)
}

func (s *AddressbookTestSuite) TestList() {
	account := s.requireAccount("someone", 10)
	s.requireAlias(account, "one", "example.com")
	s.requireAlias(account, "two", "example.com")

	other := s.requireAccount("elsewhere", 10)
	s.requireAlias(other, "three", "example.com")

	aliasSlice, err := s.addressbook.List(s.ctx, account)
	s.Require().NoError(err)
	s.Assert().Len(aliasSlice, 2)
}

func (s *AddressbookTestSuite) TestRemove() {
	account := s.requireAccount("someone", 10)
	alias := s.requireAlias(account, "shopping", "example.com")

	mail := models.MailEntity{
		ID:        "mail-1",
		AccountID: account.ID,
		LocalPart: alias.LocalPart,
		Domain:    alias.Domain,
		Sender:    "out@there.tld",
		Recipient: "shopping@example.com",
	}
	s.Require().NoError(s.mailDao.Insert(s.ctx, s.conn, &mail))

	s.Require().NoError(s.addressbook.Remove(s.ctx, account, alias.ID))

	aliasSlice, err := s.addressbook.List(s.ctx, account)
	s.Require().NoError(err)
	s.Assert().Empty(aliasSlice)

	// Historical mail outlives the alias.
	mailSlice, err := s.mailDao.FindByAccount(s.ctx, s.conn, account.ID)
	s.Require().NoError(err)
	s.Assert().Len(mailSlice, 1)
}

func (s *AddressbookTestSuite) TestRemoveForeignAlias() {
	account := s.requireAccount("someone", 10)
	other := s.requireAccount("elsewhere", 10)
	alias := s.requireAlias(other, "shopping", "example.com")

	// A foreign alias is indistinguishable from a missing one.
	err := s.addressbook.Remove(s.ctx, account, alias.ID)
	s.Assert().ErrorIs(err, ErrAliasNotFound)

	err = s.addressbook.Remove(s.ctx, account, 9999)
	s.Assert().ErrorIs(err, ErrAliasNotFound)
}
