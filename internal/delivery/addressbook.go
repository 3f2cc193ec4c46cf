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
	"errors"
	"time"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefkasten/internal/database"
	"github.com/lukasdietrich/briefkasten/internal/log"
	"github.com/lukasdietrich/briefkasten/internal/models"
)

func init() {
	viper.SetDefault("mail.domains", []string{"localhost"})
}

var (
	// ErrDomainNotLocal is returned when an alias is requested for a domain this server does not
	// consider itself responsible for.
	ErrDomainNotLocal = errors.New("delivery: domain not local")

	// ErrAliasTaken is returned when an alias address is already claimed.
	ErrAliasTaken = errors.New("delivery: alias taken")

	// ErrAliasQuotaExceeded is returned when an account has no alias quota left.
	ErrAliasQuotaExceeded = errors.New("delivery: alias quota exceeded")

	// ErrAliasNotFound is returned when an alias does not exist. Aliases of other accounts look
	// exactly the same as missing ones.
	ErrAliasNotFound = errors.New("delivery: alias not found")
)

// Addressbook manages the aliases of accounts.
type Addressbook interface {
	// List returns all aliases of an account.
	List(ctx context.Context, account *models.AccountEntity) ([]models.AliasEntity, error)
	// Create claims a new alias for an account. An empty domain picks the first configured local
	// domain. Disabled aliases still count as claimed, but only enabled ones occupy quota.
	Create(ctx context.Context, account *models.AccountEntity, localPart, domain string) (*models.AliasEntity, error)
	// SetEnabled toggles an alias. A disabled alias stops accepting mail but stays claimed.
	SetEnabled(ctx context.Context, account *models.AccountEntity, aliasID int64, enabled bool) error
	// Remove deletes an alias. Historical mail accepted through it is kept. Removing an alias of
	// another account fails with ErrAliasNotFound.
	Remove(ctx context.Context, account *models.AccountEntity, aliasID int64) error
}

// NewAddressbook creates a new Addressbook.
func NewAddressbook(conn database.Conn, aliasDao database.AliasDao) Addressbook {
	return addressbook{
		conn:     conn,
		aliasDao: aliasDao,
	}
}

type addressbook struct {
	conn     database.Conn
	aliasDao database.AliasDao
}

func (a addressbook) List(
	ctx context.Context,
	account *models.AccountEntity,
) ([]models.AliasEntity, error) {
	return a.aliasDao.FindByAccount(ctx, a.conn, account.ID)
}

func (a addressbook) Create(
	ctx context.Context,
	account *models.AccountEntity,
	localPart string,
	domain string,
) (*models.AliasEntity, error) {
	if err := models.ValidateLocalPart(localPart); err != nil {
		return nil, err
	}

	domain, err := resolveLocalDomain(domain)
	if err != nil {
		return nil, err
	}

	tx, err := a.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}

	defer tx.Rollback()

	count, err := a.aliasDao.CountEnabledByAccount(ctx, tx, account.ID)
	if err != nil {
		return nil, err
	}

	if count >= int64(account.AliasQuota) {
		return nil, ErrAliasQuotaExceeded
	}

	alias := models.AliasEntity{
		LocalPart: localPart,
		Domain:    domain,
		AccountID: account.ID,
		Enabled:   true,
		CreatedAt: time.Now().Unix(),
	}

	if err := a.aliasDao.Insert(ctx, tx, &alias); err != nil {
		if database.IsErrUnique(err) {
			return nil, ErrAliasTaken
		}

		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.InfoContext(ctx).
		Int64("account", account.ID).
		Str("alias", alias.Address()).
		Msg("alias created")

	return &alias, nil
}

func (a addressbook) SetEnabled(
	ctx context.Context,
	account *models.AccountEntity,
	aliasID int64,
	enabled bool,
) error {
	tx, err := a.conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	alias, err := a.findOwned(ctx, tx, account, aliasID)
	if err != nil {
		return err
	}

	alias.Enabled = enabled

	if err := a.aliasDao.Update(ctx, tx, alias); err != nil {
		return err
	}

	return tx.Commit()
}

func (a addressbook) Remove(
	ctx context.Context,
	account *models.AccountEntity,
	aliasID int64,
) error {
	tx, err := a.conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	alias, err := a.findOwned(ctx, tx, account, aliasID)
	if err != nil {
		return err
	}

	// Mail accepted through this alias is kept. The mail records carry their own copy of the
	// address.
	if err := a.aliasDao.Delete(ctx, tx, alias); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.InfoContext(ctx).
		Int64("account", account.ID).
		Str("alias", alias.Address()).
		Msg("alias removed")

	return nil
}

// findOwned loads an alias of an account. Foreign and missing aliases are indistinguishable.
func (a addressbook) findOwned(
	ctx context.Context,
	tx database.Tx,
	account *models.AccountEntity,
	aliasID int64,
) (*models.AliasEntity, error) {
	aliasSlice, err := a.aliasDao.FindByAccount(ctx, tx, account.ID)
	if err != nil {
		return nil, err
	}

	for i := range aliasSlice {
		if aliasSlice[i].ID == aliasID {
			return &aliasSlice[i], nil
		}
	}

	return nil, ErrAliasNotFound
}

// resolveLocalDomain validates a domain against the configured local domains. An empty domain
// resolves to the first configured one.
func resolveLocalDomain(domain string) (string, error) {
	domainSlice := viper.GetStringSlice("mail.domains")
	if len(domainSlice) == 0 {
		return "", ErrDomainNotLocal
	}

	if domain == "" {
		return domainSlice[0], nil
	}

	normalized, err := models.DomainToUnicode(domain)
	if err != nil {
		return "", err
	}

	for _, candidate := range domainSlice {
		if candidate == normalized {
			return normalized, nil
		}
	}

	return "", ErrDomainNotLocal
}
