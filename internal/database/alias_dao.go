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
	"context"

	"github.com/lukasdietrich/briefkasten/internal/models"
)

// AliasDao is a data access object for all alias related queries.
type AliasDao interface {
	// Insert inserts a new alias. The unique constraint on (local_part, domain) is enforced by
	// the database, not by a prior lookup.
	Insert(context.Context, Queryer, *models.AliasEntity) error
	// Update updates an existing alias.
	Update(context.Context, Queryer, *models.AliasEntity) error
	// Delete deletes an existing alias.
	Delete(context.Context, Queryer, *models.AliasEntity) error
	// DeleteByAccount deletes all aliases of an account.
	DeleteByAccount(context.Context, Queryer, int64) error
	// FindByAccount returns all aliases of an account.
	FindByAccount(context.Context, Queryer, int64) ([]models.AliasEntity, error)
	// FindByAddress returns the alias with the given local-part and domain.
	FindByAddress(context.Context, Queryer, string, string) (*models.AliasEntity, error)
	// CountEnabledByAccount returns the number of enabled aliases of an account. Disabled
	// aliases do not occupy quota.
	CountEnabledByAccount(context.Context, Queryer, int64) (int64, error)
}

// aliasDao is the sqlite implementation of AliasDao.
type aliasDao struct{}

// NewAliasDao creates a new AliasDao.
func NewAliasDao() AliasDao {
	return aliasDao{}
}

func (aliasDao) Insert(ctx context.Context, q Queryer, alias *models.AliasEntity) error {
	const query = `
		insert into "aliases" (
			"local_part" ,
			"domain" ,
			"account_id" ,
			"enabled" ,
			"created_at"
		) values (
			:local_part ,
			:domain ,
			:account_id ,
			:enabled ,
			:created_at
		) ;
	`

	result, err := execNamed(ctx, q, query, alias)
	if err != nil {
		return err
	}

	if err := ensureRowsAffected(result); err != nil {
		return err
	}

	alias.ID, err = result.LastInsertId()
	return err
}

func (aliasDao) Update(ctx context.Context, q Queryer, alias *models.AliasEntity) error {
	const query = `
		update "aliases"
		set "enabled" = :enabled
		where "id" = :id ;
	`

	result, err := execNamed(ctx, q, query, alias)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

func (aliasDao) Delete(ctx context.Context, q Queryer, alias *models.AliasEntity) error {
	const query = `
		delete from "aliases"
		where "id" = :id ;
	`

	result, err := execNamed(ctx, q, query, alias)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

func (aliasDao) DeleteByAccount(ctx context.Context, q Queryer, accountID int64) error {
	const query = `
		delete from "aliases"
		where "account_id" = $1 ;
	`

	_, err := execPositional(ctx, q, query, accountID)
	return err
}

func (aliasDao) FindByAccount(
	ctx context.Context,
	q Queryer,
	accountID int64,
) ([]models.AliasEntity, error) {
	const query = `
		select *
		from "aliases"
		where "account_id" = $1
		order by "domain" asc , "local_part" asc ;
	`

	var aliasSlice []models.AliasEntity

	if err := selectSlice(ctx, q, &aliasSlice, query, accountID); err != nil {
		return nil, err
	}

	return aliasSlice, nil
}

func (aliasDao) FindByAddress(
	ctx context.Context,
	q Queryer,
	localPart string,
	domain string,
) (*models.AliasEntity, error) {
	const query = `
		select *
		from "aliases"
		where "local_part" = $1
		  and "domain" = $2 ;
	`

	var alias models.AliasEntity

	if err := selectOne(ctx, q, &alias, query, localPart, domain); err != nil {
		return nil, err
	}

	return &alias, nil
}

func (aliasDao) CountEnabledByAccount(
	ctx context.Context,
	q Queryer,
	accountID int64,
) (int64, error) {
	const query = `
		select count(*)
		from "aliases"
		where "account_id" = $1
		  and "enabled" ;
	`

	var count int64

	if err := selectOne(ctx, q, &count, query, accountID); err != nil {
		return 0, err
	}

	return count, nil
}
