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

// AccountDao is a data access object for all account related queries.
type AccountDao interface {
	// Insert inserts a new account.
	Insert(context.Context, Queryer, *models.AccountEntity) error
	// Update updates an existing account including its credential fields.
	Update(context.Context, Queryer, *models.AccountEntity) error
	// Delete deletes an existing account.
	Delete(context.Context, Queryer, *models.AccountEntity) error
	// FindAll returns all accounts ordered by creation time.
	FindAll(context.Context, Queryer) ([]models.AccountEntity, error)
	// FindByID returns the account with the given id.
	FindByID(context.Context, Queryer, int64) (*models.AccountEntity, error)
	// FindByUsername returns the account with the given username.
	FindByUsername(context.Context, Queryer, string) (*models.AccountEntity, error)
	// FindByEmail returns the account with the given email.
	FindByEmail(context.Context, Queryer, string) (*models.AccountEntity, error)
	// CountByRole returns the number of accounts with the given role.
	CountByRole(context.Context, Queryer, models.Role) (int64, error)
	// CountEnabledByRole returns the number of enabled accounts with the given role.
	CountEnabledByRole(context.Context, Queryer, models.Role) (int64, error)
}

// accountDao is the sqlite implementation of AccountDao.
type accountDao struct{}

// NewAccountDao creates a new AccountDao.
func NewAccountDao() AccountDao {
	return accountDao{}
}

func (accountDao) Insert(ctx context.Context, q Queryer, account *models.AccountEntity) error {
	const query = `
		insert into "accounts" (
			"username" ,
			"email" ,
			"salt" ,
			"hash" ,
			"iterations" ,
			"role" ,
			"alias_quota" ,
			"enabled" ,
			"created_at"
		) values (
			:username ,
			:email ,
			:salt ,
			:hash ,
			:iterations ,
			:role ,
			:alias_quota ,
			:enabled ,
			:created_at
		) ;
	`

	result, err := execNamed(ctx, q, query, account)
	if err != nil {
		return err
	}

	if err := ensureRowsAffected(result); err != nil {
		return err
	}

	account.ID, err = result.LastInsertId()
	return err
}

func (accountDao) Update(ctx context.Context, q Queryer, account *models.AccountEntity) error {
	const query = `
		update "accounts"
		set "username"    = :username ,
			"email"       = :email ,
			"salt"        = :salt ,
			"hash"        = :hash ,
			"iterations"  = :iterations ,
			"role"        = :role ,
			"alias_quota" = :alias_quota ,
			"enabled"     = :enabled
		where "id" = :id ;
	`

	result, err := execNamed(ctx, q, query, account)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

func (accountDao) Delete(ctx context.Context, q Queryer, account *models.AccountEntity) error {
	const query = `
		delete from "accounts"
		where "id" = :id ;
	`

	result, err := execNamed(ctx, q, query, account)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

func (accountDao) FindAll(ctx context.Context, q Queryer) ([]models.AccountEntity, error) {
	const query = `
		select *
		from "accounts"
		order by "created_at" asc ;
	`

	var accountSlice []models.AccountEntity

	if err := selectSlice(ctx, q, &accountSlice, query); err != nil {
		return nil, err
	}

	return accountSlice, nil
}

func (accountDao) FindByID(
	ctx context.Context,
	q Queryer,
	id int64,
) (*models.AccountEntity, error) {
	const query = `
		select *
		from "accounts"
		where "id" = $1 ;
	`

	var account models.AccountEntity

	if err := selectOne(ctx, q, &account, query, id); err != nil {
		return nil, err
	}

	return &account, nil
}

func (accountDao) FindByUsername(
	ctx context.Context,
	q Queryer,
	username string,
) (*models.AccountEntity, error) {
	const query = `
		select *
		from "accounts"
		where "username" = $1 ;
	`

	var account models.AccountEntity

	if err := selectOne(ctx, q, &account, query, username); err != nil {
		return nil, err
	}

	return &account, nil
}

func (accountDao) FindByEmail(
	ctx context.Context,
	q Queryer,
	email string,
) (*models.AccountEntity, error) {
	const query = `
		select *
		from "accounts"
		where "email" = $1 ;
	`

	var account models.AccountEntity

	if err := selectOne(ctx, q, &account, query, email); err != nil {
		return nil, err
	}

	return &account, nil
}

func (accountDao) CountByRole(
	ctx context.Context,
	q Queryer,
	role models.Role,
) (int64, error) {
	const query = `
		select count(*)
		from "accounts"
		where "role" = $1 ;
	`

	var count int64

	if err := selectOne(ctx, q, &count, query, role); err != nil {
		return 0, err
	}

	return count, nil
}

func (accountDao) CountEnabledByRole(
	ctx context.Context,
	q Queryer,
	role models.Role,
) (int64, error) {
	const query = `
		select count(*)
		from "accounts"
		where "role" = $1
		  and "enabled" ;
	`

	var count int64

	if err := selectOne(ctx, q, &count, query, role); err != nil {
		return 0, err
	}

	return count, nil
}
