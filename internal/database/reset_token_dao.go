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

// ResetTokenDao is a data access object for all reset token related queries.
type ResetTokenDao interface {
	// Insert inserts a new reset token. An account may hold several outstanding tokens.
	Insert(context.Context, Queryer, *models.ResetTokenEntity) error
	// FindByDigest returns the reset token with the given token digest. Expiry is checked by
	// the caller at read time.
	FindByDigest(context.Context, Queryer, string) (*models.ResetTokenEntity, error)
	// DeleteByDigest deletes a reset token by digest. Unlike sessions, deleting an unknown
	// digest fails with sql.ErrNoRows, so a token can never authorize two credential changes.
	DeleteByDigest(context.Context, Queryer, string) error
	// DeleteByAccount deletes all reset tokens of an account.
	DeleteByAccount(context.Context, Queryer, int64) error
	// DeleteExpired deletes all reset tokens expired at the given unix time and returns the
	// number of deleted rows.
	DeleteExpired(context.Context, Queryer, int64) (int64, error)
}

// resetTokenDao is the sqlite implementation of ResetTokenDao.
type resetTokenDao struct{}

// NewResetTokenDao creates a new ResetTokenDao.
func NewResetTokenDao() ResetTokenDao {
	return resetTokenDao{}
}

func (resetTokenDao) Insert(
	ctx context.Context,
	q Queryer,
	token *models.ResetTokenEntity,
) error {
	const query = `
		insert into "reset_tokens" (
			"token_digest" ,
			"account_id" ,
			"expires_at" ,
			"created_at"
		) values (
			:token_digest ,
			:account_id ,
			:expires_at ,
			:created_at
		) ;
	`

	result, err := execNamed(ctx, q, query, token)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

func (resetTokenDao) FindByDigest(
	ctx context.Context,
	q Queryer,
	digest string,
) (*models.ResetTokenEntity, error) {
	const query = `
		select *
		from "reset_tokens"
		where "token_digest" = $1 ;
	`

	var token models.ResetTokenEntity

	if err := selectOne(ctx, q, &token, query, digest); err != nil {
		return nil, err
	}

	return &token, nil
}

func (resetTokenDao) DeleteByDigest(ctx context.Context, q Queryer, digest string) error {
	const query = `
		delete from "reset_tokens"
		where "token_digest" = $1 ;
	`

	result, err := execPositional(ctx, q, query, digest)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

func (resetTokenDao) DeleteByAccount(ctx context.Context, q Queryer, accountID int64) error {
	const query = `
		delete from "reset_tokens"
		where "account_id" = $1 ;
	`

	_, err := execPositional(ctx, q, query, accountID)
	return err
}

func (resetTokenDao) DeleteExpired(ctx context.Context, q Queryer, now int64) (int64, error) {
	const query = `
		delete from "reset_tokens"
		where "expires_at" <= $1 ;
	`

	result, err := execPositional(ctx, q, query, now)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
