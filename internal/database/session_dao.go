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

// SessionDao is a data access object for all session related queries.
type SessionDao interface {
	// Insert inserts a new session.
	Insert(context.Context, Queryer, *models.SessionEntity) error
	// FindByDigest returns the session with the given token digest. Expiry is not considered
	// here, callers check it at read time.
	FindByDigest(context.Context, Queryer, string) (*models.SessionEntity, error)
	// DeleteByDigest deletes a session by token digest. Deleting an unknown digest is not an
	// error.
	DeleteByDigest(context.Context, Queryer, string) error
	// DeleteByAccount deletes all sessions of an account.
	DeleteByAccount(context.Context, Queryer, int64) error
	// DeleteExpired deletes all sessions expired at the given unix time and returns the number
	// of deleted rows.
	DeleteExpired(context.Context, Queryer, int64) (int64, error)
}

// sessionDao is the sqlite implementation of SessionDao.
type sessionDao struct{}

// NewSessionDao creates a new SessionDao.
func NewSessionDao() SessionDao {
	return sessionDao{}
}

func (sessionDao) Insert(ctx context.Context, q Queryer, session *models.SessionEntity) error {
	const query = `
		insert into "sessions" (
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

	result, err := execNamed(ctx, q, query, session)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

func (sessionDao) FindByDigest(
	ctx context.Context,
	q Queryer,
	digest string,
) (*models.SessionEntity, error) {
	const query = `
		select *
		from "sessions"
		where "token_digest" = $1 ;
	`

	var session models.SessionEntity

	if err := selectOne(ctx, q, &session, query, digest); err != nil {
		return nil, err
	}

	return &session, nil
}

func (sessionDao) DeleteByDigest(ctx context.Context, q Queryer, digest string) error {
	const query = `
		delete from "sessions"
		where "token_digest" = $1 ;
	`

	_, err := execPositional(ctx, q, query, digest)
	return err
}

func (sessionDao) DeleteByAccount(ctx context.Context, q Queryer, accountID int64) error {
	const query = `
		delete from "sessions"
		where "account_id" = $1 ;
	`

	_, err := execPositional(ctx, q, query, accountID)
	return err
}

func (sessionDao) DeleteExpired(ctx context.Context, q Queryer, now int64) (int64, error) {
	const query = `
		delete from "sessions"
		where "expires_at" <= $1 ;
	`

	result, err := execPositional(ctx, q, query, now)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
