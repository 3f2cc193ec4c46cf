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

// MailDao is a data access object for all mail related queries.
type MailDao interface {
	// Insert inserts a new mail record.
	Insert(context.Context, Queryer, *models.MailEntity) error
	// Delete deletes an existing mail record.
	Delete(context.Context, Queryer, *models.MailEntity) error
	// DeleteByAccount deletes all mail records of an account.
	DeleteByAccount(context.Context, Queryer, int64) error
	// FindByAccount returns all mail records of an account ordered by receipt time.
	FindByAccount(context.Context, Queryer, int64) ([]models.MailEntity, error)
	// FindOwned returns a mail record by id, but only if it is owned by the account.
	FindOwned(context.Context, Queryer, string, int64) (*models.MailEntity, error)
	// FindBlobKeysByAccount returns the raw-payload keys of all mail records of an account.
	FindBlobKeysByAccount(context.Context, Queryer, int64) ([]string, error)
}

// mailDao is the sqlite implementation of MailDao.
type mailDao struct{}

// NewMailDao creates a new MailDao.
func NewMailDao() MailDao {
	return mailDao{}
}

func (mailDao) Insert(ctx context.Context, q Queryer, mail *models.MailEntity) error {
	const query = `
		insert into "mails" (
			"id" ,
			"account_id" ,
			"local_part" ,
			"domain" ,
			"sender" ,
			"recipient" ,
			"subject" ,
			"date" ,
			"text_body" ,
			"html_body" ,
			"blob_key" ,
			"size" ,
			"received_at"
		) values (
			:id ,
			:account_id ,
			:local_part ,
			:domain ,
			:sender ,
			:recipient ,
			:subject ,
			:date ,
			:text_body ,
			:html_body ,
			:blob_key ,
			:size ,
			:received_at
		) ;
	`

	result, err := execNamed(ctx, q, query, mail)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

func (mailDao) Delete(ctx context.Context, q Queryer, mail *models.MailEntity) error {
	const query = `
		delete from "mails"
		where "id" = :id ;
	`

	result, err := execNamed(ctx, q, query, mail)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

func (mailDao) DeleteByAccount(ctx context.Context, q Queryer, accountID int64) error {
	const query = `
		delete from "mails"
		where "account_id" = $1 ;
	`

	_, err := execPositional(ctx, q, query, accountID)
	return err
}

func (mailDao) FindByAccount(
	ctx context.Context,
	q Queryer,
	accountID int64,
) ([]models.MailEntity, error) {
	const query = `
		select *
		from "mails"
		where "account_id" = $1
		order by "received_at" asc ;
	`

	var mailSlice []models.MailEntity

	if err := selectSlice(ctx, q, &mailSlice, query, accountID); err != nil {
		return nil, err
	}

	return mailSlice, nil
}

func (mailDao) FindOwned(
	ctx context.Context,
	q Queryer,
	id string,
	accountID int64,
) (*models.MailEntity, error) {
	const query = `
		select *
		from "mails"
		where "id" = $1
		  and "account_id" = $2 ;
	`

	var mail models.MailEntity

	if err := selectOne(ctx, q, &mail, query, id, accountID); err != nil {
		return nil, err
	}

	return &mail, nil
}

func (mailDao) FindBlobKeysByAccount(
	ctx context.Context,
	q Queryer,
	accountID int64,
) ([]string, error) {
	const query = `
		select "blob_key"
		from "mails"
		where "account_id" = $1
		  and "blob_key" is not null ;
	`

	var keySlice []string

	if err := selectSlice(ctx, q, &keySlice, query, accountID); err != nil {
		return nil, err
	}

	return keySlice, nil
}
