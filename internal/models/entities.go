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

package models

import (
	"database/sql"
)

// Role is the authorization level of an account.
type Role string

const (
	// RoleUser is a regular account, that owns aliases and mail.
	RoleUser = Role("user")
	// RoleAdmin is an account, that may additionally manage other accounts.
	RoleAdmin = Role("admin")
)

// AccountEntity is the entity for the "accounts" table.
type AccountEntity struct {
	ID         int64  `db:"id"`
	Username   string `db:"username"`
	Email      string `db:"email"`
	Salt       string `db:"salt"`
	Hash       string `db:"hash"`
	Iterations int    `db:"iterations"`
	Role       Role   `db:"role"`
	AliasQuota int    `db:"alias_quota"`
	Enabled    bool   `db:"enabled"`
	CreatedAt  int64  `db:"created_at"`
}

// AliasEntity is the entity for the "aliases" table. The pair of local-part and domain is unique
// across all accounts.
type AliasEntity struct {
	ID        int64  `db:"id"`
	LocalPart string `db:"local_part"`
	Domain    string `db:"domain"`
	AccountID int64  `db:"account_id"`
	Enabled   bool   `db:"enabled"`
	CreatedAt int64  `db:"created_at"`
}

// Address returns the alias as "local-part@domain".
func (a AliasEntity) Address() string {
	return a.LocalPart + "@" + a.Domain
}

// MailEntity is the entity for the "mails" table. LocalPart and Domain are denormalized copies of
// the alias the mail was accepted for, so that the record survives alias deletion.
type MailEntity struct {
	ID         string         `db:"id"`
	AccountID  int64          `db:"account_id"`
	LocalPart  string         `db:"local_part"`
	Domain     string         `db:"domain"`
	Sender     string         `db:"sender"`
	Recipient  string         `db:"recipient"`
	Subject    string         `db:"subject"`
	Date       sql.NullInt64  `db:"date"`
	TextBody   string         `db:"text_body"`
	HTMLBody   string         `db:"html_body"`
	BlobKey    sql.NullString `db:"blob_key"`
	Size       int64          `db:"size"`
	ReceivedAt int64          `db:"received_at"`
}

// SessionEntity is the entity for the "sessions" table. Only the digest of a bearer token is
// stored, never the token itself.
type SessionEntity struct {
	TokenDigest string `db:"token_digest"`
	AccountID   int64  `db:"account_id"`
	ExpiresAt   int64  `db:"expires_at"`
	CreatedAt   int64  `db:"created_at"`
}

// ResetTokenEntity is the entity for the "reset_tokens" table. Like sessions, only the digest of
// a token is stored.
type ResetTokenEntity struct {
	TokenDigest string `db:"token_digest"`
	AccountID   int64  `db:"account_id"`
	ExpiresAt   int64  `db:"expires_at"`
	CreatedAt   int64  `db:"created_at"`
}
