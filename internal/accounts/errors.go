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

package accounts

import (
	"errors"
)

var (
	// ErrCredentialsInvalid covers every authentication failure. An unknown username, a wrong
	// password and a disabled account are indistinguishable to the caller.
	ErrCredentialsInvalid = errors.New("accounts: invalid credentials")

	// ErrResetRequired is returned when a credential exists, but cannot be verified with the
	// supported derivation parameters. The account holder has to reset their password.
	ErrResetRequired = errors.New("accounts: credential reset required")

	// ErrUsernameTaken is returned when a username is already registered.
	ErrUsernameTaken = errors.New("accounts: username taken")

	// ErrEmailTaken is returned when an email is already registered.
	ErrEmailTaken = errors.New("accounts: email taken")

	// ErrSessionInvalid covers every session failure. An unknown token, an expired session and a
	// disabled account are indistinguishable to the caller.
	ErrSessionInvalid = errors.New("accounts: invalid session")

	// ErrResetTokenInvalid covers every reset token failure. An unknown token and an expired one
	// are indistinguishable to the caller.
	ErrResetTokenInvalid = errors.New("accounts: invalid reset token")

	// ErrLastAdmin is returned when an operation would leave the system without an enabled
	// administrator.
	ErrLastAdmin = errors.New("accounts: cannot remove last admin")

	// ErrSelfDelete is returned when an administrator tries to delete their own account.
	ErrSelfDelete = errors.New("accounts: cannot delete own account")
)
