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

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"

	"github.com/spf13/viper"
	"golang.org/x/crypto/pbkdf2"

	"github.com/lukasdietrich/briefkasten/internal/models"
)

var (
	// ErrPasswordMismatch is returned when a password does not match the stored hash.
	ErrPasswordMismatch = errors.New("crypto: password mismatch")

	// ErrIterationsUnsupported is returned when a work factor is outside of
	// [MinIterations, MaxIterations]. Credentials derived elsewhere with a higher work factor
	// stay detectable this way instead of failing as a wrong password.
	ErrIterationsUnsupported = errors.New("crypto: derivation not supported")
)

const (
	// MinIterations is the lowest permitted pbkdf2 work factor.
	MinIterations = 10000
	// MaxIterations is the highest permitted pbkdf2 work factor.
	MaxIterations = 5000000

	saltLength = 16
	keyLength  = 32
)

func init() {
	viper.SetDefault("security.crypto.pbkdf2.iterations", 600000)
}

// encoding is the reversible text encoding for salts and hashes, so both can be persisted as
// plain text columns.
var encoding = base64.RawURLEncoding

// Hash derives a new credential from a password and stores salt, hash and work factor in the
// account. A fresh random salt is generated per call. The work factor is read from viper via
// `security.crypto.pbkdf2.iterations` and must lie within [MinIterations, MaxIterations].
func Hash(account *models.AccountEntity, pass []byte) error {
	iterations := viper.GetInt("security.crypto.pbkdf2.iterations")

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return err
	}

	hash, err := derive(pass, salt, iterations)
	if err != nil {
		return err
	}

	account.Salt = encoding.EncodeToString(salt)
	account.Hash = encoding.EncodeToString(hash)
	account.Iterations = iterations

	return nil
}

// Verify checks if a password matches the credential stored in the account. If the password does
// not match, ErrPasswordMismatch is returned. If the stored work factor is not supported,
// ErrIterationsUnsupported is returned, which callers should route to a forced credential reset.
func Verify(account *models.AccountEntity, pass []byte) error {
	salt, err := encoding.DecodeString(account.Salt)
	if err != nil {
		return err
	}

	expected, err := encoding.DecodeString(account.Hash)
	if err != nil {
		return err
	}

	actual, err := derive(pass, salt, account.Iterations)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare(expected, actual) != 1 {
		return ErrPasswordMismatch
	}

	return nil
}

// derive applies pbkdf2 with sha256. The work factor is never clamped silently. A value outside
// of the supported range fails with ErrIterationsUnsupported.
func derive(pass, salt []byte, iterations int) ([]byte, error) {
	if iterations < MinIterations || iterations > MaxIterations {
		return nil, ErrIterationsUnsupported
	}

	return pbkdf2.Key(pass, salt, iterations, keyLength, sha256.New), nil
}
