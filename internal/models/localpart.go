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

import "errors"

// ErrLocalPartInvalid is used for alias local-parts outside the permitted charset or length.
var ErrLocalPartInvalid = errors.New("models: invalid local-part")

// maxLocalPartLength is the limit for alias local-parts. RFC#5321 permits up to 64 octets and
// aliases are created a lot stricter than addresses are parsed.
const maxLocalPartLength = 64

// ValidateLocalPart checks a local-part for use as a new alias. Only lowercase ascii letters,
// digits and the punctuation ".", "-" and "_" are permitted. The first rune must not be
// punctuation and the length is limited to 64.
//
// Inbound addresses are deliberately not held to this rule. It applies to alias creation only,
// so that the set of addresses this service hands out stays predictable.
func ValidateLocalPart(localPart string) error {
	if len(localPart) == 0 || len(localPart) > maxLocalPartLength {
		return ErrLocalPartInvalid
	}

	if isPunctuation(localPart[0]) {
		return ErrLocalPartInvalid
	}

	for i := 0; i < len(localPart); i++ {
		if !isLocalPartRune(localPart[i]) {
			return ErrLocalPartInvalid
		}
	}

	return nil
}

func isLocalPartRune(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= '0' && b <= '9') ||
		isPunctuation(b)
}

func isPunctuation(b byte) bool {
	return b == '.' || b == '-' || b == '_'
}
