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

package smtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	var cmd command

	cmd.parse("NOOP")

	assert.Equal(t, "NOOP", cmd.head)
	assert.Empty(t, cmd.tail)

	cmd.parse("VRFY foo@bar.com")

	assert.Equal(t, "VRFY", cmd.head)
	assert.Equal(t, "foo@bar.com", cmd.tail)
}

func TestArgs(t *testing.T) {
	var cmd command

	cmd.parse("MAIL FROM:<foo@bar.com> SIZE=1337 BODY=8BITMIME")

	arg, params, err := cmd.args("FROM")

	assert.NoError(t, err)
	assert.Equal(t, "foo@bar.com", arg)
	assert.Equal(t, map[string]string{"SIZE": "1337", "BODY": "8BITMIME"}, params)
}

func TestArgsCaseInsensitive(t *testing.T) {
	var cmd command

	cmd.parse("MAIL from:<foo@bar.com> size=42")

	arg, params, err := cmd.args("FROM")

	assert.NoError(t, err)
	assert.Equal(t, "foo@bar.com", arg)
	assert.Equal(t, map[string]string{"SIZE": "42"}, params)
}

func TestArgsEmptyReversePath(t *testing.T) {
	var cmd command

	cmd.parse("MAIL FROM:<>")

	arg, params, err := cmd.args("FROM")

	assert.NoError(t, err)
	assert.Empty(t, arg)
	assert.Nil(t, params)
}

func TestArgsSyntaxError(t *testing.T) {
	var cmd command

	for _, tail := range []string{
		"MAIL",
		"MAIL FROM",
		"MAIL FROM:foo@bar.com",
		"MAIL FROM:<foo@bar.com",
		"MAIL TO:<foo@bar.com>",
	} {
		t.Run(tail, func(t *testing.T) {
			cmd.parse(tail)

			_, _, err := cmd.args("FROM")
			assert.ErrorIs(t, err, errCommandSyntax)
		})
	}
}
