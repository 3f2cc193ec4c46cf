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
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefkasten/internal/models"
)

func init() {
	viper.SetDefault("security.resets.relay.addr", "localhost:25")
	viper.SetDefault("security.resets.relay.from", "noreply@localhost")
}

// Sender delivers a reset token to the holder of an account.
type Sender interface {
	SendResetToken(ctx context.Context, account *models.AccountEntity, token string) error
}

// NewSender creates a Sender, that relays a plain text mail via smtp.
//
// `security.resets.relay.addr` is the address of the relay server.
// `security.resets.relay.from` is the sender address for reset mails.
func NewSender() Sender {
	return relaySender{
		addr: viper.GetString("security.resets.relay.addr"),
		from: viper.GetString("security.resets.relay.from"),
	}
}

type relaySender struct {
	addr string
	from string
}

func (r relaySender) SendResetToken(
	ctx context.Context,
	account *models.AccountEntity,
	token string,
) error {
	var b strings.Builder

	fmt.Fprintf(&b, "From: <%s>\r\n", r.from)
	fmt.Fprintf(&b, "To: <%s>\r\n", account.Email)
	fmt.Fprintf(&b, "Subject: Password reset\r\n")
	fmt.Fprintf(&b, "\r\n")
	fmt.Fprintf(&b, "Hello %s,\r\n", account.Username)
	fmt.Fprintf(&b, "\r\n")
	fmt.Fprintf(&b, "use the following token to reset your password:\r\n")
	fmt.Fprintf(&b, "\r\n")
	fmt.Fprintf(&b, "\t%s\r\n", token)
	fmt.Fprintf(&b, "\r\n")
	fmt.Fprintf(&b, "If you did not request a reset, you can ignore this mail.\r\n")

	return smtp.SendMail(r.addr, nil, r.from, []string{account.Email}, []byte(b.String()))
}
