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

package main

import (
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefkasten/internal/smtp"
	"github.com/lukasdietrich/briefkasten/internal/textproto"
	"github.com/lukasdietrich/briefkasten/internal/web"
)

func init() {
	viper.SetDefault("smtp.address", ":25")
}

type startCommand struct {
	Proto *smtp.Proto
	Web   *web.Server
}

func (c *startCommand) run() error {
	errc := make(chan error, 2)

	go func() {
		errc <- textproto.NewServer(c.Proto).Listen(viper.GetString("smtp.address"))
	}()

	go func() {
		errc <- c.Web.Listen()
	}()

	// both servers are supposed to run forever
	return <-errc
}
