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
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefkasten/internal/crypto"
	"github.com/lukasdietrich/briefkasten/internal/database"
	"github.com/lukasdietrich/briefkasten/internal/models"
	"github.com/lukasdietrich/briefkasten/internal/storage"
)

// shellCommand is an interactive administration shell for operators. It works on the
// database directly and is not subject to the rules of the web api, eg. it may delete
// the last administrator.
type shellCommand struct {
	Conn          database.Conn
	AccountDao    database.AccountDao
	AliasDao      database.AliasDao
	MailDao       database.MailDao
	SessionDao    database.SessionDao
	ResetTokenDao database.ResetTokenDao
	Blobs         storage.Blobs
}

func (s *shellCommand) run() error {
	shell := ishell.New()
	s.setupShell(shell)
	shell.Run()

	return nil
}

func (s *shellCommand) setupShell(shell *ishell.Shell) {
	shell.AddCmd(composeShellCmd(
		ishell.Cmd{
			Name: "accounts",
			Help: "manage accounts",
		},
		[]*ishell.Cmd{
			{
				Name: "list",
				Help: "list all accounts",
				Func: s.wrapShellFunc(s.accountsList),
			},
			{
				Name: "add",
				Help: "add a new account",
				Func: s.wrapShellFunc(s.accountsAdd),
			},
			{
				Name: "remove",
				Help: "remove an account and everything it owns",
				Func: s.wrapShellFunc(s.accountsRemove),
			},
			{
				Name: "quota",
				Help: "update the alias quota of an account",
				Func: s.wrapShellFunc(s.accountsQuota),
			},
		},
	))

	shell.AddCmd(composeShellCmd(
		ishell.Cmd{
			Name: "aliases",
			Help: "manage aliases",
		},
		[]*ishell.Cmd{
			{
				Name: "list",
				Help: "list all aliases of an account",
				Func: s.wrapShellFunc(s.aliasesList),
			},
		},
	))
}

func (s *shellCommand) accountsList(ctx shellContext) error {
	if !ctx.checkArgs(0) {
		return errors.New("Usage: accounts list")
	}

	accounts, err := s.AccountDao.FindAll(ctx, s.Conn)
	if err != nil {
		return err
	}

	ctx.printf("\n(%d) Accounts:\n", len(accounts))
	for _, account := range accounts {
		ctx.printf("\t%s <%s> role=%s quota=%d enabled=%v\n",
			account.Username, account.Email, account.Role,
			account.AliasQuota, account.Enabled)
	}
	ctx.printf("\n")

	return nil
}

func (s *shellCommand) accountsAdd(ctx shellContext) error {
	if !ctx.checkArgs(2) && !ctx.checkArgs(3) {
		return errors.New("Usage: accounts add [USERNAME] [EMAIL] (admin)")
	}

	username := ctx.arg(0)
	if err := models.ValidateLocalPart(username); err != nil {
		return err
	}

	email, err := models.ParseNormalized(ctx.arg(1))
	if err != nil {
		return err
	}

	role := models.RoleUser
	if ctx.checkArgs(3) {
		if ctx.arg(2) != "admin" {
			return errors.New("Usage: accounts add [USERNAME] [EMAIL] (admin)")
		}

		role = models.RoleAdmin
	}

	pass, err := ctx.ask("Password", true)
	if err != nil {
		return err
	}

	account := models.AccountEntity{
		Username:   username,
		Email:      email.String(),
		Role:       role,
		AliasQuota: viper.GetInt("accounts.aliasquota"),
		Enabled:    true,
		CreatedAt:  time.Now().Unix(),
	}

	if err := crypto.Hash(&account, []byte(pass)); err != nil {
		return err
	}

	if err := s.AccountDao.Insert(ctx, s.Conn, &account); err != nil {
		return err
	}

	ctx.printf("\n\tAccount %q added.\n\n", username)
	return nil
}

func (s *shellCommand) accountsRemove(ctx shellContext) error {
	if !ctx.checkArgs(1) {
		return errors.New("Usage: accounts remove [USERNAME]")
	}

	account, err := s.AccountDao.FindByUsername(ctx, s.Conn, ctx.arg(0))
	if err != nil {
		return err
	}

	tx, err := s.Conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer tx.Rollback() // nolint:errcheck

	blobKeys, err := s.MailDao.FindBlobKeysByAccount(ctx, tx, account.ID)
	if err != nil {
		return err
	}

	for _, deleteOwned := range []func(context.Context, database.Queryer, int64) error{
		s.SessionDao.DeleteByAccount,
		s.ResetTokenDao.DeleteByAccount,
		s.MailDao.DeleteByAccount,
		s.AliasDao.DeleteByAccount,
	} {
		if err := deleteOwned(ctx, tx, account.ID); err != nil {
			return err
		}
	}

	if err := s.AccountDao.Delete(ctx, tx, account); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for _, key := range blobKeys {
		if err := s.Blobs.Delete(ctx, key); err != nil {
			ctx.printf("\tcould not delete blob %q: %v\n", key, err)
		}
	}

	ctx.printf("\n\tAccount %q deleted.\n\n", account.Username)
	return nil
}

func (s *shellCommand) accountsQuota(ctx shellContext) error {
	if !ctx.checkArgs(2) {
		return errors.New("Usage: accounts quota [USERNAME] [QUOTA]")
	}

	quota, err := strconv.Atoi(ctx.arg(1))
	if err != nil || quota < 0 {
		return errors.New("quota must be a non-negative number")
	}

	account, err := s.AccountDao.FindByUsername(ctx, s.Conn, ctx.arg(0))
	if err != nil {
		return err
	}

	account.AliasQuota = quota

	if err := s.AccountDao.Update(ctx, s.Conn, account); err != nil {
		return err
	}

	ctx.printf("\n\tQuota of %q set to %d.\n\n", account.Username, quota)
	return nil
}

func (s *shellCommand) aliasesList(ctx shellContext) error {
	if !ctx.checkArgs(1) {
		return errors.New("Usage: aliases list [USERNAME]")
	}

	account, err := s.AccountDao.FindByUsername(ctx, s.Conn, ctx.arg(0))
	if err != nil {
		return err
	}

	aliases, err := s.AliasDao.FindByAccount(ctx, s.Conn, account.ID)
	if err != nil {
		return err
	}

	ctx.printf("\n(%d) Aliases of %q:\n", len(aliases), account.Username)
	for _, alias := range aliases {
		ctx.printf("\t%s enabled=%v\n", alias.Address(), alias.Enabled)
	}
	ctx.printf("\n")

	return nil
}

type shellContext struct {
	context.Context

	shell *ishell.Context
}

func (c *shellContext) checkArgs(n int) bool {
	return len(c.shell.Args) == n
}

func (c *shellContext) arg(i int) string {
	return c.shell.Args[i]
}

func (c *shellContext) printf(format string, v ...interface{}) {
	c.shell.Printf(format, v...)
}

func (c *shellContext) ask(prompt string, hide bool) (string, error) {
	c.printf("%s: ", prompt)

	if hide {
		return c.shell.ReadPasswordErr()
	}

	return c.shell.ReadLineErr()
}

func composeShellCmd(cmd ishell.Cmd, children []*ishell.Cmd) *ishell.Cmd {
	for _, child := range children {
		cmd.AddCmd(child)
	}

	return &cmd
}

func (s *shellCommand) wrapShellFunc(fn func(shellContext) error) func(*ishell.Context) {
	return func(shell *ishell.Context) {
		ctx := shellContext{
			Context: context.Background(),
			shell:   shell,
		}

		if err := fn(ctx); err != nil {
			shell.Err(err)
		}
	}
}
