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

package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefkasten/internal/accounts"
	"github.com/lukasdietrich/briefkasten/internal/database"
	"github.com/lukasdietrich/briefkasten/internal/delivery"
	"github.com/lukasdietrich/briefkasten/internal/log"
	"github.com/lukasdietrich/briefkasten/internal/storage"
)

func init() {
	viper.SetDefault("web.address", ":8080")
}

// Server is the authenticated json api for account self service and mail access.
type Server struct {
	engine *gin.Engine

	registrar     accounts.Registrar
	authenticator accounts.Authenticator
	sessions      accounts.Sessions
	resets        accounts.Resets
	lifecycle     accounts.Lifecycle
	addressbook   delivery.Addressbook
	cleaner       delivery.Cleaner

	conn    database.Conn
	mailDao database.MailDao
	blobs   storage.Blobs
}

// NewServer creates a new Server. The http listener has to be started explicitly
// afterwards.
func NewServer(
	registrar accounts.Registrar,
	authenticator accounts.Authenticator,
	sessions accounts.Sessions,
	resets accounts.Resets,
	lifecycle accounts.Lifecycle,
	addressbook delivery.Addressbook,
	cleaner delivery.Cleaner,
	conn database.Conn,
	mailDao database.MailDao,
	blobs storage.Blobs,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:        gin.New(),
		registrar:     registrar,
		authenticator: authenticator,
		sessions:      sessions,
		resets:        resets,
		lifecycle:     lifecycle,
		addressbook:   addressbook,
		cleaner:       cleaner,
		conn:          conn,
		mailDao:       mailDao,
		blobs:         blobs,
	}

	s.engine.Use(gin.Recovery())
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	api.POST("/accounts", s.handleRegister)
	api.POST("/sessions", s.handleLogin)
	api.POST("/resets", s.handleResetRequest)
	api.POST("/resets/confirm", s.handleResetConfirm)

	authenticated := api.Group("", s.requireSession)

	authenticated.DELETE("/sessions", s.handleLogout)

	authenticated.GET("/aliases", s.handleAliasList)
	authenticated.POST("/aliases", s.handleAliasCreate)
	authenticated.PATCH("/aliases/:id", s.handleAliasUpdate)
	authenticated.DELETE("/aliases/:id", s.handleAliasRemove)

	authenticated.GET("/mails", s.handleMailList)
	authenticated.GET("/mails/:id/raw", s.handleMailRaw)
	authenticated.DELETE("/mails/:id", s.handleMailRemove)

	admin := authenticated.Group("/admin", s.requireAdmin)

	admin.GET("/accounts", s.handleAccountList)
	admin.PATCH("/accounts/:id", s.handleAccountUpdate)
	admin.DELETE("/accounts/:id", s.handleAccountDelete)
}

// Listen starts the http listener and blocks until an error occurs.
func (s *Server) Listen() error {
	addr := viper.GetString("web.address")

	log.Info().
		Str("addr", addr).
		Msg("listening for http requests")

	return s.engine.Run(addr)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}
