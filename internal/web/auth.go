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
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lukasdietrich/briefkasten/internal/accounts"
	"github.com/lukasdietrich/briefkasten/internal/log"
	"github.com/lukasdietrich/briefkasten/internal/models"
)

const contextKeyAccount = "account"

// requireSession resolves the bearer token of a request. Requests without a valid
// session are rejected. Every resolved request may also trigger an expiry sweep,
// which is rate limited internally.
func (s *Server) requireSession(c *gin.Context) {
	ctx := c.Request.Context()

	token := bearerToken(c)
	if token == "" {
		abortWithError(c, accounts.ErrSessionInvalid)
		return
	}

	account, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := s.cleaner.Sweep(ctx); err != nil {
		log.WarnContext(ctx).
			Err(err).
			Msg("could not sweep expired credentials")
	}

	c.Set(contextKeyAccount, account)
	c.Next()
}

// requireAdmin rejects requests of regular users. It must be registered after
// requireSession.
func (s *Server) requireAdmin(c *gin.Context) {
	if currentAccount(c).Role != models.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": http.StatusText(http.StatusForbidden),
		})

		return
	}

	c.Next()
}

func currentAccount(c *gin.Context) *models.AccountEntity {
	return c.MustGet(contextKeyAccount).(*models.AccountEntity)
}

func bearerToken(c *gin.Context) string {
	const prefix = "Bearer "

	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return header[len(prefix):]
}
