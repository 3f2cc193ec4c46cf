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

	"github.com/lukasdietrich/briefkasten/internal/models"
)

type accountJSON struct {
	ID         int64       `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	AliasQuota int         `json:"aliasQuota"`
	Enabled    bool        `json:"enabled"`
	CreatedAt  int64       `json:"createdAt"`
}

func toAccountJSON(account *models.AccountEntity) accountJSON {
	return accountJSON{
		ID:         account.ID,
		Username:   account.Username,
		Email:      account.Email,
		Role:       account.Role,
		AliasQuota: account.AliasQuota,
		Enabled:    account.Enabled,
		CreatedAt:  account.CreatedAt,
	}
}

func (s *Server) handleRegister(c *gin.Context) {
	var body struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	account, err := s.registrar.Register(
		c.Request.Context(), body.Username, body.Email, []byte(body.Password))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAccountJSON(account))
}

func (s *Server) handleLogin(c *gin.Context) {
	var body struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()

	account, err := s.authenticator.Authenticate(ctx, body.Username, []byte(body.Password))
	if err != nil {
		abortWithError(c, err)
		return
	}

	token, err := s.sessions.Create(ctx, account)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (s *Server) handleLogout(c *gin.Context) {
	if err := s.sessions.Destroy(c.Request.Context(), bearerToken(c)); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleResetRequest(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.resets.Request(c.Request.Context(), body.Email); err != nil {
		abortWithError(c, err)
		return
	}

	// Accepted regardless of whether the email belongs to an account.
	c.Status(http.StatusAccepted)
}

func (s *Server) handleResetConfirm(c *gin.Context) {
	var body struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.resets.Confirm(c.Request.Context(), body.Token, []byte(body.Password)); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
