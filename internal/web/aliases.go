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
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lukasdietrich/briefkasten/internal/models"
)

type aliasJSON struct {
	ID        int64  `json:"id"`
	LocalPart string `json:"localPart"`
	Domain    string `json:"domain"`
	Address   string `json:"address"`
	Enabled   bool   `json:"enabled"`
	CreatedAt int64  `json:"createdAt"`
}

func toAliasJSON(alias *models.AliasEntity) aliasJSON {
	return aliasJSON{
		ID:        alias.ID,
		LocalPart: alias.LocalPart,
		Domain:    alias.Domain,
		Address:   alias.Address(),
		Enabled:   alias.Enabled,
		CreatedAt: alias.CreatedAt,
	}
}

func (s *Server) handleAliasList(c *gin.Context) {
	aliases, err := s.addressbook.List(c.Request.Context(), currentAccount(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	payload := make([]aliasJSON, 0, len(aliases))
	for i := range aliases {
		payload = append(payload, toAliasJSON(&aliases[i]))
	}

	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleAliasCreate(c *gin.Context) {
	var body struct {
		LocalPart string `json:"localPart" binding:"required"`
		Domain    string `json:"domain"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	alias, err := s.addressbook.Create(
		c.Request.Context(), currentAccount(c), body.LocalPart, body.Domain)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAliasJSON(alias))
}

func (s *Server) handleAliasUpdate(c *gin.Context) {
	aliasID, err := pathID(c)
	if err != nil {
		return
	}

	var body struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err = s.addressbook.SetEnabled(c.Request.Context(), currentAccount(c), aliasID, *body.Enabled)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleAliasRemove(c *gin.Context) {
	aliasID, err := pathID(c)
	if err != nil {
		return
	}

	if err := s.addressbook.Remove(c.Request.Context(), currentAccount(c), aliasID); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// pathID parses the ":id" path parameter. An invalid id aborts the request.
func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, err
	}

	return id, nil
}
