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
)

func (s *Server) handleAccountList(c *gin.Context) {
	all, err := s.lifecycle.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	payload := make([]accountJSON, 0, len(all))
	for i := range all {
		payload = append(payload, toAccountJSON(&all[i]))
	}

	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleAccountUpdate(c *gin.Context) {
	accountID, err := pathID(c)
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

	err = s.lifecycle.SetEnabled(c.Request.Context(), currentAccount(c), accountID, *body.Enabled)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleAccountDelete(c *gin.Context) {
	accountID, err := pathID(c)
	if err != nil {
		return
	}

	if err := s.lifecycle.Delete(c.Request.Context(), currentAccount(c), accountID); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
