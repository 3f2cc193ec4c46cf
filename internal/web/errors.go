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
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/lukasdietrich/briefkasten/internal/accounts"
	"github.com/lukasdietrich/briefkasten/internal/database"
	"github.com/lukasdietrich/briefkasten/internal/delivery"
	"github.com/lukasdietrich/briefkasten/internal/log"
	"github.com/lukasdietrich/briefkasten/internal/models"
	"github.com/lukasdietrich/briefkasten/internal/storage"
)

// abortWithError translates service errors into http status codes. Unexpected errors
// are logged and collapse into a generic internal server error.
func abortWithError(c *gin.Context, err error) {
	status := statusForError(err)

	if status == http.StatusInternalServerError {
		log.ErrorContext(c.Request.Context()).
			Err(err).
			Msg("unexpected error during request")

		c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
		return
	}

	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, accounts.ErrCredentialsInvalid),
		errors.Is(err, accounts.ErrSessionInvalid),
		errors.Is(err, accounts.ErrResetTokenInvalid):
		return http.StatusUnauthorized

	case errors.Is(err, accounts.ErrResetRequired),
		errors.Is(err, delivery.ErrAliasQuotaExceeded):
		return http.StatusForbidden

	case errors.Is(err, accounts.ErrUsernameTaken),
		errors.Is(err, accounts.ErrEmailTaken),
		errors.Is(err, accounts.ErrLastAdmin),
		errors.Is(err, accounts.ErrSelfDelete),
		errors.Is(err, delivery.ErrAliasTaken):
		return http.StatusConflict

	case errors.Is(err, models.ErrLocalPartInvalid),
		errors.Is(err, models.ErrInvalidAddressFormat),
		errors.Is(err, models.ErrPathTooLong),
		errors.Is(err, delivery.ErrDomainNotLocal):
		return http.StatusBadRequest

	case errors.Is(err, delivery.ErrAliasNotFound),
		errors.Is(err, storage.ErrBlobsDisabled),
		database.IsErrNoRows(err),
		os.IsNotExist(err):
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}
