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

	"github.com/lukasdietrich/briefkasten/internal/log"
	"github.com/lukasdietrich/briefkasten/internal/models"
	"github.com/lukasdietrich/briefkasten/internal/storage"
)

type mailJSON struct {
	ID         string `json:"id"`
	Sender     string `json:"sender"`
	Recipient  string `json:"recipient"`
	Subject    string `json:"subject"`
	Date       *int64 `json:"date"`
	TextBody   string `json:"textBody"`
	HTMLBody   string `json:"htmlBody"`
	Size       int64  `json:"size"`
	ReceivedAt int64  `json:"receivedAt"`
	HasRaw     bool   `json:"hasRaw"`
}

func toMailJSON(mail *models.MailEntity) mailJSON {
	payload := mailJSON{
		ID:         mail.ID,
		Sender:     mail.Sender,
		Recipient:  mail.Recipient,
		Subject:    mail.Subject,
		TextBody:   mail.TextBody,
		HTMLBody:   mail.HTMLBody,
		Size:       mail.Size,
		ReceivedAt: mail.ReceivedAt,
		HasRaw:     mail.BlobKey.Valid,
	}

	if mail.Date.Valid {
		payload.Date = &mail.Date.Int64
	}

	return payload
}

func (s *Server) handleMailList(c *gin.Context) {
	ctx := c.Request.Context()

	mails, err := s.mailDao.FindByAccount(ctx, s.conn, currentAccount(c).ID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	payload := make([]mailJSON, 0, len(mails))
	for i := range mails {
		payload = append(payload, toMailJSON(&mails[i]))
	}

	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleMailRaw(c *gin.Context) {
	ctx := c.Request.Context()

	mail, err := s.mailDao.FindOwned(ctx, s.conn, c.Param("id"), currentAccount(c).ID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if !mail.BlobKey.Valid {
		abortWithError(c, storage.ErrBlobsDisabled)
		return
	}

	r, err := s.blobs.Reader(ctx, mail.BlobKey.String)
	if err != nil {
		abortWithError(c, err)
		return
	}

	defer r.Close()

	c.DataFromReader(http.StatusOK, mail.Size, "message/rfc822", r, nil)
}

func (s *Server) handleMailRemove(c *gin.Context) {
	ctx := c.Request.Context()

	mail, err := s.mailDao.FindOwned(ctx, s.conn, c.Param("id"), currentAccount(c).ID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := s.mailDao.Delete(ctx, s.conn, mail); err != nil {
		abortWithError(c, err)
		return
	}

	// The record is gone either way. A blob that outlives it is only wasted space.
	if mail.BlobKey.Valid {
		if err := s.blobs.Delete(ctx, mail.BlobKey.String); err != nil {
			log.WarnContext(ctx).
				Err(err).
				Str("mail", mail.ID).
				Msg("could not remove raw payload")
		}
	}

	c.Status(http.StatusNoContent)
}
