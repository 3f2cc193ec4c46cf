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

package delivery

import (
	"context"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefkasten/internal/database"
	"github.com/lukasdietrich/briefkasten/internal/log"
)

func init() {
	viper.SetDefault("security.cleaner.interval", time.Minute*15)
}

// Cleaner sweeps expired sessions and reset tokens. Expiry itself is enforced at read time, the
// sweep only reclaims storage.
type Cleaner interface {
	// Sweep deletes all expired sessions and reset tokens. Concurrent calls are coalesced, at
	// most one sweep runs at a time and sweeps are rate limited by `security.cleaner.interval`.
	Sweep(ctx context.Context) error
}

// NewCleaner creates a new Cleaner.
func NewCleaner(
	conn database.Conn,
	sessionDao database.SessionDao,
	resetTokenDao database.ResetTokenDao,
) Cleaner {
	return &cleaner{
		conn:          conn,
		sessionDao:    sessionDao,
		resetTokenDao: resetTokenDao,
	}
}

type cleaner struct {
	conn          database.Conn
	sessionDao    database.SessionDao
	resetTokenDao database.ResetTokenDao

	mu        sync.Mutex
	lastSweep time.Time
}

func (c *cleaner) Sweep(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	interval := viper.GetDuration("security.cleaner.interval")
	if time.Since(c.lastSweep) < interval {
		return nil
	}

	now := time.Now()

	sessions, err := c.sessionDao.DeleteExpired(ctx, c.conn, now.Unix())
	if err != nil {
		return err
	}

	resetTokens, err := c.resetTokenDao.DeleteExpired(ctx, c.conn, now.Unix())
	if err != nil {
		return err
	}

	c.lastSweep = now

	if sessions > 0 || resetTokens > 0 {
		log.DebugContext(ctx).
			Int64("sessions", sessions).
			Int64("resetTokens", resetTokens).
			Msg("expired credentials swept")
	}

	return nil
}
