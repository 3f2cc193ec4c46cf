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

package textproto

import (
	"context"
	"net"
	"time"

	"github.com/lukasdietrich/briefkasten/internal/log"
)

// Conn is a wrapper around a network connection for line based text protocols.
type Conn interface {
	// Context returns a connection scoped context. The context carries a connection id
	// for log correlation and is canceled when the connection is closed.
	Context() context.Context
	// Reader returns a Reader to read from the connection.
	Reader() *Reader
	// Writer returns a Writer to write to the connection.
	Writer() *Writer
	// RemoteAddr returns the remote ip address of the connection.
	RemoteAddr() net.IP
	// SetReadTimeout sets the maximum duration for future reads to the given duration
	// relative to now.
	SetReadTimeout(timeout time.Duration) error
	// SetWriteTimeout sets the maximum duration for future writes to the given duration
	// relative to now.
	SetWriteTimeout(timeout time.Duration) error
}

type conn struct {
	socket net.Conn
	ctx    context.Context
	reader *Reader
	writer *Writer
}

// Wrap wraps an already established network connection. Protocol implementations are
// usually served by a Server instead, which assigns connection ids itself.
func Wrap(socket net.Conn, id int32) Conn {
	return wrapConn(socket, id)
}

func wrapConn(socket net.Conn, id int32) Conn {
	return &conn{
		socket: socket,
		ctx:    log.WithConnection(context.Background(), id),
		reader: newReader(socket),
		writer: newWriter(socket),
	}
}

func (c *conn) Context() context.Context {
	return c.ctx
}

func (c *conn) Reader() *Reader {
	return c.reader
}

func (c *conn) Writer() *Writer {
	return c.writer
}

func (c *conn) RemoteAddr() net.IP {
	if addr, ok := c.socket.RemoteAddr().(*net.TCPAddr); ok {
		return addr.IP
	}

	return nil
}

func (c *conn) SetReadTimeout(timeout time.Duration) error {
	return c.socket.SetReadDeadline(time.Now().Add(timeout))
}

func (c *conn) SetWriteTimeout(timeout time.Duration) error {
	return c.socket.SetWriteDeadline(time.Now().Add(timeout))
}
