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

package storage

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefkasten/internal/log"
)

func init() {
	viper.SetDefault("storage.blobs.foldername", "data/blobs")
}

// ErrBlobsDisabled is returned when blob storage is not configured.
var ErrBlobsDisabled = errors.New("storage: blobs disabled")

// Blobs is a permanent store for raw mail payloads, addressed by key.
type Blobs interface {
	// Write copies all the data from r to a blob addressable by the given key and returns the
	// number of bytes written.
	Write(ctx context.Context, key string, r io.Reader) (int64, error)
	// Reader opens a blob for reading. The caller is responsible for closing the reader.
	Reader(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes a blob by key. Deleting an unknown key is not an error.
	Delete(ctx context.Context, key string) error
}

// NewBlobs creates a new blob store using configuration from viper.
//
// `storage.blobs.foldername` is the foldername for blob files. An empty foldername disables blob
// storage altogether.
func NewBlobs() (Blobs, error) {
	folderName := viper.GetString("storage.blobs.foldername")

	if folderName == "" {
		log.Warn().Msg("blob storage is disabled, raw mail payloads will not be retained")
		return disabledBlobs{}, nil
	}

	if err := os.MkdirAll(folderName, 0700); err != nil {
		return nil, err
	}

	return filesystemBlobs{
		fs: afero.NewBasePathFs(afero.NewOsFs(), folderName),
	}, nil
}

type filesystemBlobs struct {
	fs afero.Fs
}

func (b filesystemBlobs) Write(ctx context.Context, key string, r io.Reader) (int64, error) {
	f, err := b.fs.Create(key)
	if err != nil {
		return -1, err
	}

	log.DebugContext(ctx).
		Str("blob", key).
		Msg("writing blob")

	size, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		b.Delete(ctx, key)

		return -1, err
	}

	return size, f.Close()
}

func (b filesystemBlobs) Reader(ctx context.Context, key string) (io.ReadCloser, error) {
	return b.fs.Open(key)
}

func (b filesystemBlobs) Delete(ctx context.Context, key string) error {
	log.DebugContext(ctx).
		Str("blob", key).
		Msg("removing blob")

	err := b.fs.Remove(key)
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	return err
}

// disabledBlobs discards writes and holds no data.
type disabledBlobs struct{}

func (disabledBlobs) Write(ctx context.Context, key string, r io.Reader) (int64, error) {
	return -1, ErrBlobsDisabled
}

func (disabledBlobs) Reader(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, ErrBlobsDisabled
}

func (disabledBlobs) Delete(ctx context.Context, key string) error {
	return nil
}
