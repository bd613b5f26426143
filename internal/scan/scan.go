// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/stint/internal/ctxlog"
	"github.com/matt-FFFFFF/stint/internal/progress"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/afero"
)

const poolReleaseTimeout = 5 * time.Second

var (
	// ErrScan is returned when the directory could not be scanned.
	ErrScan = errors.New("error when scanning directory")
	// ErrHash is returned when one or more files could not be hashed.
	ErrHash = errors.New("error when hashing files")
)

// FsFactory returns the filesystem that Run scans. Tests replace it.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Options configures Run.
type Options struct {
	Workers int // Number of files hashed at once, defaults to GOMAXPROCS
}

// Summary is the outcome of a scan.
type Summary struct {
	Root   string
	Files  int
	Bytes  int64
	Digest string // sha256 of the sorted list of relative paths and file hashes
}

// String renders the summary for humans.
func (s Summary) String() string {
	return fmt.Sprintf("%s: %s files, %s, sha256:%s",
		s.Root, humanize.Comma(int64(s.Files)), humanize.Bytes(uint64(max(s.Bytes, 0))), s.Digest)
}

// Run indexes and hashes every regular file below root.
func Run(ctx context.Context, root string, opts Options) (Summary, error) {
	fs := FsFactory()
	sum := Summary{Root: root}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var files []string

	err := progress.Do(ctx, "indexing "+root, func(ctx context.Context) error {
		var err error

		files, err = index(ctx, fs, root)

		return err
	})
	if err != nil {
		return sum, errors.Join(ErrScan, err)
	}

	ctxlog.Debug(ctx, "scan indexed", "root", root, "files", len(files))

	var hashes []fileHash

	err = progress.Do(ctx, "hashing "+root, func(ctx context.Context) error {
		var err error

		hashes, err = hashAll(ctx, fs, files, workers)

		return err
	})
	if err != nil {
		return sum, err
	}

	digest := sha256.New()

	for _, h := range hashes {
		rel, err := filepath.Rel(root, h.path)
		if err != nil {
			rel = h.path
		}

		fmt.Fprintf(digest, "%s\x00%s\n", filepath.ToSlash(rel), hex.EncodeToString(h.sum))

		sum.Files++
		sum.Bytes += h.size
	}

	sum.Digest = hex.EncodeToString(digest.Sum(nil))

	return sum, nil
}

// index lists the regular files below root in lexical order.
func index(ctx context.Context, fs afero.Fs, root string) ([]string, error) {
	var files []string

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		files = append(files, path)

		return progress.Update(ctx, len(files), 0)
	})
	if err != nil {
		return nil, err
	}

	return files, progress.Update(ctx, len(files), len(files))
}

type fileHash struct {
	i    int
	path string
	sum  []byte
	size int64
	err  error
}

// hashAll hashes files on a worker pool. The calling goroutine collects the
// results and reports progress.
func hashAll(ctx context.Context, fs afero.Fs, files []string, workers int) (hashes []fileHash, err error) {
	results := make(chan fileHash, len(files))

	pool, err := ants.NewPoolWithFunc(workers, func(arg any) {
		i, _ := arg.(int)
		results <- hashFile(fs, i, files[i])
	})
	if err != nil {
		return nil, errors.Join(ErrHash, err)
	}

	defer func() {
		if rerr := pool.ReleaseTimeout(poolReleaseTimeout); rerr != nil {
			ctxlog.Warn(ctx, "hash pool did not shut down in time", "error", rerr)
		}
	}()

	go func() {
		for i, path := range files {
			if err := ctx.Err(); err != nil {
				results <- fileHash{i: i, path: path, err: err}
				continue
			}

			if err := pool.Invoke(i); err != nil {
				results <- fileHash{i: i, path: path, err: err}
			}
		}
	}()

	hashes = make([]fileHash, len(files))

	var merr *multierror.Error

	for done := range len(files) {
		h := <-results
		hashes[h.i] = h

		if h.err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", h.path, h.err))
		}

		if err := progress.Update(ctx, done+1, len(files)); err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	if err := merr.ErrorOrNil(); err != nil {
		return nil, errors.Join(ErrHash, err)
	}

	return hashes, nil
}

func hashFile(fs afero.Fs, i int, path string) fileHash {
	res := fileHash{i: i, path: path}

	f, err := fs.Open(path)
	if err != nil {
		res.err = err
		return res
	}

	defer f.Close() //nolint:errcheck

	h := sha256.New()

	res.size, res.err = io.Copy(h, f)
	res.sum = h.Sum(nil)

	return res
}
