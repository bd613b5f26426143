// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package workspace copies a working directory to a scratch location so that
// the commands that follow can modify it freely.
package workspace

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/matt-FFFFFF/stint/internal/progress"
	"github.com/spf13/afero"
)

const (
	filePerm            = 0o644
	dirPerm             = 0o755
	tempDirSuffixLength = 8
	tempDirPrefix       = "stint_"
)

var (
	// ErrFileCopy is returned when a file copy operation fails.
	ErrFileCopy = errors.New("file copy error")
	// ErrFilePath is returned when a file path operation fails.
	ErrFilePath = errors.New("file path error")
)

// FS is the filesystem used for all operations. Tests replace it.
var FS = afero.NewOsFs()

// TempDirPath returns the directory in which scratch copies are created.
var TempDirPath = os.TempDir

// RandomName returns prefix followed by n random letters and digits.
var RandomName = func(prefix string, n int) string {
	const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.IntN(len(letterBytes))]
	}

	return prefix + string(b)
}

// CopyToTemp copies the tree below src into a new directory under TempDirPath
// and returns its path. Progress is reported as files copied out of the total.
// A partial copy is removed before the error is returned.
func CopyToTemp(ctx context.Context, src string) (string, error) {
	if src == "" {
		src = "."
	}

	dst := filepath.Join(TempDirPath(), RandomName(tempDirPrefix, tempDirSuffixLength))

	err := progress.Do(ctx, "copying "+src, func(ctx context.Context) error {
		files, err := countFiles(ctx, src)
		if err != nil {
			return err
		}

		if err := FS.MkdirAll(dst, dirPerm); err != nil {
			return errors.Join(ErrFileCopy, err)
		}

		copied := 0

		return afero.Walk(FS, src, func(path string, info os.FileInfo, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if err != nil {
				return err
			}

			if path == src {
				return nil
			}

			rel, err := filepath.Rel(src, path)
			if err != nil {
				return errors.Join(ErrFilePath, err)
			}

			target := filepath.Join(dst, rel)

			if info.IsDir() {
				return FS.MkdirAll(target, dirPerm) //nolint:wrapcheck
			}

			if err := copyFile(path, target, info.Mode().Perm()); err != nil {
				return err
			}

			copied++

			return progress.Update(ctx, copied, files)
		})
	})
	if err != nil {
		_ = FS.RemoveAll(dst)

		return "", err
	}

	return dst, nil
}

func countFiles(ctx context.Context, root string) (int, error) {
	n := 0

	err := afero.Walk(FS, root, func(_ string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			return err
		}

		if !info.IsDir() {
			n++
		}

		return nil
	})
	if err != nil {
		return 0, errors.Join(ErrFilePath, err)
	}

	return n, nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	data, err := afero.ReadFile(FS, src)
	if err != nil {
		return errors.Join(ErrFileCopy, err)
	}

	if perm == 0 {
		perm = filePerm
	}

	if err := afero.WriteFile(FS, dst, data, perm); err != nil {
		return errors.Join(ErrFileCopy, err)
	}

	return nil
}
