// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package items provides the item sources used by foreach commands.
package items

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/stint/internal/runbatch"
	"github.com/spf13/afero"
)

// IncludeHidden tells Directories whether to descend into directories whose name starts with a dot.
type IncludeHidden bool

var (
	// HiddenInclude lists hidden directories.
	HiddenInclude = IncludeHidden(true)
	// HiddenExclude skips hidden directories and everything below them.
	HiddenExclude = IncludeHidden(false)
)

// ErrList is returned when the items cannot be listed.
var ErrList = errors.New("failed to list items")

// FsFactory returns the filesystem the providers read. Tests replace it.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Files lists the paths matching the glob pattern. A relative pattern is
// resolved against the working directory of the foreach command.
func Files(pattern string) runbatch.ItemsProviderFunc {
	return func(ctx context.Context, workingDirectory string) ([]string, error) {
		if err := ctx.Err(); err != nil {
			return nil, err //nolint:wrapcheck
		}

		searchPattern := pattern
		if !filepath.IsAbs(pattern) {
			searchPattern = filepath.Join(workingDirectory, pattern)
		}

		matches, err := afero.Glob(FsFactory(), searchPattern)
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %s: %w", ErrList, pattern, err)
		}

		return matches, nil
	}
}

// Directories lists the directories below the working directory, relative to
// it, down to depth levels. A depth of zero or less means no limit.
func Directories(depth int, includeHidden IncludeHidden) runbatch.ItemsProviderFunc {
	return func(ctx context.Context, workingDirectory string) ([]string, error) {
		root := workingDirectory
		if root == "" {
			root = "."
		}

		var dirs []string

		err := afero.Walk(FsFactory(), root, func(path string, info os.FileInfo, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if err != nil {
				return err
			}

			if !info.IsDir() || path == root {
				return nil
			}

			if !bool(includeHidden) && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err //nolint:wrapcheck
			}

			if depth > 0 && strings.Count(rel, string(os.PathSeparator)) >= depth {
				return filepath.SkipDir
			}

			dirs = append(dirs, rel)

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: directories in %s: %w", ErrList, root, err)
		}

		return dirs, nil
	}
}

// Split splits s by delimiter, dropping empty entries.
func Split(s, delimiter string) runbatch.ItemsProviderFunc {
	return func(ctx context.Context, _ string) ([]string, error) {
		if err := ctx.Err(); err != nil {
			return nil, err //nolint:wrapcheck
		}

		var out []string

		for _, item := range strings.Split(s, delimiter) {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}

		return out, nil
	}
}
