// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/stint/internal/progress"
)

// ErrFetch is returned when a workflow file cannot be retrieved.
var ErrFetch = errors.New("error when fetching workflow file")

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
	minimumGetterParts    = 3 // scheme, host and path
)

// Fetch retrieves a workflow file using go-getter syntax, so src can be a
// local path or any source go-getter supports. It returns the base name of the
// file, which selects the format, and its content.
func Fetch(ctx context.Context, src string) (string, []byte, error) {
	if src == "" {
		return "", nil, fmt.Errorf("%w: empty source", ErrFetch)
	}

	var (
		fileName string
		data     []byte
	)

	err := progress.Do(ctx, "fetching "+src, func(ctx context.Context) error {
		var err error

		fileName, data, err = getURL(ctx, src)

		return err
	})

	return fileName, data, err
}

// getURL downloads the directory holding the file into a temporary directory
// and reads the file from there. The temporary directory is removed afterwards.
func getURL(ctx context.Context, url string) (string, []byte, error) {
	tmpDir, err := os.MkdirTemp("", "stint-getter-*")
	if err != nil {
		return "", nil, errors.Join(ErrFetch, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return "", nil, errors.Join(ErrFetch, err)
	}

	cli := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     url,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	var fileName string

	// Remote sources are fetched as a directory, see https://github.com/hashicorp/go-getter/issues/98
	if ok, err := getter.Detect(req, &getter.FileGetter{}); !ok || err != nil {
		if err != nil {
			return "", nil, errors.Join(ErrFetch, err)
		}

		var newURL string

		newURL, fileName = splitFileNameFromGetterURL(url)
		if newURL == "" || fileName == "" {
			return "", nil, fmt.Errorf("%w: invalid URL format: %s", ErrFetch, url)
		}

		req.Src = newURL
	}

	if fileName == "" {
		req.Src = filepath.Dir(url)
		fileName = filepath.Base(url)
	}

	res, err := cli.Get(ctx, req)
	if err != nil {
		return "", nil, errors.Join(ErrFetch, err)
	}

	data, err := os.ReadFile(filepath.Join(res.Dst, fileName))
	if err != nil {
		return "", nil, errors.Join(ErrFetch, err)
	}

	return fileName, data, nil
}

// splitFileNameFromGetterURL splits a go-getter URL into the URL of the
// enclosing directory and the file name. A ref query is kept on the new URL.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := len(parts) - 1

	if before, after, ok := strings.Cut(parts[last], goGetterRefSeparator); ok {
		ref = strings.ReplaceAll(after, goGetterRefSeparator, "")
		parts[last] = before
	}

	if filepath.Clean(parts[last]) == filepath.Dir(parts[last]) {
		return "", ""
	}

	fileName := filepath.Base(parts[last])
	parts[last] = filepath.Dir(parts[last])

	if parts[last] == "." {
		parts = parts[:last]
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
