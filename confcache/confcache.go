// Copyright (c) 2025, The conftree Authors. All rights reserved. Use of this
// source code is governed by a MIT License that can be found in the LICENSE
// file.

// Package confcache persists merged configuration trees on disk so that a
// load can be served without re-parsing its sources. The artifact is the
// JSON serialization of the tree; a sidecar file records the paths the tree
// was built from, and the artifact counts as fresh while none of them is
// newer than it.
package confcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ostraca/conftree"
)

const errPref = "confcache"

const metaSuffix = ".meta.json"

// FileCache stores a configuration artifact next to a metadata file listing
// the resources the artifact was built from.
type FileCache struct {
	path string
}

var _ conftree.Cache = (*FileCache)(nil)

// New creates a file cache writing its artifact to the given path.
func New(path string) *FileCache {
	return &FileCache{path: path}
}

// Path method returns the artifact path.
func (c *FileCache) Path() string {
	return c.path
}

// MetaPath method returns the path of the resource metadata file.
func (c *FileCache) MetaPath() string {
	return c.path + metaSuffix
}

// IsFresh method reports whether the artifact can be served instead of
// re-running a load: the artifact and its metadata exist, every recorded
// resource still exists, and none was modified after the artifact was
// written.
func (c *FileCache) IsFresh() bool {
	artifact, err := os.Stat(c.path)

	if err != nil {
		return false
	}

	data, err := os.ReadFile(c.MetaPath())

	if err != nil {
		return false
	}

	var resources []string

	if err := json.Unmarshal(data, &resources); err != nil {
		return false
	}

	for _, resource := range resources {
		info, err := os.Stat(resource)

		if err != nil {
			return false
		}

		if info.ModTime().After(artifact.ModTime()) {
			return false
		}
	}

	return true
}

// Write method persists the serialized tree and its resource list. Parent
// directories are created on demand. Both files are replaced atomically, the
// metadata first, so the artifact's mtime seals freshness.
func (c *FileCache) Write(content []byte, resources []string) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("%s: %w", errPref, err)
	}

	if resources == nil {
		resources = []string{}
	}

	meta, err := json.Marshal(resources)

	if err != nil {
		return fmt.Errorf("%s: %w", errPref, err)
	}

	if err := writeAtomic(c.MetaPath(), meta); err != nil {
		return fmt.Errorf("%s: %w", errPref, err)
	}

	if err := writeAtomic(c.path, content); err != nil {
		return fmt.Errorf("%s: %w", errPref, err)
	}

	return nil
}

// Read method decodes the persisted artifact back into a configuration
// tree, mapping key order included.
func (c *FileCache) Read() (conftree.Value, error) {
	data, err := os.ReadFile(c.path)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errPref, err)
	}

	value, err := conftree.ParseJSON(data)

	if err != nil {
		return nil, fmt.Errorf("%s: corrupt artifact %s: %w", errPref, c.path, err)
	}

	return value, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")

	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return nil
}
