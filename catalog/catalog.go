// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/classroom-vote/db"
	"github.com/danielhkuo/classroom-vote/models"
)

var (
	ErrEmptyCatalog   = errors.New("groups file lists no groups")
	ErrMissingGroupID = errors.New("group without id")
	ErrDuplicateGroup = errors.New("duplicate group id")
)

// Catalog is the configured list of votable groups. It is built once at
// startup and never mutated, so it is safe for concurrent use.
type Catalog struct {
	groups []models.Group
	byID   map[string]int
}

// New builds a catalog, preserving the order of groups.
func New(groups []models.Group) (*Catalog, error) {
	if len(groups) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		groups: make([]models.Group, 0, len(groups)),
		byID:   make(map[string]int, len(groups)),
	}
	for i, g := range groups {
		g.ID = strings.TrimSpace(g.ID)
		if g.ID == "" {
			return nil, fmt.Errorf("%w at position %d", ErrMissingGroupID, i)
		}
		if _, ok := c.byID[g.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateGroup, g.ID)
		}
		if g.Name == "" {
			g.Name = g.ID
		}
		c.byID[g.ID] = len(c.groups)
		c.groups = append(c.groups, g)
	}

	return c, nil
}

// Load reads groups from a YAML (.yaml, .yml) or JSON (.json, .jsonc) file.
// JSON files may contain comments and trailing commas.
func Load(path string) ([]models.Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read groups file: %w", err)
	}

	var groups []models.Group
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &groups)
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), &groups)
	default:
		return nil, fmt.Errorf("unsupported groups file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse groups file %s: %w", path, err)
	}

	return groups, nil
}

// LoadFile loads and validates a groups file in one step.
func LoadFile(path string) (*Catalog, error) {
	groups, err := Load(path)
	if err != nil {
		return nil, err
	}
	return New(groups)
}

// Exists reports whether id is a configured group.
func (c *Catalog) Exists(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Lookup returns the configured group with the given id.
func (c *Catalog) Lookup(id string) (models.Group, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Group{}, false
	}
	return c.groups[i], true
}

// Groups returns a copy of the groups in configuration order.
func (c *Catalog) Groups() []models.Group {
	out := make([]models.Group, len(c.groups))
	copy(out, c.groups)
	return out
}

// Sync upserts the catalog into storage. Existing rows get the new metadata;
// groups missing from the catalog are left in place so old votes and
// feedback still resolve.
func (c *Catalog) Sync(ctx context.Context, conn *sql.DB) error {
	return db.WithTx(ctx, conn, nil, func(tx *sql.Tx) error {
		for _, g := range c.groups {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO "groups" (id, name, teacher, lab_number, description)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO UPDATE SET
					name = excluded.name,
					teacher = excluded.teacher,
					lab_number = excluded.lab_number,
					description = excluded.description
			`, g.ID, g.Name, g.Teacher, g.LabNumber, g.Description)
			if err != nil {
				return fmt.Errorf("failed to upsert group %s: %w", g.ID, err)
			}
		}
		return nil
	})
}
