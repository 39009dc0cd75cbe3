package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/sadopc/logbook/internal/model"
)

func validateCategory(c *model.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	if !c.Type.Valid() {
		return fmt.Errorf("unknown category type %q", c.Type)
	}
	if c.Type.RequiresMeasure() {
		if _, ok := c.Measure(); !ok {
			return fmt.Errorf("category type %s needs a measure (volume, time, mass), got %q", c.Type, c.Config)
		}
	}
	for _, id := range c.Children {
		if id == c.ID {
			return fmt.Errorf("category %s cannot contain itself", c.ID)
		}
	}
	return nil
}

func (s *Store) CreateCategory(c *model.Category) error {
	if c.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		c.ID = id
	}
	if err := validateCategory(c); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO categories (id, name, icon, type, config, inverted) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Icon, string(c.Type), c.Config, boolToInt(c.Inverted),
	)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	if err := setChildren(tx, c.ID, c.Children); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) UpdateCategory(c *model.Category) error {
	if err := validateCategory(c); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE categories SET name = ?, icon = ?, type = ?, config = ?, inverted = ? WHERE id = ?`,
		c.Name, c.Icon, string(c.Type), c.Config, boolToInt(c.Inverted), c.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s: %w", c.ID, ErrNotFound)
	}
	if _, err := tx.Exec(`DELETE FROM category_children WHERE parent_id = ?`, c.ID); err != nil {
		return fmt.Errorf("clear children: %w", err)
	}
	if err := setChildren(tx, c.ID, c.Children); err != nil {
		return err
	}
	return tx.Commit()
}

func setChildren(tx *sql.Tx, parent string, children []string) error {
	for i, child := range children {
		_, err := tx.Exec(
			`INSERT INTO category_children (parent_id, child_id, position) VALUES (?, ?, ?)`,
			parent, child, i,
		)
		if err != nil {
			return fmt.Errorf("add child %s: %w", child, err)
		}
	}
	return nil
}

func (s *Store) GetCategory(id string) (*model.Category, error) {
	c := &model.Category{}
	var typ string
	var inverted int
	err := s.db.QueryRow(
		`SELECT id, name, icon, type, config, inverted FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Icon, &typ, &c.Config, &inverted)
	if err != nil {
		return nil, notFound("category", id, err)
	}
	c.Type = model.CategoryType(typ)
	c.Inverted = inverted == 1
	if c.Children, err = s.children(c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) children(parent string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT child_id FROM category_children WHERE parent_id = ? ORDER BY position`, parent,
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) ListCategories() ([]model.Category, error) {
	return s.queryCategories(`SELECT id, name, icon, type, config, inverted FROM categories ORDER BY name`)
}

// FindCategoriesByIDs returns the categories with the given ids in the order
// asked for. Unknown ids are skipped.
func (s *Store) FindCategoriesByIDs(ids []string) ([]model.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	found, err := s.queryCategories(
		`SELECT id, name, icon, type, config, inverted FROM categories WHERE id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Category, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	var out []model.Category
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) queryCategories(query string, args ...any) ([]model.Category, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		var typ string
		var inverted int
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &typ, &c.Config, &inverted); err != nil {
			rows.Close()
			return nil, err
		}
		c.Type = model.CategoryType(typ)
		c.Inverted = inverted == 1
		cats = append(cats, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Children are loaded after the cursor closes; the pool holds one connection.
	for i := range cats {
		if cats[i].Children, err = s.children(cats[i].ID); err != nil {
			return nil, err
		}
	}
	return cats, nil
}

// DeleteCategory removes a category. It fails while events or targets still
// reference it.
func (s *Store) DeleteCategory(id string) error {
	res, err := s.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
