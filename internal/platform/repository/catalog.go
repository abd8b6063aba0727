package repository

import (
	"fmt"
	"sort"

	"RMDB/internal/domain"
)

// Catalog is the process-wide registry of loaded relations. Names are
// unique across tables and matrices. It is created empty at startup
// and mutated only by load, assignment, unload and rename.
type Catalog struct {
	relations map[string]domain.Relation
}

func NewCatalog() *Catalog {
	return &Catalog{relations: make(map[string]domain.Relation)}
}

func (c *Catalog) Insert(r domain.Relation) error {
	if _, exists := c.relations[r.Name()]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateRelation, r.Name())
	}
	c.relations[r.Name()] = r
	return nil
}

func (c *Catalog) Get(name string) (domain.Relation, bool) {
	r, ok := c.relations[name]
	return r, ok
}

func (c *Catalog) Remove(name string) {
	delete(c.relations, name)
}

// Rename re-keys the relation and delegates the file-level rename to
// the relation itself.
func (c *Catalog) Rename(oldName, newName string) error {
	r, ok := c.relations[oldName]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrRelationNotFound, oldName)
	}
	if _, exists := c.relations[newName]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateRelation, newName)
	}
	if err := r.Rename(newName); err != nil {
		return err
	}
	delete(c.relations, oldName)
	c.relations[newName] = r
	return nil
}

func (c *Catalog) List(kind domain.RelationKind) []string {
	var names []string
	for name, r := range c.relations {
		if r.Kind() == kind {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
