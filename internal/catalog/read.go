package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/cql"
	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/model"
)

// ReadCodeSystems returns all code system definitions with deterministic
// ordering: ORDER BY name ASC.
//
// Returns an empty slice (not nil) if the catalog holds no code systems.
func (s *Store) ReadCodeSystems(ctx context.Context) ([]cql.CodeSystemDefinition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, system
		FROM code_systems
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query code systems: %w", err)
	}
	defer rows.Close()

	definitions := []cql.CodeSystemDefinition{}
	for rows.Next() {
		var name, system string
		if err := rows.Scan(&name, &system); err != nil {
			return nil, fmt.Errorf("scan code system: %w", err)
		}
		definitions = append(definitions, cql.NewCodeSystemDefinition(name, system))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate code systems: %w", err)
	}

	return definitions, nil
}

// ReadMappings returns all mappings with deterministic ordering:
// ORDER BY context ASC, system ASC, code ASC.
//
// Returns an empty slice (not nil) if the catalog holds no mappings.
func (s *Store) ReadMappings(ctx context.Context) ([]model.Mapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mapping
		FROM mappings
		ORDER BY context COLLATE BINARY ASC, system COLLATE BINARY ASC, code COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query mappings: %w", err)
	}
	defer rows.Close()

	mappings := []model.Mapping{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		var mapping model.Mapping
		if err := json.Unmarshal([]byte(doc), &mapping); err != nil {
			return nil, fmt.Errorf("unmarshal mapping: %w", err)
		}
		mappings = append(mappings, mapping)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mappings: %w", err)
	}

	return mappings, nil
}

// ReadConceptRoots rebuilds the concept closure forest from the catalog.
// Nodes are read in insert order, so children keep the order they were
// imported with.
func (s *Store) ReadConceptRoots(ctx context.Context) ([]*model.TermCodeNode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, parent, context, system, code, display
		FROM concept_nodes
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query concept nodes: %w", err)
	}
	defer rows.Close()

	nodes := map[int64]*model.TermCodeNode{}
	var roots []*model.TermCodeNode
	for rows.Next() {
		var (
			id      int64
			parent  sql.NullInt64
			node    model.TermCodeNode
			system  string
			code    string
			display string
		)
		if err := rows.Scan(&id, &parent, &node.Context, &system, &code, &display); err != nil {
			return nil, fmt.Errorf("scan concept node: %w", err)
		}
		node.TermCode = model.TermCode{System: system, Code: code, Display: display}
		nodes[id] = &node

		if !parent.Valid {
			roots = append(roots, &node)
			continue
		}
		parentNode, ok := nodes[parent.Int64]
		if !ok {
			return nil, fmt.Errorf("concept node %d references unknown parent %d", id, parent.Int64)
		}
		parentNode.Children = append(parentNode.Children, &node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate concept nodes: %w", err)
	}

	return roots, nil
}

// LoadContext reads the whole catalog and builds an in-memory mapping
// context from it.
func (s *Store) LoadContext(ctx context.Context) (*model.InMemoryContext, error) {
	codeSystems, err := s.ReadCodeSystems(ctx)
	if err != nil {
		return nil, err
	}
	mappings, err := s.ReadMappings(ctx)
	if err != nil {
		return nil, err
	}
	roots, err := s.ReadConceptRoots(ctx)
	if err != nil {
		return nil, err
	}
	return model.NewInMemoryContext(mappings, codeSystems, conceptForest(roots)), nil
}

// conceptForest joins multiple root nodes under a synthetic root. The
// synthetic root carries an empty term code and can never match a lookup
// key itself.
func conceptForest(roots []*model.TermCodeNode) *model.TermCodeNode {
	switch len(roots) {
	case 0:
		return nil
	case 1:
		return roots[0]
	default:
		return &model.TermCodeNode{Children: roots}
	}
}
