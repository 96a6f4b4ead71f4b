package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/model"
)

// ImportOntology writes a loaded ontology into the catalog in a single
// transaction. Uses ON CONFLICT DO NOTHING for idempotency - importing the
// same ontology twice leaves the catalog unchanged.
//
// Key columns are NFC-normalized before insert so byte-different but
// canonically-equal term codes cannot produce duplicate catalog entries.
func (s *Store) ImportOntology(ctx context.Context, ontology Ontology) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import ontology: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, definition := range ontology.CodeSystems {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO code_systems (name, system)
			VALUES (?, ?)
			ON CONFLICT(name) DO NOTHING
		`, definition.Name, norm.NFC.String(definition.System))
		if err != nil {
			return fmt.Errorf("import ontology: write code system %q: %w", definition.Name, err)
		}
	}

	for _, mapping := range ontology.Mappings {
		doc, err := json.Marshal(mapping)
		if err != nil {
			return fmt.Errorf("import ontology: marshal mapping: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO mappings (context, system, code, mapping)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(context, system, code) DO NOTHING
		`,
			norm.NFC.String(mapping.Key.Context),
			norm.NFC.String(mapping.Key.TermCode.System),
			norm.NFC.String(mapping.Key.TermCode.Code),
			string(doc),
		)
		if err != nil {
			return fmt.Errorf("import ontology: write mapping %s: %w", mapping.Key.TermCode, err)
		}
	}

	for _, root := range ontology.ConceptRoots {
		if err := writeConceptNode(ctx, tx, root, sql.NullInt64{}); err != nil {
			return fmt.Errorf("import ontology: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import ontology: commit: %w", err)
	}

	return nil
}

// writeConceptNode inserts one concept node and recurses into its children,
// preserving child order through the autoincrement ids.
func writeConceptNode(ctx context.Context, tx *sql.Tx, node *model.TermCodeNode, parent sql.NullInt64) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO concept_nodes (parent, context, system, code, display)
		VALUES (?, ?, ?, ?, ?)
	`,
		parent,
		norm.NFC.String(node.Context),
		norm.NFC.String(node.TermCode.System),
		norm.NFC.String(node.TermCode.Code),
		node.TermCode.Display,
	)
	if err != nil {
		return fmt.Errorf("write concept node %s: %w", node.TermCode, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("write concept node %s: last insert id: %w", node.TermCode, err)
	}

	for _, child := range node.Children {
		if err := writeConceptNode(ctx, tx, child, sql.NullInt64{Int64: id, Valid: true}); err != nil {
			return err
		}
	}

	return nil
}
