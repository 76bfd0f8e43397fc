// Package query executes saved questions and browses the server catalog.
package query

import (
	"context"

	"github.com/mbrcli/mbr/internal/tabular"
)

// defaultPreviewLimit is the row cap for table previews when the caller
// does not choose one.
const defaultPreviewLimit = 10

// ListCollections lists the server's active collections.
func (s *Service) ListCollections(ctx context.Context) (*tabular.Result, error) {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, s.classify(err)
	}

	rows := make([][]any, 0, len(collections))
	for _, c := range collections {
		var id any = "root"
		if c.ID.Valid {
			id = c.ID.ID
		}
		rows = append(rows, []any{id, c.Name})
	}
	return tabular.NewResult([]string{"ID", "Name"}, rows, tabular.Options{}), nil
}

// ListDatabases lists the databases the server knows about.
func (s *Service) ListDatabases(ctx context.Context) (*tabular.Result, error) {
	databases, err := s.client.ListDatabases(ctx)
	if err != nil {
		return nil, s.classify(err)
	}

	rows := make([][]any, 0, len(databases))
	for _, db := range databases {
		rows = append(rows, []any{db.ID, db.Name, db.Engine})
	}
	return tabular.NewResult([]string{"ID", "Name", "Engine"}, rows, tabular.Options{}), nil
}

// ListSchemas lists the schemas of one database.
func (s *Service) ListSchemas(ctx context.Context, databaseID int) (*tabular.Result, error) {
	schemas, err := s.client.ListSchemas(ctx, databaseID)
	if err != nil {
		return nil, s.classify(err)
	}

	rows := make([][]any, 0, len(schemas))
	for _, schema := range schemas {
		rows = append(rows, []any{schema})
	}
	return tabular.NewResult([]string{"Schema"}, rows, tabular.Options{}), nil
}

// ListTables lists the tables of one schema.
func (s *Service) ListTables(ctx context.Context, databaseID int, schema string) (*tabular.Result, error) {
	tables, err := s.client.ListTables(ctx, databaseID, schema)
	if err != nil {
		return nil, s.classify(err)
	}

	rows := make([][]any, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, []any{t.ID, t.Name, t.Schema})
	}
	return tabular.NewResult([]string{"ID", "Name", "Schema"}, rows, tabular.Options{}), nil
}

// PreviewTable runs an ad-hoc row sample against one table, normalized
// the same way as a question execution.
func (s *Service) PreviewTable(ctx context.Context, databaseID, tableID, limit int) (*tabular.Result, error) {
	if limit <= 0 {
		limit = defaultPreviewLimit
	}
	resp, err := s.client.RunDataset(ctx, databaseID, tableID, limit)
	if err != nil {
		return nil, s.classify(err)
	}
	return resultFromResponse(resp, tabular.Options{}), nil
}
