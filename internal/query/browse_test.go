package query

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/mbrcli/mbr/internal/auth"
)

func TestListCollections(t *testing.T) {
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/collection" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"id": "root", "name": "Our analytics"},
			{"id": 7, "name": "Finance"},
			{"id": 8, "name": "Old reports", "archived": true}
		]`))
	}))

	result, err := service.ListCollections(context.Background())
	if err != nil {
		t.Fatalf("ListCollections() error = %v", err)
	}

	if result.RowCount() != 2 {
		t.Fatalf("RowCount() = %d, want 2 after dropping archived", result.RowCount())
	}
	if result.Rows[0][0] != "root" || result.Rows[0][1] != "Our analytics" {
		t.Errorf("rows[0] = %v, want the root collection", result.Rows[0])
	}
	if result.Rows[1][0] != "7" || result.Rows[1][1] != "Finance" {
		t.Errorf("rows[1] = %v, want 7/Finance", result.Rows[1])
	}
}

func TestListDatabases(t *testing.T) {
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/database" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data": [
			{"id": 1, "name": "Sample Database", "engine": "h2"},
			{"id": 2, "name": "Warehouse", "engine": "postgres"}
		]}`))
	}))

	result, err := service.ListDatabases(context.Background())
	if err != nil {
		t.Fatalf("ListDatabases() error = %v", err)
	}

	wantColumns := []string{"ID", "Name", "Engine"}
	for i, want := range wantColumns {
		if result.Columns[i] != want {
			t.Errorf("columns[%d] = %q, want %q", i, result.Columns[i], want)
		}
	}
	if result.RowCount() != 2 {
		t.Fatalf("RowCount() = %d, want 2", result.RowCount())
	}
	if result.Rows[1][2] != "postgres" {
		t.Errorf("engine cell = %q, want postgres", result.Rows[1][2])
	}
}

func TestListSchemas(t *testing.T) {
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/database/2/schemas" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`["public", "reporting"]`))
	}))

	result, err := service.ListSchemas(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListSchemas() error = %v", err)
	}

	if len(result.Columns) != 1 || result.Columns[0] != "Schema" {
		t.Errorf("columns = %v, want [Schema]", result.Columns)
	}
	if result.RowCount() != 2 || result.Rows[1][0] != "reporting" {
		t.Errorf("rows = %v, want public and reporting", result.Rows)
	}
}

func TestListTables(t *testing.T) {
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/database/2/schema/public" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"id": 10, "name": "orders", "display_name": "Orders", "schema": "public"}
		]`))
	}))

	result, err := service.ListTables(context.Background(), 2, "public")
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}

	if result.RowCount() != 1 {
		t.Fatalf("RowCount() = %d, want 1", result.RowCount())
	}
	row := result.Rows[0]
	if row[0] != "10" || row[1] != "orders" || row[2] != "public" {
		t.Errorf("rows[0] = %v, want 10/orders/public", row)
	}
}

func TestPreviewTable(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit float64
	}{
		{
			name:      "explicit limit",
			limit:     50,
			wantLimit: 50,
		},
		{
			name:      "zero falls back to the default",
			wantLimit: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBody []byte
			service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/dataset" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				gotBody, _ = io.ReadAll(r.Body)
				_, _ = w.Write([]byte(`{
					"data": {
						"cols": [{"name": "id", "display_name": "ID"}, {"name": "note", "display_name": "Note"}],
						"rows": [[1, null]]
					},
					"row_count": 1
				}`))
			}))

			result, err := service.PreviewTable(context.Background(), 2, 10, tt.limit)
			if err != nil {
				t.Fatalf("PreviewTable() error = %v", err)
			}

			var payload struct {
				Database float64 `json:"database"`
				Query    struct {
					SourceTable float64 `json:"source-table"`
					Limit       float64 `json:"limit"`
				} `json:"query"`
			}
			if err := json.Unmarshal(gotBody, &payload); err != nil {
				t.Fatalf("request body is not JSON: %v", err)
			}
			if payload.Database != 2 || payload.Query.SourceTable != 10 {
				t.Errorf("payload = %+v, want database 2 table 10", payload)
			}
			if payload.Query.Limit != tt.wantLimit {
				t.Errorf("limit = %v, want %v", payload.Query.Limit, tt.wantLimit)
			}

			if result.Rows[0][1] != "-" {
				t.Errorf("null cell = %q, want -", result.Rows[0][1])
			}
		})
	}
}

func TestBrowseUnauthorized(t *testing.T) {
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := service.ListDatabases(context.Background())

	var authErr *auth.AuthRequiredError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthRequiredError, got %v", err)
	}
}

func TestBrowseNotFound(t *testing.T) {
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := service.ListSchemas(context.Background(), 99)

	var invalidErr *InvalidRequestError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected *InvalidRequestError, got %v", err)
	}
	if invalidErr.Message != "database 99 not found" {
		t.Errorf("Message = %q, want database 99 not found", invalidErr.Message)
	}
}
