package query

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mbrcli/mbr/internal/api"
	"github.com/mbrcli/mbr/internal/auth"
	"github.com/mbrcli/mbr/internal/keyring"
	"github.com/mbrcli/mbr/internal/tabular"
)

func newTestService(t *testing.T, handler http.Handler) (*Service, *keyring.MockStore) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := api.New(server.URL, api.APIKey("test-key"))
	store := keyring.NewMockStore()
	return NewService(client, auth.NewManager(client, store, "default")), store
}

const cardListBody = `[
	{"id": 1, "name": "Revenue by month", "collection": {"id": 7, "name": "Finance"}, "last_query_start": "2026-08-01T10:00:00Z"},
	{"id": 2, "name": "Active users", "collection_id": "root"},
	{"id": 3, "name": "Revenue by region", "collection": {"id": 7, "name": "Finance"}}
]`

func TestListQuestions(t *testing.T) {
	tests := []struct {
		name      string
		filter    ListFilter
		wantNames []string
	}{
		{
			name:      "unfiltered",
			wantNames: []string{"Revenue by month", "Active users", "Revenue by region"},
		},
		{
			name:      "search is case-insensitive",
			filter:    ListFilter{Search: "revenue"},
			wantNames: []string{"Revenue by month", "Revenue by region"},
		},
		{
			name:      "search without match",
			filter:    ListFilter{Search: "churn"},
			wantNames: []string{},
		},
		{
			name:      "limit truncates",
			filter:    ListFilter{Limit: 2},
			wantNames: []string{"Revenue by month", "Active users"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/card" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				_, _ = w.Write([]byte(cardListBody))
			}))

			result, err := service.ListQuestions(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("ListQuestions() error = %v", err)
			}

			wantColumns := []string{"ID", "Name", "Collection", "Last Run"}
			if len(result.Columns) != len(wantColumns) {
				t.Fatalf("columns = %v, want %v", result.Columns, wantColumns)
			}
			for i, want := range wantColumns {
				if result.Columns[i] != want {
					t.Errorf("columns[%d] = %q, want %q", i, result.Columns[i], want)
				}
			}

			if result.RowCount() != len(tt.wantNames) {
				t.Fatalf("RowCount() = %d, want %d", result.RowCount(), len(tt.wantNames))
			}
			for i, want := range tt.wantNames {
				if result.Rows[i][1] != want {
					t.Errorf("rows[%d] name = %q, want %q", i, result.Rows[i][1], want)
				}
			}
		})
	}
}

func TestListQuestionsCells(t *testing.T) {
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(cardListBody))
	}))

	result, err := service.ListQuestions(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("ListQuestions() error = %v", err)
	}

	if result.Rows[0][2] != "Finance" {
		t.Errorf("collection cell = %q, want Finance", result.Rows[0][2])
	}
	if result.Rows[1][2] != "-" {
		t.Errorf("top-level collection cell = %q, want -", result.Rows[1][2])
	}
	if result.Rows[2][3] != "-" {
		t.Errorf("never-run cell = %q, want -", result.Rows[2][3])
	}
	if result.Rows[0][3] == "-" {
		t.Error("last run cell = -, want a rendered timestamp")
	}
}

func TestListQuestionsForwardsCollection(t *testing.T) {
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("collection"); got != "7" {
			t.Errorf("collection = %q, want 7", got)
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	result, err := service.ListQuestions(context.Background(), ListFilter{Collection: "7"})
	if err != nil {
		t.Fatalf("ListQuestions() error = %v", err)
	}
	if result.RowCount() != 0 {
		t.Errorf("RowCount() = %d, want 0", result.RowCount())
	}
}

func TestFormatLastRun(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		raw      string
		expected any
	}{
		{
			name:     "never ran",
			raw:      "",
			expected: nil,
		},
		{
			name:     "unparseable passes through",
			raw:      "yesterday-ish",
			expected: "yesterday-ish",
		},
		{
			name:     "under a minute",
			raw:      "2026-03-14T11:59:40Z",
			expected: "just now",
		},
		{
			name:     "minutes",
			raw:      "2026-03-14T11:30:00Z",
			expected: "30m 0s ago",
		},
		{
			name:     "days",
			raw:      "2026-03-12T06:00:00Z",
			expected: "2d 6h ago",
		},
		{
			name:     "fractional seconds accepted",
			raw:      "2026-03-14T09:00:00.000Z",
			expected: "3h 0m ago",
		},
		{
			name:     "future timestamp rendered absolute",
			raw:      "2026-03-15T08:30:00Z",
			expected: "2026-03-15 08:30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatLastRun(tt.raw, now); got != tt.expected {
				t.Errorf("formatLastRun(%q) = %v, want %v", tt.raw, got, tt.expected)
			}
		})
	}
}

const cardBody = `{
	"id": 42,
	"name": "Orders by state",
	"parameters": [
		{"id": "p1", "name": "State", "slug": "state", "type": "category", "target": ["variable", ["template-tag", "state"]], "required": true},
		{"id": "p2", "name": "Limit", "slug": "limit", "type": "number", "required": false}
	]
}`

const queryBody = `{
	"data": {
		"cols": [
			{"name": "state", "display_name": "State", "base_type": "type/Text"},
			{"name": "total", "display_name": "Total", "base_type": "type/Integer"}
		],
		"rows": [["CA", 1234], ["NY", null]]
	},
	"status": "completed",
	"row_count": 2,
	"running_time": 45
}`

// executeHandler serves the card fetch and counts execution requests.
func executeHandler(t *testing.T, queries *atomic.Int64, execute http.HandlerFunc) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/card/42":
			_, _ = w.Write([]byte(cardBody))
		case "/api/card/42/query":
			queries.Add(1)
			execute(w, r)
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestExecuteQuestion(t *testing.T) {
	var queries atomic.Int64
	var gotBody []byte
	service, _ := newTestService(t, executeHandler(t, &queries, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(queryBody))
	}))

	execution, err := service.ExecuteQuestion(context.Background(), 42, map[string]string{"state": "CA"}, tabular.Options{})
	if err != nil {
		t.Fatalf("ExecuteQuestion() error = %v", err)
	}

	if execution.Question.Name != "Orders by state" {
		t.Errorf("Question.Name = %q, want Orders by state", execution.Question.Name)
	}
	if execution.RunningTime != 45*time.Millisecond {
		t.Errorf("RunningTime = %v, want 45ms", execution.RunningTime)
	}

	result := execution.Result
	if result.Columns[0] != "State" || result.Columns[1] != "Total" {
		t.Errorf("columns = %v, want display names", result.Columns)
	}
	if result.Rows[0][1] != "1234" {
		t.Errorf("numeric cell = %q, want 1234", result.Rows[0][1])
	}
	if result.Rows[1][1] != "-" {
		t.Errorf("null cell = %q, want -", result.Rows[1][1])
	}

	var payload struct {
		Parameters []struct {
			ID     string          `json:"id"`
			Type   string          `json:"type"`
			Target json.RawMessage `json:"target"`
			Value  any             `json:"value"`
		} `json:"parameters"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if len(payload.Parameters) != 1 {
		t.Fatalf("len(parameters) = %d, want 1", len(payload.Parameters))
	}
	p := payload.Parameters[0]
	if p.ID != "p1" || p.Type != "category" || p.Value != "CA" {
		t.Errorf("binding = %+v, want p1/category/CA", p)
	}
	if len(p.Target) == 0 {
		t.Error("binding target is empty, want the declared target")
	}
}

func TestExecuteQuestionRejectsUnknownParameter(t *testing.T) {
	var queries atomic.Int64
	service, _ := newTestService(t, executeHandler(t, &queries, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(queryBody))
	}))

	_, err := service.ExecuteQuestion(context.Background(), 42, map[string]string{"region": "west"}, tabular.Options{})

	var unknownErr *UnknownParameterError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected *UnknownParameterError, got %v", err)
	}
	if unknownErr.Name != "region" {
		t.Errorf("Name = %q, want region", unknownErr.Name)
	}
	if len(unknownErr.Accepted) != 2 || unknownErr.Accepted[0] != "limit" || unknownErr.Accepted[1] != "state" {
		t.Errorf("Accepted = %v, want [limit state]", unknownErr.Accepted)
	}
	if got := queries.Load(); got != 0 {
		t.Errorf("execution requests = %d, want 0", got)
	}
}

func TestExecuteQuestionRejectsMissingParameter(t *testing.T) {
	var queries atomic.Int64
	service, _ := newTestService(t, executeHandler(t, &queries, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(queryBody))
	}))

	_, err := service.ExecuteQuestion(context.Background(), 42, nil, tabular.Options{})

	var missingErr *MissingParameterError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected *MissingParameterError, got %v", err)
	}
	if missingErr.Name != "state" {
		t.Errorf("Name = %q, want state", missingErr.Name)
	}
	if got := queries.Load(); got != 0 {
		t.Errorf("execution requests = %d, want 0", got)
	}
}

func TestExecuteQuestionUnauthorizedClearsSession(t *testing.T) {
	var queries atomic.Int64
	server := httptest.NewServer(executeHandler(t, &queries, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client := api.New(server.URL, api.SessionToken("stale-session"))
	store := keyring.NewMockStore()
	if err := store.Set("default", "stale-session"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	manager := auth.NewManager(client, store, "default")
	service := NewService(client, manager)

	_, err := service.ExecuteQuestion(context.Background(), 42, map[string]string{"state": "CA"}, tabular.Options{})

	var authErr *auth.AuthRequiredError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthRequiredError, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("stored sessions = %d, want 0 after invalidation", store.Len())
	}
	if client.Credential() != nil {
		t.Error("client credential survived invalidation")
	}
}

func TestExecuteQuestionNotFound(t *testing.T) {
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := service.ExecuteQuestion(context.Background(), 999, nil, tabular.Options{})

	var invalidErr *InvalidRequestError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected *InvalidRequestError, got %v", err)
	}
	if invalidErr.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", invalidErr.Status)
	}
	if invalidErr.Message != "question 999 not found" {
		t.Errorf("Message = %q, want question 999 not found", invalidErr.Message)
	}
}

func TestExecuteQuestionServerError(t *testing.T) {
	var queries atomic.Int64
	service, store := newTestService(t, executeHandler(t, &queries, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	if err := store.Set("default", "session"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	_, err := service.ExecuteQuestion(context.Background(), 42, map[string]string{"state": "CA"}, tabular.Options{})

	var unavailableErr *ApiUnavailableError
	if !errors.As(err, &unavailableErr) {
		t.Fatalf("expected *ApiUnavailableError, got %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("stored sessions = %d, want 1 after a server error", store.Len())
	}
}

func TestExecuteQuestionUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := api.New(server.URL, api.APIKey("k"))
	service := NewService(client, auth.NewManager(client, keyring.NewMockStore(), "default"))

	_, err := service.ExecuteQuestion(context.Background(), 42, nil, tabular.Options{})

	var unavailableErr *ApiUnavailableError
	if !errors.As(err, &unavailableErr) {
		t.Fatalf("expected *ApiUnavailableError, got %v", err)
	}
}
