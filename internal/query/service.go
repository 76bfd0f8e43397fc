// Package query executes saved questions and browses the server catalog.
package query

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/mbrcli/mbr/internal/api"
	"github.com/mbrcli/mbr/internal/auth"
	"github.com/mbrcli/mbr/internal/tabular"
	"github.com/mbrcli/mbr/internal/utils"
)

// Service runs question and catalog operations against one server,
// translating remote failures into the error kinds callers dispatch on.
type Service struct {
	client *api.Client
	auth   *auth.Manager
}

// NewService creates a query service backed by the given client and
// auth manager.
func NewService(client *api.Client, manager *auth.Manager) *Service {
	return &Service{
		client: client,
		auth:   manager,
	}
}

// ListFilter narrows a question listing. Zero values mean no filtering.
type ListFilter struct {
	// Search keeps only questions whose name contains the term,
	// case-insensitively.
	Search string

	// Collection restricts the listing to one collection ID.
	Collection string

	// Limit caps the number of rows returned. Zero or negative means
	// unlimited.
	Limit int
}

// ListQuestions lists saved questions as a result with the columns
// ID, Name, Collection, and Last Run. An empty listing is not an error.
func (s *Service) ListQuestions(ctx context.Context, filter ListFilter) (*tabular.Result, error) {
	cards, err := s.client.ListCards(ctx, filter.Collection)
	if err != nil {
		return nil, s.classify(err)
	}

	now := time.Now()
	rows := make([][]any, 0, len(cards))
	for _, card := range cards {
		if filter.Search != "" && !utils.ContainsAny(card.Name, filter.Search) {
			continue
		}

		var collection any
		if name := card.CollectionName(); name != "" {
			collection = name
		}
		rows = append(rows, []any{card.ID, card.Name, collection, formatLastRun(card.LastQueryStart, now)})
	}
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}

	return tabular.NewResult([]string{"ID", "Name", "Collection", "Last Run"}, rows, tabular.Options{}), nil
}

// Execution is the outcome of running a saved question.
type Execution struct {
	Question *api.Card
	Result   *tabular.Result

	// RunningTime is the server-reported execution time.
	RunningTime time.Duration
}

// ExecuteQuestion runs a saved question with the given parameter values,
// keyed by parameter slug. The values are validated against the question's
// declared parameters before any execution request is sent, so a
// validation failure never reaches the network.
func (s *Service) ExecuteQuestion(ctx context.Context, id int, params map[string]string, opts tabular.Options) (*Execution, error) {
	card, err := s.client.GetCard(ctx, id)
	if err != nil {
		return nil, s.classify(err)
	}

	bindings, err := bindParameters(card.Parameters, params)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.ExecuteCard(ctx, id, bindings)
	if err != nil {
		return nil, s.classify(err)
	}

	return &Execution{
		Question:    card,
		Result:      resultFromResponse(resp, opts),
		RunningTime: time.Duration(resp.RunningTime) * time.Millisecond,
	}, nil
}

// resultFromResponse flattens a query response into display cells,
// labelling columns with their display names.
func resultFromResponse(resp *api.QueryResponse, opts tabular.Options) *tabular.Result {
	columns := make([]string, len(resp.Data.Cols))
	for i, col := range resp.Data.Cols {
		columns[i] = col.DisplayName
		if columns[i] == "" {
			columns[i] = col.Name
		}
	}
	return tabular.NewResult(columns, resp.Data.Rows, opts)
}

// formatLastRun renders a question's last execution timestamp relative
// to now. Empty means the question never ran.
func formatLastRun(raw string, now time.Time) any {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	since := now.Sub(t)
	if since < 0 {
		return t.Format("2006-01-02 15:04")
	}
	if since < time.Minute {
		return "just now"
	}
	return utils.FormatDuration(since) + " ago"
}

// classify maps remote failures onto the caller-facing error kinds.
// A 401 also runs the credential invalidation path so stale session
// material does not survive a rejection.
func (s *Service) classify(err error) error {
	if err == nil {
		return nil
	}
	if api.IsUnauthorized(err) {
		_ = s.auth.Invalidate()
		return &auth.AuthRequiredError{Profile: s.auth.Profile()}
	}
	if api.IsTimeout(err) || api.IsServerError(err) {
		return &ApiUnavailableError{Err: err}
	}
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return &InvalidRequestError{Status: statusErr.StatusCode, Message: statusErr.Message}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &ApiUnavailableError{Err: err}
	}
	return err
}
