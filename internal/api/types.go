// Package api provides Metabase server interaction utilities.
package api

import (
	"encoding/json"
	"strconv"
)

// CollectionID handles the mixed encodings Metabase uses for collection
// references: a number, a numeric string, the literal "root", or null.
// "root" and null both mean the top-level collection and decode as invalid.
type CollectionID struct {
	ID    int
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler. Unrecognized encodings decode
// as invalid rather than failing the whole payload.
func (c *CollectionID) UnmarshalJSON(data []byte) error {
	c.ID = 0
	c.Valid = false

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case float64:
		c.ID = int(v)
		c.Valid = true
	case string:
		if v == "root" {
			return nil
		}
		if id, err := strconv.Atoi(v); err == nil {
			c.ID = id
			c.Valid = true
		}
	}

	return nil
}

// Collection is a Metabase collection as returned by the listing endpoint.
type Collection struct {
	ID       CollectionID `json:"id"`
	Name     string       `json:"name"`
	Archived bool         `json:"archived"`
}

// Parameter is a template parameter declared on a saved question.
type Parameter struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Type     string          `json:"type"`
	Target   json.RawMessage `json:"target,omitempty"`
	Required bool            `json:"required"`
	Default  any             `json:"default,omitempty"`
}

// ParameterBinding is one resolved parameter value sent with an execution.
// ID, Type, and Target are copied from the card's declaration.
type ParameterBinding struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Target json.RawMessage `json:"target,omitempty"`
	Value  any             `json:"value"`
}

// Card is a saved question as returned by the card endpoints.
type Card struct {
	ID             int          `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	CollectionID   CollectionID `json:"collection_id"`
	Collection     *Collection  `json:"collection"`
	Parameters     []Parameter  `json:"parameters"`
	Archived       bool         `json:"archived"`
	LastQueryStart string       `json:"last_query_start"`
}

// CollectionName returns the name of the card's collection, or "" when the
// card lives at the top level.
func (c Card) CollectionName() string {
	if c.Collection != nil {
		return c.Collection.Name
	}
	return ""
}

// Column describes one column of a query result.
type Column struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	BaseType    string `json:"base_type"`
}

// QueryData holds the columns and row cells of a query result. Cells are
// decoded through json.Number, so numeric values keep their exact wire
// representation.
type QueryData struct {
	Cols []Column `json:"cols"`
	Rows [][]any  `json:"rows"`
}

// QueryResponse is the result of executing a card or an ad-hoc dataset
// query.
type QueryResponse struct {
	Data        QueryData `json:"data"`
	Status      string    `json:"status"`
	RowCount    int       `json:"row_count"`
	RunningTime int       `json:"running_time"`
}

// Database is a configured data source.
type Database struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Engine string `json:"engine"`
}

// Table describes one table within a database schema.
type Table struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Schema      string `json:"schema"`
}

// User is the Metabase account a credential authenticates as.
type User struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CommonName  string `json:"common_name"`
	IsSuperuser bool   `json:"is_superuser"`
}

// DisplayName returns the friendliest available name for the user.
func (u User) DisplayName() string {
	if u.CommonName != "" {
		return u.CommonName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Email
}
