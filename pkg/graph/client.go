package graph

import (
	"encoding/json"
	"fmt"

	"perpdesk/pkg/http"
)

// Client is a minimal GraphQL-over-HTTP client for subgraph endpoints:
// one POST per query, no caching, no subscriptions.
type Client struct {
	url string
}

func NewClient(url string) *Client {
	return &Client{url: url}
}

type graphRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphError    `json:"errors,omitempty"`
}

type graphError struct {
	Message string `json:"message"`
}

// Query runs one GraphQL query and decodes the data envelope into out.
func (c *Client) Query(query string, variables map[string]any, out any) error {
	var res graphResponse
	if err := http.PostJSON(c.url, graphRequest{Query: query, Variables: variables}, &res); err != nil {
		return fmt.Errorf("fail to query subgraph: %w", err)
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("subgraph error: %v", res.Errors[0].Message)
	}
	return json.Unmarshal(res.Data, out)
}
