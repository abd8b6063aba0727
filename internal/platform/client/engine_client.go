package client

import (
	"fmt"

	"github.com/go-resty/resty/v2"
)

const (
	queryEndpoint     = "/query"
	relationsEndpoint = "/relations"
	statsEndpoint     = "/stats"
)

// EngineClient talks to a running engine's HTTP surface.
type EngineClient struct {
	client    *resty.Client
	serverUrl string
}

func NewEngineClient(serverUrl string) *EngineClient {
	return &EngineClient{
		client:    resty.New(),
		serverUrl: serverUrl,
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

type ListResponse struct {
	Tables   []string `json:"tables"`
	Matrices []string `json:"matrices"`
}

type StatsResponse struct {
	BlocksRead    int `json:"blocks_read"`
	BlocksWritten int `json:"blocks_written"`
}

// Query executes one statement remotely and returns its output.
func (c *EngineClient) Query(statement string) (string, error) {
	var resp queryResponse
	_, err := c.client.R().
		SetBody(&queryRequest{Query: statement}).
		SetResult(&resp).
		SetError(&resp).
		Post(c.serverUrl + queryEndpoint)
	if err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("query failed: %s", resp.Error)
	}
	return resp.Output, nil
}

// ListRelations fetches the catalog contents.
func (c *EngineClient) ListRelations() (*ListResponse, error) {
	var resp ListResponse
	_, err := c.client.R().SetResult(&resp).Get(c.serverUrl + relationsEndpoint)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats fetches the buffer access counters.
func (c *EngineClient) Stats() (*StatsResponse, error) {
	var resp StatsResponse
	_, err := c.client.R().SetResult(&resp).Get(c.serverUrl + statsEndpoint)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
