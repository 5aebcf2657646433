package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/leadpilot/filter-engine/pkg/query"
)

// Result statuses the backend hands back with every page. The host page
// interprets them; the engine only carries them through.
const (
	StatusSuccess                 = "SUCCESS"
	StatusPixelInstallationNeeded = "PIXEL_INSTALLATION_NEEDED"
	StatusNeedBookCall            = "NEED_BOOK_CALL"
)

// Result is one page of rows with the backend's status discriminator.
type Result struct {
	Status     string            `json:"status"`
	Rows       []json.RawMessage `json:"rows"`
	TotalCount int               `json:"totalCount"`
}

// Client issues a compiled filter as query parameters against the backend.
// Every call carries a client-side deadline; the backend defines none.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewClient(baseURL string, client *http.Client, timeout time.Duration) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		timeout: timeout,
	}
}

// Execute fetches one page for the compiled parameters. The response body is
// {"status": ..., "data": [rows, totalCount]}.
func (c *Client) Execute(ctx context.Context, entity string, params query.Params, page, perPage int) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	qs := params.Encode()
	if qs != "" {
		qs += "&"
	}
	qs += "page=" + strconv.Itoa(page) + "&per_page=" + strconv.Itoa(perPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+entity+"?"+qs, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute query %s: %w", entity, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("execute query %s: status %d", entity, res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	return decodeResult(body)
}

func decodeResult(body []byte) (*Result, error) {
	var envelope struct {
		Status string            `json:"status"`
		Data   []json.RawMessage `json:"data"`
	}
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	result := &Result{Status: envelope.Status, Rows: []json.RawMessage{}}
	if len(envelope.Data) > 0 {
		if err := sonic.Unmarshal(envelope.Data[0], &result.Rows); err != nil {
			return nil, fmt.Errorf("decode result rows: %w", err)
		}
	}
	if len(envelope.Data) > 1 {
		if err := sonic.Unmarshal(envelope.Data[1], &result.TotalCount); err != nil {
			return nil, fmt.Errorf("decode result count: %w", err)
		}
	}
	return result, nil
}
