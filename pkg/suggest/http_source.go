package suggest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
)

type sourceKind uint8

const (
	kindLocation sourceKind = iota
	kindContact
)

// HTTPSource queries the backend's prefix-search endpoints. Location results
// come back as {city,state} pairs, contact results as plain name strings.
type HTTPSource struct {
	client *http.Client
	url    string
	kind   sourceKind
}

func NewLocationSource(client *http.Client, baseURL, entity string) *HTTPSource {
	return newHTTPSource(client, baseURL, entity, "search-location", kindLocation)
}

func NewContactSource(client *http.Client, baseURL, entity string) *HTTPSource {
	return newHTTPSource(client, baseURL, entity, "search-contact", kindContact)
}

func newHTTPSource(client *http.Client, baseURL, entity, path string, kind sourceKind) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{
		client: client,
		url:    fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(baseURL, "/"), entity, path),
		kind:   kind,
	}
}

func (s *HTTPSource) Lookup(ctx context.Context, prefix string) ([]Suggestion, error) {
	u := s.url + "?start_letter=" + url.QueryEscape(prefix)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggest lookup %s: status %d", s.url, res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	return s.decode(body)
}

func (s *HTTPSource) decode(body []byte) ([]Suggestion, error) {
	switch s.kind {
	case kindLocation:
		var hits []struct {
			City  string `json:"city"`
			State string `json:"state"`
		}
		if err := sonic.Unmarshal(body, &hits); err != nil {
			return nil, err
		}
		out := make([]Suggestion, 0, len(hits))
		for _, h := range hits {
			out = append(out, Suggestion{
				Value: fmt.Sprintf("%s, %s", h.City, h.State),
				City:  h.City,
				State: h.State,
			})
		}
		return out, nil
	default:
		var names []string
		if err := sonic.Unmarshal(body, &names); err != nil {
			return nil, err
		}
		out := make([]Suggestion, 0, len(names))
		for _, name := range names {
			out = append(out, Suggestion{Value: name})
		}
		return out, nil
	}
}
