package executor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leadpilot/filter-engine/pkg/query"
)

func TestExecuteSendsCompiledParams(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("industry") != "Tech,Retail" {
			t.Errorf("industry = %q", q.Get("industry"))
		}
		if q.Get("page") != "2" || q.Get("per_page") != "25" {
			t.Errorf("pagination = %s/%s", q.Get("page"), q.Get("per_page"))
		}
		w.Write([]byte(`{"status":"SUCCESS","data":[[{"id":1},{"id":2}],42]}`))
	}))
	defer backend.Close()

	c := NewClient(backend.URL, backend.Client(), 0)
	params := query.Params{{Key: "industry", Value: "Tech,Retail"}}
	res, err := c.Execute(context.Background(), "leads", params, 2, 25)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != StatusSuccess {
		t.Errorf("status = %q", res.Status)
	}
	if len(res.Rows) != 2 || res.TotalCount != 42 {
		t.Errorf("rows=%d total=%d", len(res.Rows), res.TotalCount)
	}
}

func TestExecuteCarriesStatusDiscriminator(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"PIXEL_INSTALLATION_NEEDED","data":[[],0]}`))
	}))
	defer backend.Close()

	c := NewClient(backend.URL, backend.Client(), 0)
	res, err := c.Execute(context.Background(), "leads", nil, 0, 10)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != StatusPixelInstallationNeeded {
		t.Errorf("status = %q", res.Status)
	}
}

func TestExecuteBackendErrorPropagates(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer backend.Close()

	c := NewClient(backend.URL, backend.Client(), 0)
	if _, err := c.Execute(context.Background(), "leads", nil, 0, 10); err == nil {
		t.Fatal("expected an error for status 502")
	}
}

func TestExecuteTimesOut(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer backend.Close()

	c := NewClient(backend.URL, backend.Client(), 20*time.Millisecond)
	if _, err := c.Execute(context.Background(), "leads", nil, 0, 10); err == nil {
		t.Fatal("expected a timeout error")
	}
}
