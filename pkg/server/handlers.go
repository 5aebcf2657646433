package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/schema"

	"github.com/leadpilot/filter-engine/pkg/common"
	"github.com/leadpilot/filter-engine/pkg/facet"
	"github.com/leadpilot/filter-engine/pkg/panel"
	"github.com/leadpilot/filter-engine/pkg/suggest"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

type pagination struct {
	Page    int `schema:"page"`
	PerPage int `schema:"per_page"`
}

var errUnknownPage = errors.New("unknown page")

func (ws *WebServer) openPanel(r *http.Request, sessionId int) (*panel.Controller, error) {
	page := r.PathValue("page")
	ctrl, ok := ws.panelFor(sessionId, page)
	if !ok {
		return nil, &common.HttpError{Status: http.StatusNotFound, Err: fmt.Errorf("%w: %s", errUnknownPage, page)}
	}
	if err := ctrl.Open(r.Context()); err != nil {
		return nil, err
	}
	return ctrl, nil
}

type panelView struct {
	ID     string       `json:"id"`
	Page   string       `json:"page"`
	Schema facet.Schema `json:"schema"`
	Tags   []facet.Tag  `json:"tags"`
}

func (ws *WebServer) GetPanel(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	ctrl, err := ws.openPanel(r, sessionId)
	if err != nil {
		return nil, err
	}
	page := r.PathValue("page")
	return panelView{ID: ctrl.ID, Page: page, Schema: Pages[page].Schema, Tags: ctrl.Tags()}, nil
}

type setFacetRequest struct {
	// BooleanSet
	Option   string `json:"option,omitempty"`
	Selected bool   `json:"selected,omitempty"`
	// ExclusiveChoice, TagList, FreeText
	Value string `json:"value,omitempty"`
	// DateRange (unix seconds), TimeRange (HH:MM)
	From *int64 `json:"from,omitempty"`
	To   *int64 `json:"to,omitempty"`
	// TimeRange bounds
	FromTime string `json:"fromTime,omitempty"`
	ToTime   string `json:"toTime,omitempty"`
}

func (ws *WebServer) SetFacet(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	ctrl, err := ws.openPanel(r, sessionId)
	if err != nil {
		return nil, err
	}
	name := r.PathValue("name")
	def, ok := Pages[r.PathValue("page")].Schema.Find(name)
	if !ok {
		return nil, &common.HttpError{Status: http.StatusNotFound, Err: fmt.Errorf("unknown facet: %s", name)}
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	var req setFacetRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		return nil, &common.HttpError{Status: http.StatusBadRequest, Err: err}
	}

	switch def.Kind {
	case facet.KindBooleanSet:
		if req.Option == "" {
			return nil, &common.HttpError{Status: http.StatusBadRequest, Err: errors.New("option is required")}
		}
		ctrl.SetBool(name, req.Option, req.Selected)
	case facet.KindExclusiveChoice:
		ctrl.SetFacet(name, facet.Choice(req.Value))
	case facet.KindDateRange:
		var v facet.DateRange
		if req.From != nil {
			from := time.Unix(*req.From, 0).UTC()
			v.From = &from
		}
		if req.To != nil {
			to := time.Unix(*req.To, 0).UTC()
			v.To = &to
		}
		ctrl.SetFacet(name, v)
	case facet.KindTimeRange:
		ctrl.SetFacet(name, facet.TimeRange{From: req.FromTime, To: req.ToTime})
	case facet.KindTagList:
		if req.Value == "" {
			return nil, &common.HttpError{Status: http.StatusBadRequest, Err: errors.New("value is required")}
		}
		ctrl.AppendTag(name, req.Value)
	case facet.KindFreeText:
		ctrl.SetFacet(name, facet.FreeText(req.Value))
	}
	return ctrl.Tags(), nil
}

func (ws *WebServer) ClearFacet(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	ctrl, err := ws.openPanel(r, sessionId)
	if err != nil {
		return nil, err
	}
	ctrl.ClearFacet(r.PathValue("name"))
	return ctrl.Tags(), nil
}

func (ws *WebServer) DeleteTag(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	ctrl, err := ws.openPanel(r, sessionId)
	if err != nil {
		return nil, err
	}
	var tag facet.Tag
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&tag); err != nil {
		return nil, &common.HttpError{Status: http.StatusBadRequest, Err: err}
	}
	ctrl.DeleteTag(tag)
	return ctrl.Tags(), nil
}

func (ws *WebServer) ToggleGroup(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	ctrl, err := ws.openPanel(r, sessionId)
	if err != nil {
		return nil, err
	}
	group := r.PathValue("group")
	return map[string]any{"group": group, "open": ctrl.ToggleGroup(group)}, nil
}

func (ws *WebServer) Apply(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	ctrl, err := ws.openPanel(r, sessionId)
	if err != nil {
		return nil, err
	}
	pg := pagination{Page: 1, PerPage: 25}
	if err := decoder.Decode(&pg, r.URL.Query()); err != nil {
		return nil, &common.HttpError{Status: http.StatusBadRequest, Err: err}
	}

	page := r.PathValue("page")
	start := time.Now()
	result, err := ctrl.Apply(r.Context(), pg.Page, pg.PerPage)
	if err != nil {
		if errors.Is(err, panel.ErrBusy) {
			return nil, &common.HttpError{Status: http.StatusConflict, Err: err}
		}
		appliesTotal.WithLabelValues(page, "error").Inc()
		return nil, err
	}
	appliesTotal.WithLabelValues(page, result.Status).Inc()
	applyDuration.WithLabelValues(page).Observe(time.Since(start).Seconds())
	return result, nil
}

func (ws *WebServer) ClearAll(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	ctrl, err := ws.openPanel(r, sessionId)
	if err != nil {
		return nil, err
	}
	if err := ctrl.ClearAll(r.Context()); err != nil {
		return nil, err
	}
	clearsTotal.WithLabelValues(r.PathValue("page")).Inc()
	return ctrl.Tags(), nil
}

type pickRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// PickSuggestion appends a chosen autocomplete hit to the matching tag-list
// facet. Picking only edits; the host still applies explicitly.
func (ws *WebServer) PickSuggestion(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	ctrl, err := ws.openPanel(r, sessionId)
	if err != nil {
		return nil, err
	}
	var req pickRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, &common.HttpError{Status: http.StatusBadRequest, Err: err}
	}
	facetName, ok := suggestFacet[req.Field]
	if !ok {
		return nil, &common.HttpError{Status: http.StatusNotFound, Err: fmt.Errorf("unknown suggestion field: %s", req.Field)}
	}
	ctrl.AppendTag(facetName, req.Value)
	if ws.Tracking != nil {
		ws.Tracking.TrackSuggestionPick(sessionId, req.Field, req.Value)
	}
	return ctrl.Tags(), nil
}

func (ws *WebServer) Suggestions(w http.ResponseWriter, r *http.Request, sessionId int) (any, error) {
	page := r.PathValue("page")
	field := r.PathValue("field")
	broker, ok := ws.brokerFor(sessionId, page, field)
	if !ok {
		return nil, &common.HttpError{Status: http.StatusNotFound, Err: fmt.Errorf("no suggestions for %s/%s", page, field)}
	}
	suggestRequests.WithLabelValues(field).Inc()

	hits := make(chan []suggest.Suggestion, 1)
	broker.Query(r.Context(), r.URL.Query().Get("q"), func(s []suggest.Suggestion) {
		hits <- s
	})
	// A superseded query never reports back; the newer request answers
	// instead and this one ends with its client connection.
	select {
	case s := <-hits:
		if s == nil {
			s = []suggest.Suggestion{}
		}
		return s, nil
	case <-r.Context().Done():
		return nil, r.Context().Err()
	}
}
