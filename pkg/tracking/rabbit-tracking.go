package tracking

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/leadpilot/filter-engine/pkg/messaging"
	"github.com/leadpilot/filter-engine/pkg/query"
)

const filterTopic = messaging.Topic("filter_usage")

const (
	eventApply          = 1
	eventClear          = 2
	eventSuggestionPick = 3
)

type BaseEvent struct {
	SessionId int    `json:"session_id"`
	Page      string `json:"page,omitempty"`
	Event     uint16 `json:"event"`
}

type ApplyEvent struct {
	*BaseEvent
	Params map[string]string `json:"params,omitempty"`
}

type SuggestionPickEvent struct {
	*BaseEvent
	Field string `json:"field"`
	Value string `json:"value"`
}

// RabbitTracking publishes filter-usage events for the analytics pipeline.
// Publishing is fire-and-forget; a broken connection loses events, never
// requests.
type RabbitTracking struct {
	connection *amqp.Connection
	log        *zap.Logger
}

func NewRabbitTracking(url string, log *zap.Logger) (*RabbitTracking, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := messaging.DefineTopic(ch, "global", filterTopic); err != nil {
		conn.Close()
		return nil, err
	}
	return &RabbitTracking{connection: conn, log: log}, nil
}

func (t *RabbitTracking) Close() error {
	return t.connection.Close()
}

func (t *RabbitTracking) send(data any) {
	if err := messaging.Send(t.connection, "global", filterTopic, data); err != nil {
		t.log.Warn("failed to publish tracking event", zap.Error(err))
	}
}

func (t *RabbitTracking) TrackApply(sessionId int, page string, params query.Params) {
	flat := make(map[string]string, len(params))
	for _, p := range params {
		flat[p.Key] = p.Value
	}
	t.send(ApplyEvent{
		BaseEvent: &BaseEvent{SessionId: sessionId, Page: page, Event: eventApply},
		Params:    flat,
	})
}

func (t *RabbitTracking) TrackClear(sessionId int, page string) {
	t.send(&BaseEvent{SessionId: sessionId, Page: page, Event: eventClear})
}

func (t *RabbitTracking) TrackSuggestionPick(sessionId int, field, value string) {
	t.send(SuggestionPickEvent{
		BaseEvent: &BaseEvent{SessionId: sessionId, Event: eventSuggestionPick},
		Field:     field,
		Value:     value,
	})
}
