package tripplanner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/c360studio/tripplanner/itinerary"
	"github.com/nats-io/nats.go"
)

// DefaultPlanSubject is the request/reply subject plan requests arrive on.
const DefaultPlanSubject = "tripplanner.plan"

// queueGroup spreads plan requests across service instances.
const queueGroup = "tripplanner"

// Subscriber serves plan requests over NATS request/reply. Replies carry
// the same Result envelope as the HTTP transport.
type Subscriber struct {
	planner *Planner
	subject string
	logger  *slog.Logger
}

// NewSubscriber creates a subscriber for subject. Empty means DefaultPlanSubject.
func NewSubscriber(p *Planner, subject string, logger *slog.Logger) *Subscriber {
	if subject == "" {
		subject = DefaultPlanSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{planner: p, subject: subject, logger: logger}
}

// Subject returns the subscribed subject.
func (s *Subscriber) Subject() string {
	return s.subject
}

// Start subscribes on nc. Requests run under ctx, so cancelling it aborts
// in-flight model calls. Messages of one subscription are handled in order.
func (s *Subscriber) Start(ctx context.Context, nc *nats.Conn) (*nats.Subscription, error) {
	sub, err := nc.QueueSubscribe(s.subject, queueGroup, func(msg *nats.Msg) {
		reply := s.HandleMessage(ctx, msg.Data)
		if msg.Reply == "" {
			s.logger.Debug("Plan request without reply subject, dropping result")
			return
		}
		if err := msg.Respond(reply); err != nil {
			s.logger.Warn("Failed to send plan reply", "subject", msg.Reply, "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", s.subject, err)
	}

	s.logger.Info("Listening for plan requests", "subject", s.subject, "queue", queueGroup)
	return sub, nil
}

// HandleMessage decodes a Request, runs the planner and encodes the Result.
func (s *Subscriber) HandleMessage(ctx context.Context, data []byte) []byte {
	var req itinerary.Request
	var result itinerary.Result
	if err := json.Unmarshal(data, &req); err != nil {
		result = itinerary.Failed(fmt.Errorf("%w: request body: %v", itinerary.ErrInvalidRequest, err))
	} else {
		result = s.planner.Handle(ctx, req)
	}

	out, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("Failed to encode plan result", "error", err)
		out, _ = json.Marshal(itinerary.Failed(fmt.Errorf("encode result: %w", err)))
	}
	return out
}
