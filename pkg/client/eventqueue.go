package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gridlink/gridlink/internal/logger"
	"github.com/gridlink/gridlink/pkg/osd"
)

// EventQueue long-polls a capability endpoint and feeds the decoded events
// into a sink. The wire protocol is a POST of an OSD body {ack, done}; the
// response is {id, events: [{message, body}, ...]}. Each response's id is
// acked in the next poll.
type EventQueue struct {
	url    string
	sink   func(name string, body osd.Value)
	client *http.Client

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewEventQueue builds a queue for the given capability URL. Events are
// handed to sink on the polling goroutine; sinks copy OSD values they
// retain.
func NewEventQueue(url string, sink func(name string, body osd.Value)) *EventQueue {
	return &EventQueue{
		url:  url,
		sink: sink,
		client: &http.Client{
			// The server holds the poll open until an event arrives or its
			// own window lapses; time out somewhat after that window.
			Timeout: 45 * time.Second,
		},
		done: make(chan struct{}),
	}
}

// Start launches the polling goroutine.
func (q *EventQueue) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	go q.loop(ctx)
}

// Stop ends polling. A final {done: true} poll tells the server to release
// the queue.
func (q *EventQueue) Stop() {
	q.once.Do(func() {
		if q.cancel == nil {
			return
		}
		q.cancel()
		<-q.done
	})
}

func (q *EventQueue) loop(ctx context.Context) {
	defer close(q.done)

	var ack int64
	errDelay := time.Second
	for {
		if ctx.Err() != nil {
			q.finalPoll(ack)
			return
		}

		id, events, err := q.poll(ctx, ack, false)
		if err != nil {
			if ctx.Err() != nil {
				q.finalPoll(ack)
				return
			}
			logger.Debug("event queue poll failed", "url", q.url, logger.KeyError, err)
			select {
			case <-ctx.Done():
				q.finalPoll(ack)
				return
			case <-time.After(errDelay):
			}
			if errDelay < 30*time.Second {
				errDelay *= 2
			}
			continue
		}
		errDelay = time.Second
		ack = id

		for _, ev := range events {
			name := ev.Get("message").AsString()
			if name == "" {
				continue
			}
			q.sink(name, ev.Get("body"))
		}
	}
}

// poll performs one long-poll round trip and returns the response id and
// event list.
func (q *EventQueue) poll(ctx context.Context, ack int64, done bool) (int64, []osd.Value, error) {
	body := osd.FromMap(map[string]osd.Value{
		"ack":  osd.FromLong(ack),
		"done": osd.FromBool(done),
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.url, bytes.NewReader(osd.SerializeXML(body)))
	if err != nil {
		return ack, nil, err
	}
	req.Header.Set("Content-Type", "application/llsd+xml")

	resp, err := q.client.Do(req)
	if err != nil {
		return ack, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	// 502 is the server's own long-poll timeout; just poll again.
	if resp.StatusCode == http.StatusBadGateway {
		return ack, nil, nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<22))
	if err != nil {
		return ack, nil, err
	}
	if len(data) == 0 {
		return ack, nil, nil
	}

	parsed, err := osd.Parse(data)
	if err != nil {
		return ack, nil, err
	}
	return parsed.Get("id").AsLong(), parsed.Get("events").AsArray(), nil
}

// finalPoll releases the server-side queue; errors are irrelevant at this
// point.
func (q *EventQueue) finalPoll(ack int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, _ = q.poll(ctx, ack, true)
}
