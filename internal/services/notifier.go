package services

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"
)

const (
	EventMatchUpserted    = "match.upserted"
	EventFeedbackReceived = "feedback.received"
)

// Event is the envelope delivered to the notification subsystem.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Notifier delivers events to the notification subsystem fire-and-forget:
// Emit never blocks the caller and delivery failures never surface as
// errors in the matching flow.
type Notifier interface {
	Emit(event Event)
	Stop()
}

// NewNotifier returns a webhook notifier when a URL is configured, a no-op
// notifier otherwise.
func NewNotifier(webhookURL string, bufferSize int) Notifier {
	if webhookURL == "" {
		return &noopNotifier{}
	}
	if bufferSize <= 0 {
		bufferSize = 256
	}

	n := &webhookNotifier{
		url:      webhookURL,
		events:   make(chan Event, bufferSize),
		stopChan: make(chan struct{}),
		client:   &http.Client{Timeout: 10 * time.Second},
	}

	n.wg.Add(1)
	go n.dispatch()

	return n
}

type webhookNotifier struct {
	url      string
	events   chan Event
	stopChan chan struct{}
	client   *http.Client
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// Emit implements Notifier. A full buffer drops the event with a log line
// instead of blocking the match path.
func (n *webhookNotifier) Emit(event Event) {
	select {
	case n.events <- event:
	case <-n.stopChan:
	default:
		log.Printf("⚠️  Notifier buffer full, dropping %s event\n", event.Type)
	}
}

// Stop implements Notifier. Drains nothing: undelivered events are dropped.
func (n *webhookNotifier) Stop() {
	n.stopOnce.Do(func() {
		close(n.stopChan)
	})
	n.wg.Wait()
}

func (n *webhookNotifier) dispatch() {
	defer n.wg.Done()

	for {
		select {
		case <-n.stopChan:
			return
		case event := <-n.events:
			n.deliver(event)
		}
	}
}

func (n *webhookNotifier) deliver(event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️  Failed to encode %s event: %v\n", event.Type, err)
		return
	}

	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️  Failed to deliver %s event: %v\n", event.Type, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("⚠️  Webhook responded %d for %s event\n", resp.StatusCode, event.Type)
	}
}

type noopNotifier struct{}

func (n *noopNotifier) Emit(Event) {}
func (n *noopNotifier) Stop()      {}
