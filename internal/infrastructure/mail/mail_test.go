package mail

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenancy/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []Message
	failures int32
	calls    atomic.Int32
	block    chan struct{}
}

func (f *fakeSender) Send(ctx context.Context, msg Message) error {
	n := f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if n <= f.failures {
		return errors.New("temporary failure")
	}
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	return nil
}

func (f *fakeSender) Name() string { return "fake" }

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func testMessage() Message {
	return Message{To: "tenant@example.com", Subject: "New bill", Text: "hello"}
}

func TestDispatcher_DeliversQueuedMessages(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, DispatcherConfig{QueueSize: 4}, zap.NewNop())
	d.Start()

	assert.True(t, d.Enqueue(testMessage()))
	assert.True(t, d.Enqueue(testMessage()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))
	assert.Equal(t, 2, sender.sentCount())
	assert.False(t, d.Enqueue(testMessage()), "closed dispatcher rejects messages")
}

func TestDispatcher_RetriesAtMostMaxRetries(t *testing.T) {
	sender := &fakeSender{failures: 2}
	d := NewDispatcher(sender, DispatcherConfig{MaxRetries: 3, RetryBackoff: time.Millisecond}, zap.NewNop())
	d.Start()
	require.True(t, d.Enqueue(testMessage()))
	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, int32(3), sender.calls.Load())
	assert.Equal(t, 1, sender.sentCount())

	failing := &fakeSender{failures: 100}
	d = NewDispatcher(failing, DispatcherConfig{MaxRetries: 3, RetryBackoff: time.Millisecond}, zap.NewNop())
	d.Start()
	require.True(t, d.Enqueue(testMessage()))
	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, int32(3), failing.calls.Load())
	assert.Equal(t, 0, failing.sentCount())
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	sender := &fakeSender{block: make(chan struct{})}
	d := NewDispatcher(sender, DispatcherConfig{QueueSize: 1}, zap.NewNop())

	// not started: the single slot fills and the next message is dropped
	assert.True(t, d.Enqueue(testMessage()))

	done := make(chan bool)
	go func() { done <- d.Enqueue(testMessage()) }()
	select {
	case accepted := <-done:
		assert.False(t, accepted)
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(sender.block)
	d.Start()
	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, 1, sender.sentCount())
}

func TestDispatcher_RejectsInvalidMessages(t *testing.T) {
	d := NewDispatcher(&fakeSender{}, DispatcherConfig{}, nil)
	assert.False(t, d.Enqueue(Message{Subject: "no recipient"}))
	assert.Equal(t, 0, d.Pending())
	require.NoError(t, d.Stop(context.Background()))
}

func TestSendGridSender_Send(t *testing.T) {
	var body map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSendGridSender("sg-key", "no-reply@tenancy.local", "Tenancy", srv.URL)
	err := s.Send(context.Background(), Message{
		To:       "tenant@example.com",
		ToName:   "Alice",
		Subject:  "Rent due",
		Text:     "Your rent is due",
		Category: "bill",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer sg-key", auth)
	assert.Equal(t, "Rent due", body["subject"])
	from := body["from"].(map[string]any)
	assert.Equal(t, "no-reply@tenancy.local", from["email"])
}

func TestSendGridSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewSendGridSender("bad", "a@b.co", "A", srv.URL)
	err := s.Send(context.Background(), testMessage())
	assert.ErrorContains(t, err, "401")
	assert.ErrorIs(t, s.Send(context.Background(), Message{}), ErrInvalidMessage)
}

func TestNewSender(t *testing.T) {
	s, err := NewSender(config.MailConfig{Provider: "log"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "log", s.Name())
	require.NoError(t, s.Send(context.Background(), testMessage()))

	_, err = NewSender(config.MailConfig{Provider: "sendgrid"}, zap.NewNop())
	assert.Error(t, err)

	s, err = NewSender(config.MailConfig{Provider: "sendgrid", SendGridAPIKey: "k"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "sendgrid", s.Name())

	_, err = NewSender(config.MailConfig{Provider: "pigeon"}, zap.NewNop())
	assert.Error(t, err)
}
