package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"library-service/internal/usecase/loan"
	"library-service/pkg/logger"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch, exchange: "library.events", log: zaptest.NewLogger(t)}
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-42")

	err := p.Publish(ctx, loan.Event{Type: loan.EventBorrowed, LoanID: "l-1", BookID: "b-1", Roll: "R1", OccurredAt: at})

	require.NoError(t, err)
	require.Len(t, ch.sent, 1)
	got := ch.sent[0]
	assert.Equal(t, "library.events", got.exchange)
	assert.Equal(t, "loan.borrowed", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "req-42", got.msg.CorrelationId)

	var decoded loan.Event
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, "l-1", decoded.LoanID)
	assert.True(t, decoded.OccurredAt.Equal(at))
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel/connection is not open")}
	p := &Publisher{ch: ch, exchange: "library.events", log: zaptest.NewLogger(t)}

	err := p.Publish(context.Background(), loan.Event{Type: loan.EventReturned, LoanID: "l-1"})

	assert.ErrorContains(t, err, "failed to publish loan.returned")
}

func TestPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch, log: zaptest.NewLogger(t)}

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
