package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"video_moderation_service/internal/moderation/domain"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func delivery(t *testing.T, ack *MockAcknowledger, body interface{}, redelivered bool) amqp.Delivery {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case []byte:
		raw = b
	default:
		var err error
		raw, err = json.Marshal(b)
		require.NoError(t, err)
	}
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 7, Body: raw, Redelivered: redelivered}
}

func TestConsumerHandle(t *testing.T) {
	ctx := context.Background()
	job := testJob()

	cases := []struct {
		name        string
		body        interface{}
		redelivered bool
		result      *domain.JobResult
		err         error
		expect      func(ack *MockAcknowledger)
	}{
		{
			name:   "success acks",
			body:   job,
			result: &domain.JobResult{Approved: true, Status: "approved"},
			expect: func(ack *MockAcknowledger) { ack.On("Ack", uint64(7), false).Return(nil).Once() },
		},
		{
			name:   "pending outcome acks",
			body:   job,
			result: &domain.JobResult{Status: "pending"},
			expect: func(ack *MockAcknowledger) { ack.On("Ack", uint64(7), false).Return(nil).Once() },
		},
		{
			name:   "in flight acks",
			body:   job,
			err:    domain.ErrJobInFlight,
			expect: func(ack *MockAcknowledger) { ack.On("Ack", uint64(7), false).Return(nil).Once() },
		},
		{
			name:   "retries exhausted requeues once",
			body:   job,
			err:    fmt.Errorf("dispose: %w", errors.New("timeout")),
			expect: func(ack *MockAcknowledger) { ack.On("Nack", uint64(7), false, true).Return(nil).Once() },
		},
		{
			name:        "redelivered failure is dropped",
			body:        job,
			redelivered: true,
			err:         errors.New("timeout"),
			expect:      func(ack *MockAcknowledger) { ack.On("Nack", uint64(7), false, false).Return(nil).Once() },
		},
		{
			name:   "invalid job rejected",
			body:   domain.ModerationJob{VideoID: "x"},
			err:    fmt.Errorf("%w: video_url", domain.ErrInvalidJob),
			expect: func(ack *MockAcknowledger) { ack.On("Reject", uint64(7), false).Return(nil).Once() },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ack := new(MockAcknowledger)
			runner := new(MockRunner)
			tc.expect(ack)
			var want domain.ModerationJob
			b, _ := json.Marshal(tc.body)
			_ = json.Unmarshal(b, &want)
			runner.On("RunWithRetry", ctx, want).Return(tc.result, tc.err).Once()

			c := NewConsumer(nil, runner, domain.QueueName, 1)
			c.handle(ctx, delivery(t, ack, tc.body, tc.redelivered))

			ack.AssertExpectations(t)
			runner.AssertExpectations(t)
		})
	}

	t.Run("malformed body rejected without running", func(t *testing.T) {
		ack := new(MockAcknowledger)
		runner := new(MockRunner)
		ack.On("Reject", uint64(7), false).Return(nil).Once()

		NewConsumer(nil, runner, domain.QueueName, 1).handle(ctx, delivery(t, ack, []byte("{not json"), false))
		ack.AssertExpectations(t)
		runner.AssertNotCalled(t, "RunWithRetry", mock.Anything, mock.Anything)
	})
}

// fakeSource 是 DeliverySource 的假實作
type fakeSource struct {
	ch  chan amqp.Delivery
	err error
}

func (f *fakeSource) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return f.ch, f.err
}

func TestStartConsumer(t *testing.T) {
	t.Run("drains until channel closes", func(t *testing.T) {
		src := &fakeSource{ch: make(chan amqp.Delivery, 3)}
		ack := new(MockAcknowledger)
		runner := new(MockRunner)
		ack.On("Ack", uint64(7), false).Return(nil).Times(3)
		runner.On("RunWithRetry", mock.Anything, mock.Anything).Return(&domain.JobResult{Status: "approved"}, nil).Times(3)

		for i := 0; i < 3; i++ {
			src.ch <- delivery(t, ack, testJob(), false)
		}
		close(src.ch)

		require.NoError(t, NewConsumer(src, runner, domain.QueueName, 2).StartConsumer(context.Background()))
		ack.AssertExpectations(t)
	})

	t.Run("stops on context cancel", func(t *testing.T) {
		src := &fakeSource{ch: make(chan amqp.Delivery)}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- NewConsumer(src, new(MockRunner), domain.QueueName, 1).StartConsumer(ctx) }()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("consumer did not stop")
		}
	})

	t.Run("consume error", func(t *testing.T) {
		src := &fakeSource{err: errors.New("channel closed")}
		assert.Error(t, NewConsumer(src, new(MockRunner), domain.QueueName, 1).StartConsumer(context.Background()))
	})
}
