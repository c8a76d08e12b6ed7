package processor

import (
	"context"
	"sync"

	"auctionhouse/activity-worker-service/internal/app/activity/entity"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
)

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) Record(ctx context.Context, event *entity.AuctionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockActivityService) ListForAuction(ctx context.Context, auctionID uint, limit int) ([]entity.Activity, error) {
	args := m.Called(ctx, auctionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Activity), args.Error(1)
}

func (m *MockActivityService) Prune(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// fakeReader hands out queued messages, then blocks until the fetch context
// ends.
type fakeReader struct {
	mu        sync.Mutex
	messages  chan kafka.Message
	committed []kafka.Message
	closed    bool
}

func newFakeReader(messages ...kafka.Message) *fakeReader {
	ch := make(chan kafka.Message, len(messages))
	for _, m := range messages {
		ch <- m
	}
	return &fakeReader{messages: ch}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.messages:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	offsets := make([]int64, 0, len(r.committed))
	for _, m := range r.committed {
		offsets = append(offsets, m.Offset)
	}
	return offsets
}

func (r *fakeReader) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
