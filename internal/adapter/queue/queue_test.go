package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/plastinin/fileconverter/internal/adapter/metrics"
	"github.com/plastinin/fileconverter/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (e *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.tasks = append(e.tasks, task)
	e.opts = append(e.opts, opts)
	return &asynq.TaskInfo{}, nil
}

func (e *fakeEnqueuer) Close() error { return nil }

type fakeRemover struct {
	removed []domain.AssetRef
	err     error
}

func (r *fakeRemover) Remove(ctx context.Context, ref domain.AssetRef) error {
	r.removed = append(r.removed, ref)
	return r.err
}

func TestScheduleDeletion(t *testing.T) {
	enq := &fakeEnqueuer{}
	p := &CleanupProducer{client: enq, delay: 0, maxRetry: 5}

	err := p.ScheduleDeletion(context.Background(), []domain.AssetRef{
		{ID: "merge/a_1", ResourceType: "image"},
		{ID: "merge/b_2", ResourceType: "image"},
	})
	require.NoError(t, err)

	require.Len(t, enq.tasks, 2)
	assert.Equal(t, TypeAssetDelete, enq.tasks[0].Type())

	var payload AssetDeletePayload
	require.NoError(t, json.Unmarshal(enq.tasks[1].Payload(), &payload))
	assert.Equal(t, "merge/b_2", payload.AssetID)
	assert.Equal(t, "image", payload.ResourceType)
	assert.Len(t, enq.opts[0], 3)
}

func TestScheduleDeletion_EnqueueError(t *testing.T) {
	p := &CleanupProducer{client: &fakeEnqueuer{err: errors.New("redis down")}}

	err := p.ScheduleDeletion(context.Background(), []domain.AssetRef{{ID: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func newTestConsumer(remover AssetRemover) *CleanupConsumer {
	return &CleanupConsumer{
		remover: remover,
		metrics: metrics.MustNewMetrics(prometheus.NewRegistry()),
		logger:  zap.NewNop(),
	}
}

func TestHandleAssetDelete(t *testing.T) {
	remover := &fakeRemover{}
	c := newTestConsumer(remover)

	task, err := newAssetDeleteTask(domain.AssetRef{ID: "pdfs/doc_1", ResourceType: "image"})
	require.NoError(t, err)

	require.NoError(t, c.handleAssetDelete(context.Background(), task))
	require.Len(t, remover.removed, 1)
	assert.Equal(t, "pdfs/doc_1", remover.removed[0].ID)
}

func TestHandleAssetDelete_RetriesOnRemoveError(t *testing.T) {
	c := newTestConsumer(&fakeRemover{err: errors.New("timeout")})

	task, err := newAssetDeleteTask(domain.AssetRef{ID: "a"})
	require.NoError(t, err)

	err = c.handleAssetDelete(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleAssetDelete_BadPayloadSkipsRetry(t *testing.T) {
	remover := &fakeRemover{}
	c := newTestConsumer(remover)

	err := c.handleAssetDelete(context.Background(), asynq.NewTask(TypeAssetDelete, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	err = c.handleAssetDelete(context.Background(), asynq.NewTask(TypeAssetDelete, []byte(`{}`)))
	require.ErrorIs(t, err, asynq.SkipRetry)

	assert.Empty(t, remover.removed)
}
