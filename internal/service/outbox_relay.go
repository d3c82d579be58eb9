package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/socialnet/internal/events"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
	"github.com/d60-Lab/socialnet/pkg/logger"
)

const (
	releaseTimeout = 5 * time.Second

	// 超过租约仍处于 processing 的事件视为 relay 已崩溃，重新领取
	defaultOutboxLease = time.Minute
)

// OutboxRelay 轮询 outbox，把通知事件发布到 Kafka
type OutboxRelay struct {
	outbox       repository.OutboxRepository
	publisher    events.Publisher
	batchSize    int
	pollInterval time.Duration
	lease        time.Duration
}

func NewOutboxRelay(outbox repository.OutboxRepository, publisher events.Publisher, batchSize int, pollInterval time.Duration) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &OutboxRelay{
		outbox:       outbox,
		publisher:    publisher,
		batchSize:    batchSize,
		pollInterval: pollInterval,
		lease:        defaultOutboxLease,
	}
}

// Start 启动轮询；返回的停止函数等待当前批次结束。
func (r *OutboxRelay) Start() func(context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.loop(ctx)
	}()

	var once sync.Once
	return func(stopCtx context.Context) error {
		once.Do(cancel)
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
			return nil
		case <-stopCtx.Done():
			return stopCtx.Err()
		}
	}
}

func (r *OutboxRelay) loop(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.ProcessOnce(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("outbox relay batch failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce claims one batch and publishes it. Events that fail to publish,
// or that are still unsent when ctx ends, go back to pending.
func (r *OutboxRelay) ProcessOnce(ctx context.Context) (int, error) {
	batch, err := r.outbox.Claim(ctx, r.batchSize, r.lease)
	if err != nil {
		return 0, err
	}
	published := 0
	for i, ev := range batch {
		if err := ctx.Err(); err != nil {
			r.release(batch[i:])
			return published, err
		}
		if err := r.publisher.Publish(ctx, []byte(ev.MessageKey), ev.Payload); err != nil {
			logger.Warn("publish outbox event failed",
				zap.String("id", ev.ID), zap.String("type", ev.EventType), zap.Error(err))
			r.release(batch[i : i+1])
			continue
		}
		// 已经发出的事件即使 ctx 已取消也要落 done
		doneCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		err := r.outbox.MarkDone(doneCtx, ev.ID)
		cancel()
		if err != nil {
			r.release(batch[i:])
			return published, err
		}
		published++
	}
	return published, nil
}

// release 用独立的 context 退回 pending，ctx 可能已取消
func (r *OutboxRelay) release(rows []*model.Outbox) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	for _, ev := range rows {
		if err := r.outbox.Release(ctx, ev.ID); err != nil {
			logger.Error("release outbox event failed", zap.String("id", ev.ID), zap.Error(err))
		}
	}
}
