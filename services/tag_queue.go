package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const TopicAttachTags = "blog.tags.attach"

var (
	ErrQueueClosed     = errors.New("tag queue is closed")
	ErrQueueNotStarted = errors.New("tag queue is not started")
)

// TagQueue runs tag jobs on a background worker fed through an in-process pub/sub.
type TagQueue struct {
	pubSub   *gochannel.GoChannel
	attacher *TagAttacher
	logger   zerolog.Logger

	mu      sync.Mutex
	started bool
	closed  bool
	pending sync.WaitGroup
	done    chan struct{}
}

func NewTagQueue(attacher *TagAttacher) *TagQueue {
	logger := log.With().Str("component", "tagQueue").Logger()
	return &TagQueue{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, NewWatermillLogger(logger)),
		attacher: attacher,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start subscribes the worker. Schedule refuses jobs until Start has returned.
func (q *TagQueue) Start(ctx context.Context) error {
	messages, err := q.pubSub.Subscribe(context.WithoutCancel(ctx), TopicAttachTags)
	if err != nil {
		return err
	}

	q.mu.Lock()
	q.started = true
	q.mu.Unlock()

	go func() {
		defer close(q.done)
		for msg := range messages {
			q.handle(msg)
		}
	}()

	q.logger.Info().Msg("Tag queue started")
	return nil
}

func (q *TagQueue) handle(msg *message.Message) {
	defer q.pending.Done()
	msg.Ack()

	var job TagJob
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		q.logger.Error().Err(err).Str("messageId", msg.UUID).Msg("Dropping malformed tag job")
		return
	}

	if _, err := q.attacher.Attach(context.Background(), job); err != nil {
		q.logger.Error().Err(err).Str("blogId", job.BlogID.String()).Msg("Tag job failed")
	}
}

// Schedule publishes job and returns without waiting for it to run.
func (q *TagQueue) Schedule(ctx context.Context, job TagJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if !q.started {
		return ErrQueueNotStarted
	}

	q.pending.Add(1)
	if err := q.pubSub.Publish(TopicAttachTags, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		q.pending.Done()
		q.logger.Error().Err(err).Str("blogId", job.BlogID.String()).Msg("Failed to publish tag job")
		return err
	}
	return nil
}

// Close stops accepting jobs, waits for scheduled jobs to finish or ctx to end, then closes the
// pub/sub.
func (q *TagQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		q.pending.Wait()
		close(drained)
	}()

	var err error
	select {
	case <-drained:
	case <-ctx.Done():
		err = ctx.Err()
		q.logger.Warn().Err(err).Msg("Closing tag queue with jobs still pending")
	}

	if closeErr := q.pubSub.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	q.mu.Lock()
	started := q.started
	q.mu.Unlock()
	if started && err == nil {
		<-q.done
	}
	q.logger.Info().Msg("Tag queue closed")
	return err
}
