package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aescanero/dago-hbs-renderer/internal/config"
	"github.com/aescanero/dago-hbs-renderer/internal/handlebars"
	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

// opTimeout bounds publishes and acks, which must finish even while stopping
const opTimeout = 5 * time.Second

// Streams is the subset of the Redis client the worker uses
type Streams interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Renderer renders a template against a context
type Renderer interface {
	Render(text string, ctx value.Value, opt handlebars.RenderOptions) (string, error)
}

// Worker represents the render worker
type Worker struct {
	id            string
	config        *config.Config
	streams       Streams
	renderer      Renderer
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	done          chan struct{}
	stopOnce      sync.Once
	streamKey     string
	consumerGroup string
	resultStream  string
	now           func() time.Time

	rendered atomic.Int64
	failed   atomic.Int64
}

// NewWorker creates a new worker
func NewWorker(cfg *config.Config, streams Streams, renderer Renderer, logger *zap.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		streams:       streams,
		renderer:      renderer,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
		now:           time.Now,
	}
}

// Start creates the consumer group and starts the processing loop
func (w *Worker) Start() error {
	w.logger.Info("starting render worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	go w.processWork()

	w.logger.Info("render worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop cancels the loop and waits for the message in flight, up to timeout
func (w *Worker) Stop(timeout time.Duration) error {
	w.logger.Info("stopping render worker", zap.String("worker_id", w.id))
	w.stopOnce.Do(w.cancel)

	select {
	case <-w.done:
	case <-time.After(timeout):
		return fmt.Errorf("worker %s did not stop within %s", w.id, timeout)
	}

	w.logger.Info("render worker stopped",
		zap.String("worker_id", w.id),
		zap.Int64("rendered", w.rendered.Load()),
		zap.Int64("failed", w.failed.Load()),
	)
	return nil
}

// Stats returns the number of rendered and failed jobs
func (w *Worker) Stats() (rendered, failed int64) {
	return w.rendered.Load(), w.failed.Load()
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup() error {
	err := w.streams.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processWork reads render requests until the worker is stopped
func (w *Worker) processWork() {
	defer close(w.done)
	w.logger.Info("starting work processing loop")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("work processing loop stopped")
			return
		default:
		}

		streams, err := w.streams.XReadGroup(w.ctx, &redis.XReadGroupArgs{
			Group:    w.consumerGroup,
			Consumer: w.id,
			Streams:  []string{w.streamKey, ">"},
			Count:    1,
			Block:    w.config.BlockTime,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || w.ctx.Err() != nil {
				continue
			}
			w.logger.Error("failed to read from stream", zap.Error(err))
			select {
			case <-w.ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				w.handleMessage(message)
			}
		}
	}
}

// handleMessage renders one request and acknowledges it whatever the outcome
func (w *Worker) handleMessage(message redis.XMessage) {
	messageID := message.ID
	w.logger.Debug("processing render request", zap.String("message_id", messageID))

	req, err := parseRenderRequest(message.Values)
	if err != nil {
		w.failed.Add(1)
		w.logger.Error("failed to parse render request",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		if req != nil {
			w.publishError(req, err)
		}
		w.acknowledgeMessage(messageID)
		return
	}

	result, err := w.safeProcess(req)
	if err != nil {
		w.failed.Add(1)
		w.logger.Error("failed to render",
			zap.String("message_id", messageID),
			zap.String("request_id", req.ID),
			zap.Error(err),
		)
		w.publishError(req, err)
	} else if err := w.publishResult(result); err != nil {
		w.failed.Add(1)
		w.logger.Error("failed to publish render result",
			zap.String("request_id", req.ID),
			zap.Error(err),
		)
	} else {
		w.rendered.Add(1)
	}

	w.acknowledgeMessage(messageID)
}

// RenderResult is published on the result stream
type RenderResult struct {
	ID         string    `json:"id"`
	WorkerID   string    `json:"worker_id"`
	Output     string    `json:"output"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// RenderFailure is published on the error stream
type RenderFailure struct {
	ID        string    `json:"id"`
	WorkerID  string    `json:"worker_id"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// Process renders a request
func (w *Worker) Process(req *RenderRequest) (*RenderResult, error) {
	start := w.now()

	out, err := w.renderer.Render(req.Template, req.Context, handlebars.RenderOptions{
		NoHTMLEscape: w.config.NoHTMLEscape || req.NoEscape,
		Partials:     req.Partials,
	})
	if err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}

	end := w.now()
	return &RenderResult{
		ID:         req.ID,
		WorkerID:   w.id,
		Output:     out,
		DurationMS: end.Sub(start).Milliseconds(),
		Timestamp:  end.UTC(),
	}, nil
}

// safeProcess is Process with panics turned into errors
func (w *Worker) safeProcess(req *RenderRequest) (result *RenderResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("render panicked",
				zap.String("request_id", req.ID),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			result, err = nil, fmt.Errorf("%w: %v", ErrRenderPanic, r)
		}
	}()
	return w.Process(req)
}

// publishResult publishes a rendered output
func (w *Worker) publishResult(result *RenderResult) error {
	if err := w.publish(w.resultStream, result); err != nil {
		return err
	}

	w.logger.Info("published render result",
		zap.String("request_id", result.ID),
		zap.Int("bytes", len(result.Output)),
		zap.Int64("duration_ms", result.DurationMS),
	)
	return nil
}

// publishError publishes an error event
func (w *Worker) publishError(req *RenderRequest, err error) {
	failure := &RenderFailure{
		ID:        req.ID,
		WorkerID:  w.id,
		Error:     err.Error(),
		Timestamp: w.now().UTC(),
	}
	if publishErr := w.publish(w.config.ErrorStream(), failure); publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

func (w *Worker) publish(stream string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err = w.streams.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", stream, err)
	}
	return nil
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(messageID string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := w.streams.XAck(ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
