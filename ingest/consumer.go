// Package ingest re-imports hosted calendars from a Kafka topic.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Config captures the Kafka settings of the consumer.
type Config struct {
	Brokers     []string
	Topic       string
	GroupID     string
	PollTimeout time.Duration
}

// Importer applies a submission payload to a hosted calendar.
type Importer interface {
	ImportCalendar(ctx context.Context, id uuid.UUID, payload []byte) (bool, error)
}

// messageReader is the part of *kafka.Reader the consumer relies on.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads import messages and hands them to an Importer.
type Consumer struct {
	cfg      Config
	reader   messageReader
	importer Importer
	log      *slog.Logger
	poll     time.Duration
}

// NewConsumer builds a consumer group reader for cfg.Topic.
func NewConsumer(cfg Config, importer Importer, log *slog.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("topic must not be empty")
	}
	if strings.TrimSpace(cfg.GroupID) == "" {
		return nil, errors.New("consumer group must not be empty")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	c, err := newConsumer(cfg, reader, importer, log)
	if err != nil {
		reader.Close()
		return nil, err
	}
	return c, nil
}

func newConsumer(cfg Config, reader messageReader, importer Importer, log *slog.Logger) (*Consumer, error) {
	if log == nil {
		return nil, errors.New("logger must not be nil")
	}
	if importer == nil {
		return nil, errors.New("importer must not be nil")
	}
	poll := cfg.PollTimeout
	if poll <= 0 {
		poll = 5 * time.Second
	}
	return &Consumer{cfg: cfg, reader: reader, importer: importer, log: log, poll: poll}, nil
}

// Close shuts down the underlying reader.
func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Run consumes until ctx is cancelled or the reader is closed. Every fetched
// message is committed, including ones that fail to decode or import.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("calendar_consumer_started",
		slog.String("topic", c.cfg.Topic),
		slog.String("group", c.cfg.GroupID),
		slog.String("brokers", strings.Join(c.cfg.Brokers, ",")),
		slog.Duration("poll_timeout", c.poll),
	)
	defer c.log.Info("calendar_consumer_stopped")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fetchCtx, cancel := context.WithTimeout(ctx, c.poll)
		msg, err := c.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			switch {
			case errors.Is(err, context.DeadlineExceeded):
				continue
			case errors.Is(err, context.Canceled):
				if ctx.Err() != nil {
					return ctx.Err()
				}
				continue
			case errors.Is(err, io.EOF), errors.Is(err, io.ErrClosedPipe), errors.Is(err, kafka.ErrGroupClosed):
				return nil
			}
			c.log.Error("calendar_consumer_fetch_error", slog.Any("err", err))
			continue
		}

		c.handle(ctx, msg)

		commitCtx, commitCancel := context.WithTimeout(ctx, c.poll)
		if err := c.reader.CommitMessages(commitCtx, msg); err != nil {
			if !(errors.Is(err, context.Canceled) && ctx.Err() != nil) {
				c.log.Error("calendar_consumer_commit_error", slog.Any("err", err))
			}
		}
		commitCancel()
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	id, err := decodeMessage(msg.Value)
	if err != nil {
		c.log.Warn("calendar_import_decode_error", slog.Any("err", err), slog.Int64("offset", msg.Offset))
		return
	}

	changed, err := c.importer.ImportCalendar(ctx, id, msg.Value)
	if err != nil {
		c.log.Warn("calendar_import_failed",
			slog.String("calendar_id", id.String()),
			slog.Int64("offset", msg.Offset),
			slog.Any("err", err),
		)
		return
	}
	if !changed {
		c.log.Info("calendar_import_skipped", slog.String("calendar_id", id.String()), slog.Int64("offset", msg.Offset))
		return
	}
	c.log.Info("calendar_import_applied", slog.String("calendar_id", id.String()), slog.Int64("offset", msg.Offset))
}

// importEnvelope is the message shape. The whole message value doubles as the
// submission payload, so submissionCalendar is only checked for presence.
type importEnvelope struct {
	CalendarID         string          `json:"calendar_id"`
	SubmissionCalendar json.RawMessage `json:"submissionCalendar"`
}

func decodeMessage(raw []byte) (uuid.UUID, error) {
	var env importEnvelope
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&env); err != nil {
		return uuid.Nil, fmt.Errorf("decode import message: %w", err)
	}
	if strings.TrimSpace(env.CalendarID) == "" {
		return uuid.Nil, errors.New("calendar_id missing or empty")
	}
	id, err := uuid.Parse(strings.TrimSpace(env.CalendarID))
	if err != nil {
		return uuid.Nil, fmt.Errorf("calendar_id: %w", err)
	}
	if len(env.SubmissionCalendar) == 0 {
		return uuid.Nil, errors.New("submissionCalendar missing")
	}
	return id, nil
}
