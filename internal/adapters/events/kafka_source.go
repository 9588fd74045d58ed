package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"vtts-analysis/internal/domain"

	"github.com/segmentio/kafka-go"
)

// messageReader is the subset of *kafka.Reader the source needs.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type KafkaConfig struct {
	Brokers   []string
	Topic     string
	Partition int
}

// KafkaSource replays one topic partition holding JSON-encoded events, from
// the first retained offset up to the end offset seen when it was opened.
// Events appended later are not read, so the stream stays finite.
type KafkaSource struct {
	reader messageReader
	next   int64
	end    int64
}

func OpenKafka(ctx context.Context, cfg KafkaConfig) (*KafkaSource, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("open kafka events: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("open kafka events: topic must not be empty")
	}

	conn, err := kafka.DialLeader(ctx, "tcp", cfg.Brokers[0], cfg.Topic, cfg.Partition)
	if err != nil {
		return nil, fmt.Errorf("open kafka events: dial leader for %s/%d: %w", cfg.Topic, cfg.Partition, err)
	}
	first, err := conn.ReadFirstOffset()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open kafka events: read first offset: %w", err)
	}
	last, err := conn.ReadLastOffset()
	conn.Close()
	if err != nil {
		return nil, fmt.Errorf("open kafka events: read last offset: %w", err)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   cfg.Brokers,
		Topic:     cfg.Topic,
		Partition: cfg.Partition,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	if err := reader.SetOffset(first); err != nil {
		reader.Close()
		return nil, fmt.Errorf("open kafka events: seek to %d: %w", first, err)
	}

	return newKafkaSource(reader, first, last), nil
}

func newKafkaSource(r messageReader, first, end int64) *KafkaSource {
	return &KafkaSource{reader: r, next: first, end: end}
}

func (s *KafkaSource) ReadEvent(ctx context.Context) (domain.Event, error) {
	for s.next < s.end {
		msg, err := s.reader.ReadMessage(ctx)
		if err != nil {
			return nil, fmt.Errorf("read kafka events: offset %d: %w", s.next, err)
		}
		s.next = msg.Offset + 1

		var rec eventRecord
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			return nil, fmt.Errorf("read kafka events: offset %d: decode: %w", msg.Offset, err)
		}
		ev, err := rec.toEvent()
		if err != nil {
			return nil, fmt.Errorf("read kafka events: offset %d: %w", msg.Offset, err)
		}
		if ev != nil {
			return ev, nil
		}
	}
	return nil, io.EOF
}

func (s *KafkaSource) Close() error {
	return s.reader.Close()
}
