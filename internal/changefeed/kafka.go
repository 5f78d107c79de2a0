package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.uber.org/zap"
)

type KafkaFeed struct {
	logger       *zap.SugaredLogger
	KafkaClient  *kgo.Client
	topic        string
	consuming    bool
	consumerChan chan Event
	producerChan chan []byte
	wg           sync.WaitGroup
}

// NewKafkaFeed joins consumerGroup on topic. Every site node should use its
// own group so each one sees every change. An empty group gives a
// publish-only feed.
func NewKafkaFeed(logger *zap.SugaredLogger, seeds []string, topic, consumerGroup string) (*KafkaFeed, error) {
	tracing := kotel.NewKotel(kotel.WithTracer(kotel.NewTracer()))

	opts := []kgo.Opt{
		kgo.SeedBrokers(seeds...),
		kgo.DefaultProduceTopic(topic),
		kgo.WithHooks(tracing.Hooks()...),
	}
	if consumerGroup != "" {
		opts = append(opts,
			kgo.ConsumerGroup(consumerGroup),
			kgo.ConsumeTopics(topic),
			kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
			kgo.DisableAutoCommit(),
		)
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &KafkaFeed{
		logger:       logger,
		KafkaClient:  client,
		topic:        topic,
		consuming:    consumerGroup != "",
		consumerChan: make(chan Event, ChannelBufferLimit),
		producerChan: make(chan []byte, ChannelBufferLimit),
	}, nil
}

func (q *KafkaFeed) Events() <-chan Event {
	return q.consumerChan
}

func (q *KafkaFeed) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	select {
	case q.producerChan <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *KafkaFeed) Start(ctx context.Context) {
	if q.consuming {
		q.wg.Add(1)
		go q.startConsumer(ctx)
	} else {
		close(q.consumerChan)
	}

	q.wg.Add(1)
	go q.startProducer(ctx)
}

func (q *KafkaFeed) startConsumer(ctx context.Context) {
	defer q.wg.Done()
	defer close(q.consumerChan)

	for ctx.Err() == nil {
		fetches := q.getFetches(ctx)
		if fetches.IsClientClosed() {
			return
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			if ctx.Err() == nil {
				q.logger.Warnw("Kafka fetch error", "topic", topic, "partition", partition, "err", err)
			}
		})

		var recordsToCommit []*kgo.Record

		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()
			if record == nil {
				continue
			}

			var ev Event
			if err := json.Unmarshal(record.Value, &ev); err != nil {
				q.logger.Warnw("Skipping malformed change event", "offset", record.Offset, "err", err)
				recordsToCommit = append(recordsToCommit, record)
				continue
			}

			select {
			case q.consumerChan <- ev:
			case <-time.After(deliverTimeout):
				q.logger.Warnw("Dropping change event due to slow consumer", "key", ev.Key)
			case <-ctx.Done():
				return
			}

			recordsToCommit = append(recordsToCommit, record)
		}

		if len(recordsToCommit) > 0 {
			q.commitRecords(recordsToCommit...)
		}
	}
}

func (q *KafkaFeed) getFetches(ctx context.Context) kgo.Fetches {
	ctx, cancel := context.WithTimeout(ctx, SingleRequestTimeout)
	defer cancel()

	return q.KafkaClient.PollFetches(ctx)
}

func (q *KafkaFeed) commitRecords(records ...*kgo.Record) {
	commitCtx, commitCancel := context.WithTimeout(context.Background(), SingleRequestTimeout)
	defer commitCancel()

	if err := q.KafkaClient.CommitRecords(commitCtx, records...); err != nil {
		q.logger.Warnw("Failed to commit change records in kafka", "count", len(records), "err", err)
	}
}

func (q *KafkaFeed) startProducer(ctx context.Context) {
	defer q.wg.Done()

	items := make([][]byte, 0, ChannelBufferLimit)
	flushTicker := time.NewTicker(flushInterval)
	defer flushTicker.Stop()

	for {
		select {
		case item := <-q.producerChan:
			items = append(items, item)
			if len(items) >= ChannelBufferLimit {
				q.sendToKafka(items)
				items = make([][]byte, 0, ChannelBufferLimit)
			}
		case <-flushTicker.C:
			if len(items) > 0 {
				q.sendToKafka(items)
				items = make([][]byte, 0, ChannelBufferLimit)
			}
		case <-ctx.Done():
			for len(q.producerChan) > 0 {
				items = append(items, <-q.producerChan)
			}
			if len(items) > 0 {
				q.sendToKafka(items)
			}
			return
		}
	}
}

func (q *KafkaFeed) sendToKafka(items [][]byte) {
	records := make([]*kgo.Record, 0, len(items))
	for _, payload := range items {
		records = append(records, &kgo.Record{
			Topic: q.topic,
			Value: payload,
		})
	}

	q.produceRecords(records)
}

func (q *KafkaFeed) produceRecords(records []*kgo.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), SingleRequestTimeout)
	defer cancel()

	var wg sync.WaitGroup

	for _, record := range records {
		wg.Add(1)
		q.KafkaClient.Produce(ctx, record, func(r *kgo.Record, err error) {
			defer wg.Done()
			if err != nil {
				q.logger.Warnw("Failed to produce change record in kafka", "offset", r.Offset, "err", err)
			}
		})
	}

	wg.Wait()

	q.logger.Debugw("Produced change records", "count", len(records))
}

// Close waits for the loops started by Start to exit, then closes the client.
// The context passed to Start must already be cancelled.
func (q *KafkaFeed) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	q.KafkaClient.Close()
	return nil
}
