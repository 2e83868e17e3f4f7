package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/diwise/home-hub/internal/pkg/infrastructure/database/hubdb"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/eventbus"
	"github.com/diwise/home-hub/pkg/types"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("home-hub/statestore")

var ErrStateNotFound = fmt.Errorf("entity state not found")

const (
	DefaultFlushInterval = 250 * time.Millisecond
	DefaultBatchSize     = 500

	maxQueueLength = 10000
)

//go:generate moq -rm -out statestore_mock.go . StateStore
type StateStore interface {
	WriteEntityState(ctx context.Context, entityID string, state map[string]any) (types.EntityState, error)
	GetEntityState(ctx context.Context, entityID string) (types.EntityState, error)

	AppendTelemetry(ctx context.Context, entityID, homeID, field string, value any, unit string, ts time.Time)
	GetEntityTelemetry(ctx context.Context, entityID string, params map[string][]string) ([]types.TelemetryPoint, error)
	GetHomeTelemetry(ctx context.Context, homeID string, params map[string][]string) ([]types.TelemetryPoint, error)

	StartTelemetryBatching(ctx context.Context)
	StopTelemetryBatching(ctx context.Context)
}

type store struct {
	storage hubdb.Store
	bus     eventbus.EventBus

	flushInterval time.Duration
	batchSize     int

	mu    sync.Mutex
	queue []types.TelemetryPoint

	done    chan bool
	stopped chan bool
}

func New(storage hubdb.Store, bus eventbus.EventBus) StateStore {
	return NewWithConfig(storage, bus, DefaultFlushInterval, DefaultBatchSize)
}

func NewWithConfig(storage hubdb.Store, bus eventbus.EventBus, flushInterval time.Duration, batchSize int) StateStore {
	return &store{
		storage:       storage,
		bus:           bus,
		flushInterval: flushInterval,
		batchSize:     batchSize,
		queue:         make([]types.TelemetryPoint, 0, batchSize),
		done:          make(chan bool),
		stopped:       make(chan bool),
	}
}

// WriteEntityState stores the full snapshot for an entity under last write
// wins and returns what was written. Publishing the change on the bus is the
// caller's business, not ours.
func (s *store) WriteEntityState(ctx context.Context, entityID string, state map[string]any) (types.EntityState, error) {
	var err error
	ctx, span := tracer.Start(ctx, "write-entity-state")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	es := types.EntityState{
		EntityID:  entityID,
		State:     state,
		UpdatedAt: time.Now().UTC(),
	}

	err = s.storage.UpsertEntityState(ctx, es)
	if err != nil {
		return types.EntityState{}, err
	}

	return es, nil
}

func (s *store) GetEntityState(ctx context.Context, entityID string) (types.EntityState, error) {
	state, err := s.storage.GetEntityState(ctx, entityID)
	if err != nil {
		if errors.Is(err, hubdb.ErrNoRows) {
			return types.EntityState{}, ErrStateNotFound
		}
		return types.EntityState{}, err
	}

	return state, nil
}

// AppendTelemetry enqueues a sample for the batcher and publishes a telemetry
// event right away. Values that have no numeric form are kept as null samples.
// The queue is bounded, so under sustained overload the oldest samples go
// first.
func (s *store) AppendTelemetry(ctx context.Context, entityID, homeID, field string, value any, unit string, ts time.Time) {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	point := types.TelemetryPoint{
		EntityID: entityID,
		HomeID:   homeID,
		Field:    field,
		Value:    numericValue(value),
		Unit:     unit,
		Ts:       ts,
	}

	s.mu.Lock()
	if len(s.queue) >= maxQueueLength {
		s.queue = s.queue[1:]
	}
	s.queue = append(s.queue, point)
	s.mu.Unlock()

	s.bus.Publish(eventbus.TopicTelemetry, map[string]any{
		"entityId": entityID,
		"homeId":   homeID,
		"field":    field,
		"value":    value,
		"unit":     unit,
		"ts":       ts.Format(time.RFC3339Nano),
	})
}

func (s *store) GetEntityTelemetry(ctx context.Context, entityID string, params map[string][]string) ([]types.TelemetryPoint, error) {
	conditions := append([]hubdb.ConditionFunc{hubdb.WithEntityID(entityID)}, telemetryConditions(params)...)
	return s.storage.GetTelemetry(ctx, conditions...)
}

func (s *store) GetHomeTelemetry(ctx context.Context, homeID string, params map[string][]string) ([]types.TelemetryPoint, error) {
	conditions := append([]hubdb.ConditionFunc{hubdb.WithHomeID(homeID)}, telemetryConditions(params)...)
	return s.storage.GetTelemetry(ctx, conditions...)
}

func (s *store) StartTelemetryBatching(ctx context.Context) {
	go s.backgroundWorker(ctx)
}

// StopTelemetryBatching stops the batcher and blocks until queued samples
// have been flushed.
func (s *store) StopTelemetryBatching(ctx context.Context) {
	s.done <- true
	<-s.stopped
}

func (s *store) backgroundWorker(ctx context.Context) {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			for s.flush(ctx) > 0 {
			}
			s.stopped <- true
			return
		case <-ticker.C:
			s.flush(ctx)
		}
	}
}

// flush drains up to one batch from the queue into a single bulk insert and
// returns the number of samples taken off the queue. A failed insert is
// logged and the batch dropped.
func (s *store) flush(ctx context.Context) int {
	s.mu.Lock()
	n := len(s.queue)
	if n == 0 {
		s.mu.Unlock()
		return 0
	}
	if n > s.batchSize {
		n = s.batchSize
	}
	batch := make([]types.TelemetryPoint, n)
	copy(batch, s.queue[:n])
	s.queue = s.queue[n:]
	s.mu.Unlock()

	err := s.storage.InsertTelemetry(ctx, batch)
	if err != nil {
		log := logging.GetFromContext(ctx)
		log.Error("failed to flush telemetry batch", "count", len(batch), "err", err.Error())
	}

	return n
}

func telemetryConditions(params map[string][]string) []hubdb.ConditionFunc {
	conditions := make([]hubdb.ConditionFunc, 0)

	for k, v := range params {
		switch strings.ToLower(k) {
		case "field":
			conditions = append(conditions, hubdb.WithField(v[0]))
		case "since":
			if ts, err := time.Parse(time.RFC3339, v[0]); err == nil {
				conditions = append(conditions, hubdb.WithSince(ts))
			}
		case "limit":
			limit, _ := strconv.Atoi(v[0])
			conditions = append(conditions, hubdb.WithLimit(limit))
		}
	}

	return conditions
}

func numericValue(value any) *float64 {
	var f float64

	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case bool:
		if v {
			f = 1
		}
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}

	return &f
}
