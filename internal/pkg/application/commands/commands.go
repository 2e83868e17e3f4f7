package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/diwise/home-hub/internal/pkg/application/drivers"
	"github.com/diwise/home-hub/internal/pkg/application/registry"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/eventbus"
	"github.com/diwise/home-hub/pkg/types"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("home-hub/commands")

var ErrRateLimited = fmt.Errorf("rate limit exceeded")
var ErrInvalidCommand = fmt.Errorf("invalid command")

type Config struct {
	RateLimitWindow time.Duration
	RateLimitMax    int
	CoalesceWindow  time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	Coalesceable    map[string]bool
}

func DefaultConfig() Config {
	return Config{
		RateLimitWindow: 1000 * time.Millisecond,
		RateLimitMax:    10,
		CoalesceWindow:  100 * time.Millisecond,
		MaxRetries:      3,
		RetryBackoff:    100 * time.Millisecond,
		MaxRetryBackoff: 1000 * time.Millisecond,
		Coalesceable: map[string]bool{
			"brightness": true,
			"color_temp": true,
			"hue":        true,
			"saturation": true,
		},
	}
}

//go:generate moq -rm -out commandprocessor_mock.go . CommandProcessor
type CommandProcessor interface {
	ProcessCommand(ctx context.Context, req types.CommandRequest) (types.CommandResult, error)
	Start(ctx context.Context)
	Stop(ctx context.Context)
	Clear()
}

type router struct {
	registry registry.DeviceRegistry
	drivers  *drivers.Registry
	bus      eventbus.EventBus
	cfg      Config

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)

	mu        sync.Mutex
	inFlight  map[string]*pending
	rateLimit map[string]*rateWindow
	coalesce  map[string]*coalesced

	executing sync.WaitGroup

	done    chan bool
	stopped chan bool
}

type rateWindow struct {
	start time.Time
	count int
}

type coalesced struct {
	req     types.CommandRequest
	p       *pending
	started time.Time
}

func New(reg registry.DeviceRegistry, drv *drivers.Registry, bus eventbus.EventBus, cfg Config) CommandProcessor {
	return &router{
		registry:  reg,
		drivers:   drv,
		bus:       bus,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		sleep:     sleepWithContext,
		inFlight:  map[string]*pending{},
		rateLimit: map[string]*rateWindow{},
		coalesce:  map[string]*coalesced{},
		done:      make(chan bool),
		stopped:   make(chan bool),
	}
}

// Start runs the coalescer that drains queued rapid-update commands at the
// configured cadence.
func (r *router) Start(ctx context.Context) {
	go r.backgroundWorker(ctx)
}

// Stop shuts the coalescer down after dispatching whatever is still queued,
// then waits for in-flight executions to finish so no command event is
// published after shutdown has moved on to tearing down the bus.
func (r *router) Stop(ctx context.Context) {
	r.done <- true
	<-r.stopped
	r.executing.Wait()
}

// ProcessCommand routes one command to its driver and blocks until the
// outcome is known. Rapid-update capabilities are coalesced per entity, so a
// burst of slider updates reaches the driver as a single command and the
// superseded callers simply get told their work is done.
func (r *router) ProcessCommand(ctx context.Context, req types.CommandRequest) (types.CommandResult, error) {
	var err error
	ctx, span := tracer.Start(ctx, "process-command")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	started := r.now()

	if req.EntityID == "" || req.Capability == "" {
		err = ErrInvalidCommand
		return types.CommandResult{}, err
	}

	if r.cfg.Coalesceable[req.Capability] {
		p := r.enqueueCoalesced(req, started)
		return p.wait(ctx)
	}

	result, err := r.submit(ctx, req, started).wait(ctx)
	return result, err
}

func (r *router) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.inFlight = map[string]*pending{}
	r.rateLimit = map[string]*rateWindow{}
	r.coalesce = map[string]*coalesced{}
}

// submit is the internal path: in-flight dedup, rate limit, resolution,
// then driver invocation with retry on a separate goroutine.
func (r *router) submit(ctx context.Context, req types.CommandRequest, started time.Time) *pending {
	key := req.EntityID + ":" + req.Capability

	r.mu.Lock()
	if p, ok := r.inFlight[key]; ok {
		r.mu.Unlock()
		return p
	}

	if !r.allowLocked(req.EntityID) {
		r.mu.Unlock()
		return failed(fmt.Errorf("%w for entity: %s", ErrRateLimited, req.EntityID))
	}
	r.mu.Unlock()

	entity, drv, err := r.resolve(ctx, req.EntityID)
	if err != nil {
		return failed(err)
	}

	r.mu.Lock()
	if p, ok := r.inFlight[key]; ok {
		r.mu.Unlock()
		return p
	}
	p := newPending()
	r.inFlight[key] = p
	r.executing.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.executing.Done()
		r.execute(ctx, key, req, entity, drv, p, started)
	}()

	return p
}

func (r *router) execute(ctx context.Context, key string, req types.CommandRequest, entity types.Entity, drv drivers.Driver, p *pending, started time.Time) {
	cmd := drivers.Command{
		Capability: req.Capability,
		Value:      req.Value,
		Metadata:   req.Metadata,
	}

	result := r.invokeWithRetry(ctx, drv, entity.ID, cmd)
	latency := r.now().Sub(started).Milliseconds()

	r.mu.Lock()
	delete(r.inFlight, key)
	r.mu.Unlock()

	p.complete(types.CommandResult{
		Success:   result.OK,
		Error:     result.Error,
		Data:      result.Data,
		LatencyMs: latency,
	}, nil)

	r.bus.Publish(eventbus.CommandTopic(req.EntityID), map[string]any{
		"entityId":   req.EntityID,
		"capability": req.Capability,
		"success":    result.OK,
		"latency":    latency,
	})
}

func (r *router) invokeWithRetry(ctx context.Context, drv drivers.Driver, entityID string, cmd drivers.Command) drivers.Result {
	var result drivers.Result

	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		result = drv.Invoke(ctx, entityID, cmd)
		if result.OK {
			return result
		}

		if attempt < r.cfg.MaxRetries {
			r.sleep(ctx, backoff(r.cfg.RetryBackoff, r.cfg.MaxRetryBackoff, attempt))
		}
	}

	return result
}

func (r *router) resolve(ctx context.Context, entityID string) (types.Entity, drivers.Driver, error) {
	entity, err := r.registry.GetEntity(ctx, entityID)
	if err != nil {
		return types.Entity{}, nil, err
	}

	device, err := r.registry.GetDevice(ctx, entity.DeviceID)
	if err != nil {
		return types.Entity{}, nil, err
	}

	drv, ok := r.drivers.Get(device.Protocol)
	if !ok {
		return types.Entity{}, nil, drivers.ErrProtocolNotFound
	}

	return entity, drv, nil
}

// allowLocked counts this submission against the entity's current window and
// tells whether it may proceed. Caller holds r.mu.
func (r *router) allowLocked(entityID string) bool {
	now := r.now()

	w, ok := r.rateLimit[entityID]
	if !ok || now.Sub(w.start) >= r.cfg.RateLimitWindow {
		r.rateLimit[entityID] = &rateWindow{start: now, count: 1}
		return true
	}

	w.count++
	return w.count <= r.cfg.RateLimitMax
}

func (r *router) enqueueCoalesced(req types.CommandRequest, started time.Time) *pending {
	p := newPending()

	r.mu.Lock()
	if old, ok := r.coalesce[req.EntityID]; ok {
		old.p.complete(types.CommandResult{
			Success:   true,
			LatencyMs: r.now().Sub(old.started).Milliseconds(),
		}, nil)
	}
	r.coalesce[req.EntityID] = &coalesced{req: req, p: p, started: started}
	r.mu.Unlock()

	return p
}

func (r *router) backgroundWorker(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.CoalesceWindow)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			r.drainCoalesced(ctx)
			r.stopped <- true
			return
		case <-ticker.C:
			r.drainCoalesced(ctx)
		}
	}
}

func (r *router) drainCoalesced(ctx context.Context) {
	r.mu.Lock()
	if len(r.coalesce) == 0 {
		r.mu.Unlock()
		return
	}
	batch := r.coalesce
	r.coalesce = map[string]*coalesced{}
	r.mu.Unlock()

	log := logging.GetFromContext(ctx)

	for _, c := range batch {
		r.executing.Add(1)
		go func(c *coalesced) {
			defer r.executing.Done()

			result, err := r.submit(ctx, c.req, c.started).wait(ctx)
			if err != nil {
				log.Debug("coalesced command failed", "entity_id", c.req.EntityID, "capability", c.req.Capability, "err", err.Error())
			}
			c.p.complete(result, err)
		}(c)
	}
}

type pending struct {
	done   chan struct{}
	result types.CommandResult
	err    error
}

func newPending() *pending {
	return &pending{done: make(chan struct{})}
}

func (p *pending) complete(result types.CommandResult, err error) {
	p.result = result
	p.err = err
	close(p.done)
}

func (p *pending) wait(ctx context.Context) (types.CommandResult, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return types.CommandResult{}, ctx.Err()
	}
}

func failed(err error) *pending {
	p := newPending()
	p.complete(types.CommandResult{Success: false, Error: err.Error()}, err)
	return p
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		d = max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
