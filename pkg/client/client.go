package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/diwise/home-hub/pkg/types"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var tracer = otel.Tracer("home-hub-client")

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
)

// HubClient talks to the hub api from companion services. Error returns can
// be matched with errors.Is against the sentinels above.
type HubClient interface {
	GetStatus(ctx context.Context) (types.HubStatus, error)
	GetDevicesByHome(ctx context.Context, homeID string) ([]types.Device, error)
	GetDevice(ctx context.Context, deviceID string) (types.Device, error)
	QueryEntities(ctx context.Context, params url.Values) ([]types.Entity, error)
	GetEntity(ctx context.Context, entityID string) (types.Entity, error)
	GetEntityState(ctx context.Context, entityID string) (types.EntityState, error)
	GetEntityTelemetry(ctx context.Context, entityID string, params url.Values) ([]types.TelemetryPoint, error)
	SendCommand(ctx context.Context, entityID, capability string, value any) (types.CommandResult, error)
}

type hubClient struct {
	url         string
	httpClient  http.Client
	tokenSource oauth2.TokenSource
}

// New creates a HubClient for the hub at hubURL. When oauthTokenURL is non
// empty the client authenticates with client credentials and sends the
// resulting bearer token on every request.
func New(ctx context.Context, hubURL, oauthTokenURL, oauthClientID, oauthClientSecret string) (HubClient, error) {
	c := &hubClient{
		url: strings.TrimSuffix(hubURL, "/"),
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	if oauthTokenURL != "" {
		cfg := clientcredentials.Config{
			ClientID:     oauthClientID,
			ClientSecret: oauthClientSecret,
			TokenURL:     oauthTokenURL,
		}

		c.tokenSource = cfg.TokenSource(ctx)

		_, err := c.tokenSource.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to get client credentials from oauth server: %w", err)
		}
	}

	return c, nil
}

func (c *hubClient) GetStatus(ctx context.Context) (types.HubStatus, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-status")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	status := types.HubStatus{}
	err = c.get(ctx, "/api/v0/status", &status)

	return status, err
}

func (c *hubClient) GetDevicesByHome(ctx context.Context, homeID string) ([]types.Device, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-home-devices")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	devices := []types.Device{}
	err = c.get(ctx, "/api/v0/homes/"+homeID+"/devices", &devices)

	return devices, err
}

func (c *hubClient) GetDevice(ctx context.Context, deviceID string) (types.Device, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-device")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	device := types.Device{}
	err = c.get(ctx, "/api/v0/devices/"+deviceID, &device)

	return device, err
}

func (c *hubClient) QueryEntities(ctx context.Context, params url.Values) ([]types.Entity, error) {
	var err error
	ctx, span := tracer.Start(ctx, "query-entities")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	path := "/api/v0/entities"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	entities := []types.Entity{}
	err = c.get(ctx, path, &entities)

	return entities, err
}

func (c *hubClient) GetEntity(ctx context.Context, entityID string) (types.Entity, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-entity")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	entity := types.Entity{}
	err = c.get(ctx, "/api/v0/entities/"+entityID, &entity)

	return entity, err
}

func (c *hubClient) GetEntityState(ctx context.Context, entityID string) (types.EntityState, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-entity-state")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	state := types.EntityState{}
	err = c.get(ctx, "/api/v0/entities/"+entityID+"/state", &state)

	return state, err
}

func (c *hubClient) GetEntityTelemetry(ctx context.Context, entityID string, params url.Values) ([]types.TelemetryPoint, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-entity-telemetry")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	path := "/api/v0/entities/" + entityID + "/telemetry"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	points := []types.TelemetryPoint{}
	err = c.get(ctx, path, &points)

	return points, err
}

func (c *hubClient) SendCommand(ctx context.Context, entityID, capability string, value any) (types.CommandResult, error) {
	var err error
	ctx, span := tracer.Start(ctx, "send-command")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx)
	log.Debug("sending command to entity", "entity_id", entityID, "capability", capability)

	b, err := json.Marshal(struct {
		Capability string `json:"capability"`
		Value      any    `json:"value,omitempty"`
	}{Capability: capability, Value: value})
	if err != nil {
		return types.CommandResult{}, err
	}

	result := types.CommandResult{}
	err = c.post(ctx, "/api/v0/entities/"+entityID+"/command", b, &result)

	return result, err
}

func (c *hubClient) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}

	return c.do(req, result)
}

func (c *hubClient) post(ctx context.Context, path string, body []byte, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Add("Content-Type", "application/json")

	return c.do(req, result)
}

func (c *hubClient) do(req *http.Request, result any) error {
	if c.tokenSource != nil {
		token, err := c.tokenSource.Token()
		if err != nil {
			return fmt.Errorf("failed to get access token: %w", err)
		}
		token.SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return errorFromStatus(resp.StatusCode, body)
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}

	err = json.Unmarshal(body, &envelope)
	if err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	err = json.Unmarshal(envelope.Data, result)
	if err != nil {
		return fmt.Errorf("failed to unmarshal response data: %w", err)
	}

	return nil
}

func errorFromStatus(statusCode int, body []byte) error {
	reason := struct {
		Error string `json:"error"`
	}{}

	if err := json.Unmarshal(body, &reason); err != nil || reason.Error == "" {
		reason.Error = http.StatusText(statusCode)
	}

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, reason.Error)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrInvalidInput, reason.Error)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, reason.Error)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, reason.Error)
	}

	return fmt.Errorf("request failed with status code %d", statusCode)
}
