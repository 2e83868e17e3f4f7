package hue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("home-hub/drivers/hue")

const requestTimeout = 5 * time.Second

// The bridge reports this error type when a user is created without the
// physical link button having been pressed first.
const errTypeLinkButtonNotPressed = 101

type apiError struct {
	Type        int    `json:"type"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// lightState doubles as the state object of a light and the action object of
// a group. Pointer fields are omitted by bridges for lights that do not
// support the corresponding mode.
type lightState struct {
	On        bool   `json:"on"`
	Bri       *int   `json:"bri,omitempty"`
	Hue       *int   `json:"hue,omitempty"`
	Sat       *int   `json:"sat,omitempty"`
	Ct        *int   `json:"ct,omitempty"`
	ColorMode string `json:"colormode,omitempty"`
	Reachable bool   `json:"reachable"`
}

type light struct {
	State            lightState `json:"state"`
	Name             string     `json:"name"`
	Type             string     `json:"type"`
	ModelID          string     `json:"modelid"`
	ManufacturerName string     `json:"manufacturername"`
	ProductName      string     `json:"productname"`
	UniqueID         string     `json:"uniqueid"`
	SWVersion        string     `json:"swversion"`
}

type group struct {
	Name   string     `json:"name"`
	Lights []string   `json:"lights"`
	Type   string     `json:"type"`
	Class  string     `json:"class,omitempty"`
	Action lightState `json:"action"`
}

type scene struct {
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
	Type  string `json:"type,omitempty"`
}

type bridgeConfig struct {
	Name       string `json:"name"`
	BridgeID   string `json:"bridgeid"`
	ModelID    string `json:"modelid"`
	SWVersion  string `json:"swversion"`
	APIVersion string `json:"apiversion"`
	Mac        string `json:"mac"`
}

// bridgeClient speaks the v1 REST API of a single Hue bridge. The v1 API is
// served over plain http on port 80 no matter which port the bridge
// advertises over mDNS.
type bridgeClient struct {
	httpClient *http.Client
	baseURL    string
	username   string
}

func newBridgeClient(address string) *bridgeClient {
	return &bridgeClient{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   requestTimeout,
		},
		baseURL: "http://" + address,
	}
}

// createUser mints an API username. The bridge refuses with error type 101
// until its link button has been pressed, which maps to
// ErrLinkButtonNotPressed so callers can retry on the next discovery pass.
func (c *bridgeClient) createUser(ctx context.Context, deviceType string) (string, error) {
	var err error
	ctx, span := tracer.Start(ctx, "create-bridge-user")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	body, err := c.send(ctx, http.MethodPost, "/api", map[string]string{"devicetype": deviceType})
	if err != nil {
		return "", err
	}

	var results []struct {
		Success *struct {
			Username string `json:"username"`
		} `json:"success"`
		Error *apiError `json:"error"`
	}

	if err = json.Unmarshal(body, &results); err != nil {
		err = fmt.Errorf("failed to unmarshal response body: %w", err)
		return "", err
	}

	if len(results) == 0 {
		err = fmt.Errorf("empty response from bridge")
		return "", err
	}

	if apiErr := results[0].Error; apiErr != nil {
		if apiErr.Type == errTypeLinkButtonNotPressed {
			err = ErrLinkButtonNotPressed
		} else {
			err = fmt.Errorf("bridge error %d: %s", apiErr.Type, apiErr.Description)
		}
		return "", err
	}

	if results[0].Success == nil {
		err = fmt.Errorf("bridge response carried neither success nor error")
		return "", err
	}

	return results[0].Success.Username, nil
}

// config reads the unauthenticated bridge identity.
func (c *bridgeClient) config(ctx context.Context) (bridgeConfig, error) {
	var cfg bridgeConfig
	err := c.get(ctx, "/api/config", &cfg)
	return cfg, err
}

func (c *bridgeClient) lights(ctx context.Context) (map[string]light, error) {
	lights := map[string]light{}
	err := c.get(ctx, "/api/"+c.username+"/lights", &lights)
	return lights, err
}

func (c *bridgeClient) groups(ctx context.Context) (map[string]group, error) {
	groups := map[string]group{}
	err := c.get(ctx, "/api/"+c.username+"/groups", &groups)
	return groups, err
}

func (c *bridgeClient) scenes(ctx context.Context) (map[string]scene, error) {
	scenes := map[string]scene{}
	err := c.get(ctx, "/api/"+c.username+"/scenes", &scenes)
	return scenes, err
}

func (c *bridgeClient) setLightState(ctx context.Context, lightID string, state map[string]any) error {
	var err error
	ctx, span := tracer.Start(ctx, "set-light-state")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	body, err := c.send(ctx, http.MethodPut, "/api/"+c.username+"/lights/"+lightID+"/state", state)
	if err != nil {
		return err
	}

	err = bridgeResultError(body)
	return err
}

func (c *bridgeClient) setGroupAction(ctx context.Context, groupID string, action map[string]any) error {
	var err error
	ctx, span := tracer.Start(ctx, "set-group-action")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	body, err := c.send(ctx, http.MethodPut, "/api/"+c.username+"/groups/"+groupID+"/action", action)
	if err != nil {
		return err
	}

	err = bridgeResultError(body)
	return err
}

func (c *bridgeClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// authorization failures come back as an error array with http 200
	if err := bridgeResultError(body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	return nil
}

func (c *bridgeClient) send(ctx context.Context, method, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return respBody, nil
}

// bridgeResultError surfaces the first error entry of a bridge response
// array. The v1 API reports failures with http 200 and one error object per
// failed attribute, so callers cannot rely on the status code alone.
func bridgeResultError(body []byte) error {
	var results []struct {
		Error *apiError `json:"error"`
	}

	// single-object responses, such as light listings, carry no error entries
	if err := json.Unmarshal(body, &results); err != nil {
		return nil
	}

	for _, result := range results {
		if result.Error != nil {
			return fmt.Errorf("bridge error %d: %s", result.Error.Type, result.Error.Description)
		}
	}

	return nil
}
