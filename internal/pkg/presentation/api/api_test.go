package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diwise/home-hub/internal/pkg/application/commands"
	"github.com/diwise/home-hub/internal/pkg/application/hub"
	"github.com/diwise/home-hub/internal/pkg/application/registry"
	"github.com/diwise/home-hub/internal/pkg/application/statestore"
	"github.com/diwise/home-hub/internal/pkg/application/webevents"
	"github.com/diwise/home-hub/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/matryer/is"
)

func TestThatHealthEndpointReturns204(t *testing.T) {
	is, server, _ := setupTest(t, &hub.HubMock{})

	resp, _ := testRequest(server, http.MethodGet, "/health", "", nil)

	is.Equal(resp.StatusCode, http.StatusNoContent)
}

func TestGetStatusReturnsHubStatus(t *testing.T) {
	svc := &hub.HubMock{
		GetStatusFunc: func(ctx context.Context) (types.HubStatus, error) {
			return types.HubStatus{HubID: "hub-1", Version: "0.1.0", Homes: 1, Devices: 2, Entities: 3}, nil
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, body := testRequest(server, http.MethodGet, "/api/v0/status", "", nil)

	status := struct {
		Data types.HubStatus `json:"data"`
	}{}
	is.NoErr(json.Unmarshal([]byte(body), &status))

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(status.Data.HubID, "hub-1")
	is.Equal(status.Data.Entities, int64(3))
}

func TestGetDriverHealthReturnsProtocolMap(t *testing.T) {
	svc := &hub.HubMock{
		GetDriverHealthFunc: func(ctx context.Context) map[string]bool {
			return map[string]bool{"esphome": true, "hue": false}
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, body := testRequest(server, http.MethodGet, "/api/v0/drivers/health", "", nil)

	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(strings.Contains(body, `"esphome":true`))
	is.True(strings.Contains(body, `"hue":false`))
}

func TestThatGetDevicesInUnknownHomeReturns404(t *testing.T) {
	svc := &hub.HubMock{
		RegistryFunc: func() registry.DeviceRegistry {
			return &registry.DeviceRegistryMock{
				GetHomeFunc: func(ctx context.Context, homeID string) (types.Home, error) {
					return types.Home{}, registry.ErrHomeNotFound
				},
			}
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, _ := testRequest(server, http.MethodGet, "/api/v0/homes/nosuchhome/devices", "", nil)

	is.Equal(resp.StatusCode, http.StatusNotFound)
}

func TestGetHomeDevicesReturnsCollection(t *testing.T) {
	svc := &hub.HubMock{
		RegistryFunc: func() registry.DeviceRegistry {
			return &registry.DeviceRegistryMock{
				GetHomeFunc: func(ctx context.Context, homeID string) (types.Home, error) {
					return types.Home{ID: homeID, Name: "Home"}, nil
				},
			}
		},
		GetDevicesByHomeFunc: func(ctx context.Context, homeID string) (types.Collection[types.Device], error) {
			return types.Collection[types.Device]{
				Data:       []types.Device{{ID: "esp-air-1", HomeID: homeID, Protocol: "esphome"}},
				Count:      1,
				Limit:      1000,
				TotalCount: 1,
			}, nil
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, body := testRequest(server, http.MethodGet, "/api/v0/homes/home-1/devices", "", nil)

	devices := struct {
		Meta struct {
			TotalRecords uint64 `json:"totalRecords"`
			Count        uint64 `json:"count"`
		} `json:"meta"`
		Data []types.Device `json:"data"`
	}{}
	is.NoErr(json.Unmarshal([]byte(body), &devices))

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(devices.Meta.Count, uint64(1))
	is.Equal(devices.Data[0].ID, "esp-air-1")
}

func TestThatGetUnknownDeviceReturns404(t *testing.T) {
	svc := &hub.HubMock{
		RegistryFunc: func() registry.DeviceRegistry {
			return &registry.DeviceRegistryMock{
				GetDeviceFunc: func(ctx context.Context, deviceID string) (types.Device, error) {
					return types.Device{}, registry.ErrDeviceNotFound
				},
			}
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, _ := testRequest(server, http.MethodGet, "/api/v0/devices/nosuchdevice", "", nil)

	is.Equal(resp.StatusCode, http.StatusNotFound)
}

func TestThatGetKnownDeviceReturns200(t *testing.T) {
	svc := &hub.HubMock{
		RegistryFunc: func() registry.DeviceRegistry {
			return &registry.DeviceRegistryMock{
				GetDeviceFunc: func(ctx context.Context, deviceID string) (types.Device, error) {
					return types.Device{ID: deviceID, Protocol: "esphome", Name: "Air Monitor"}, nil
				},
			}
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, body := testRequest(server, http.MethodGet, "/api/v0/devices/esp-air-1", "", nil)

	device := struct {
		Data types.Device `json:"data"`
	}{}
	is.NoErr(json.Unmarshal([]byte(body), &device))

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(device.Data.ID, "esp-air-1")
	is.Equal(device.Data.Name, "Air Monitor")
}

func TestQueryEntitiesForwardsFilters(t *testing.T) {
	svc := &hub.HubMock{
		GetEntitiesFunc: func(ctx context.Context, params map[string][]string) (types.Collection[types.Entity], error) {
			return types.Collection[types.Entity]{
				Data:       []types.Entity{{ID: "esp-air-1:co2", Kind: types.KindSensor}},
				Count:      1,
				Limit:      10,
				TotalCount: 1,
			}, nil
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, _ := testRequest(server, http.MethodGet, "/api/v0/entities?kind=sensor&limit=10", "", nil)

	is.Equal(resp.StatusCode, http.StatusOK)

	calls := svc.GetEntitiesCalls()
	is.Equal(len(calls), 1)
	is.Equal(calls[0].Params["kind"], []string{"sensor"})
	is.Equal(calls[0].Params["limit"], []string{"10"})
}

func TestGetEntityDetailsIncludesCurrentState(t *testing.T) {
	svc := &hub.HubMock{
		RegistryFunc: func() registry.DeviceRegistry {
			return &registry.DeviceRegistryMock{
				GetEntityFunc: func(ctx context.Context, entityID string) (types.Entity, error) {
					return types.Entity{ID: entityID, Kind: types.KindSensor, Name: "CO2"}, nil
				},
			}
		},
		StateStoreFunc: func() statestore.StateStore {
			return &statestore.StateStoreMock{
				GetEntityStateFunc: func(ctx context.Context, entityID string) (types.EntityState, error) {
					return types.EntityState{
						EntityID:  entityID,
						State:     map[string]any{"value": 420.0},
						UpdatedAt: time.Now().UTC(),
					}, nil
				},
			}
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, body := testRequest(server, http.MethodGet, "/api/v0/entities/esp-air-1:co2", "", nil)

	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(strings.Contains(body, `"value":420`))
	is.True(strings.Contains(body, `"stateUpdatedAt"`))
}

func TestGetEntityDetailsWithoutStateOmitsIt(t *testing.T) {
	svc := &hub.HubMock{
		RegistryFunc: func() registry.DeviceRegistry {
			return &registry.DeviceRegistryMock{
				GetEntityFunc: func(ctx context.Context, entityID string) (types.Entity, error) {
					return types.Entity{ID: entityID, Kind: types.KindLight}, nil
				},
			}
		},
		StateStoreFunc: func() statestore.StateStore {
			return &statestore.StateStoreMock{
				GetEntityStateFunc: func(ctx context.Context, entityID string) (types.EntityState, error) {
					return types.EntityState{}, statestore.ErrStateNotFound
				},
			}
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, body := testRequest(server, http.MethodGet, "/api/v0/entities/hue-1:light-1", "", nil)

	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(!strings.Contains(body, `"state"`))
}

func TestThatEntityStateReturns404WhenNeverReported(t *testing.T) {
	svc := &hub.HubMock{
		StateStoreFunc: func() statestore.StateStore {
			return &statestore.StateStoreMock{
				GetEntityStateFunc: func(ctx context.Context, entityID string) (types.EntityState, error) {
					return types.EntityState{}, statestore.ErrStateNotFound
				},
			}
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, _ := testRequest(server, http.MethodGet, "/api/v0/entities/esp-air-1:co2/state", "", nil)

	is.Equal(resp.StatusCode, http.StatusNotFound)
}

func TestGetEntityTelemetryForwardsQuery(t *testing.T) {
	value := 420.0
	svc := &hub.HubMock{
		RegistryFunc: func() registry.DeviceRegistry {
			return &registry.DeviceRegistryMock{
				GetEntityFunc: func(ctx context.Context, entityID string) (types.Entity, error) {
					return types.Entity{ID: entityID, Kind: types.KindSensor}, nil
				},
			}
		},
		GetEntityTelemetryFunc: func(ctx context.Context, entityID string, params map[string][]string) ([]types.TelemetryPoint, error) {
			return []types.TelemetryPoint{
				{EntityID: entityID, Field: "co2", Value: &value, Unit: "ppm", Ts: time.Now().UTC()},
			}, nil
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, body := testRequest(server, http.MethodGet, "/api/v0/entities/esp-air-1:co2/telemetry?field=co2&limit=5", "", nil)

	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(strings.Contains(body, `"field":"co2"`))

	calls := svc.GetEntityTelemetryCalls()
	is.Equal(len(calls), 1)
	is.Equal(calls[0].Params["field"], []string{"co2"})
	is.Equal(calls[0].Params["limit"], []string{"5"})
}

func TestThatTelemetryForUnknownEntityReturns404(t *testing.T) {
	svc := &hub.HubMock{
		RegistryFunc: func() registry.DeviceRegistry {
			return &registry.DeviceRegistryMock{
				GetEntityFunc: func(ctx context.Context, entityID string) (types.Entity, error) {
					return types.Entity{}, registry.ErrEntityNotFound
				},
			}
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, _ := testRequest(server, http.MethodGet, "/api/v0/entities/nosuchentity/telemetry", "", nil)

	is.Equal(resp.StatusCode, http.StatusNotFound)
}

func TestSendCommandReturnsRouterResult(t *testing.T) {
	svc := &hub.HubMock{
		ProcessCommandFunc: func(ctx context.Context, req types.CommandRequest) (types.CommandResult, error) {
			return types.CommandResult{Success: true, LatencyMs: 12}, nil
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, body := testRequest(server, http.MethodPost, "/api/v0/entities/hue-1:light-1/command", "",
		bytes.NewBufferString(`{"capability":"toggle"}`))

	result := struct {
		Data types.CommandResult `json:"data"`
	}{}
	is.NoErr(json.Unmarshal([]byte(body), &result))

	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(result.Data.Success)

	calls := svc.ProcessCommandCalls()
	is.Equal(len(calls), 1)
	is.Equal(calls[0].Req.EntityID, "hue-1:light-1")
	is.Equal(calls[0].Req.Capability, "toggle")
}

func TestThatFailedCommandStillReturns200(t *testing.T) {
	svc := &hub.HubMock{
		ProcessCommandFunc: func(ctx context.Context, req types.CommandRequest) (types.CommandResult, error) {
			return types.CommandResult{Success: false, Error: "device unreachable", LatencyMs: 3000}, nil
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, body := testRequest(server, http.MethodPost, "/api/v0/entities/hue-1:light-1/command", "",
		bytes.NewBufferString(`{"capability":"brightness","value":128}`))

	result := struct {
		Data types.CommandResult `json:"data"`
	}{}
	is.NoErr(json.Unmarshal([]byte(body), &result))

	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(!result.Data.Success)
	is.Equal(result.Data.Error, "device unreachable")
}

func TestThatRateLimitedCommandReturns429(t *testing.T) {
	svc := &hub.HubMock{
		ProcessCommandFunc: func(ctx context.Context, req types.CommandRequest) (types.CommandResult, error) {
			return types.CommandResult{}, fmt.Errorf("%w for entity: %s", commands.ErrRateLimited, req.EntityID)
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, body := testRequest(server, http.MethodPost, "/api/v0/entities/hue-1:light-1/command", "",
		bytes.NewBufferString(`{"capability":"toggle"}`))

	is.Equal(resp.StatusCode, http.StatusTooManyRequests)
	is.True(strings.Contains(body, "rate limit exceeded"))
}

func TestThatCommandForUnknownEntityReturns404(t *testing.T) {
	svc := &hub.HubMock{
		ProcessCommandFunc: func(ctx context.Context, req types.CommandRequest) (types.CommandResult, error) {
			return types.CommandResult{}, registry.ErrEntityNotFound
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, _ := testRequest(server, http.MethodPost, "/api/v0/entities/nosuchentity/command", "",
		bytes.NewBufferString(`{"capability":"toggle"}`))

	is.Equal(resp.StatusCode, http.StatusNotFound)
}

func TestThatInvalidCommandReturns400(t *testing.T) {
	svc := &hub.HubMock{
		ProcessCommandFunc: func(ctx context.Context, req types.CommandRequest) (types.CommandResult, error) {
			return types.CommandResult{}, commands.ErrInvalidCommand
		},
	}
	is, server, _ := setupTest(t, svc)

	resp, _ := testRequest(server, http.MethodPost, "/api/v0/entities/hue-1:light-1/command", "",
		bytes.NewBufferString(`{}`))

	is.Equal(resp.StatusCode, http.StatusBadRequest)
}

func TestThatMalformedCommandBodyReturns400(t *testing.T) {
	svc := &hub.HubMock{}
	is, server, _ := setupTest(t, svc)

	resp, body := testRequest(server, http.MethodPost, "/api/v0/entities/hue-1:light-1/command", "",
		bytes.NewBufferString(`{"capability":`))

	is.Equal(resp.StatusCode, http.StatusBadRequest)
	is.True(strings.Contains(body, "invalid request body"))
	is.Equal(len(svc.ProcessCommandCalls()), 0)
}

func TestApiRequiresTokenWhenPoliciesAreConfigured(t *testing.T) {
	svc := &hub.HubMock{
		GetStatusFunc: func(ctx context.Context) (types.HubStatus, error) {
			return types.HubStatus{HubID: "hub-1"}, nil
		},
	}
	is, server := setupTestWithAuth(t, svc)

	resp, _ := testRequest(server, http.MethodGet, "/api/v0/status", "", nil)
	is.Equal(resp.StatusCode, http.StatusUnauthorized)

	resp, _ = testRequest(server, http.MethodGet, "/api/v0/status", createJWT([]string{"read"}), nil)
	is.Equal(resp.StatusCode, http.StatusOK)
}

func TestThatCommandsRequireControlScope(t *testing.T) {
	svc := &hub.HubMock{
		ProcessCommandFunc: func(ctx context.Context, req types.CommandRequest) (types.CommandResult, error) {
			return types.CommandResult{Success: true}, nil
		},
	}
	is, server := setupTestWithAuth(t, svc)

	body := `{"capability":"toggle"}`

	resp, _ := testRequest(server, http.MethodPost, "/api/v0/entities/hue-1:light-1/command",
		createJWT([]string{"read"}), bytes.NewBufferString(body))
	is.Equal(resp.StatusCode, http.StatusUnauthorized)

	resp, _ = testRequest(server, http.MethodPost, "/api/v0/entities/hue-1:light-1/command",
		createJWT([]string{"read", "control"}), bytes.NewBufferString(body))
	is.Equal(resp.StatusCode, http.StatusOK)
}

func TestEventsStreamHandshake(t *testing.T) {
	is, server, we := setupTest(t, &hub.HubMock{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// the client registers asynchronously, so keep publishing until the
	// stream delivers
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				we.Publish("ping", map[string]any{"ok": true})
			}
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v0/events", nil)
	is.NoErr(err)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err)
	defer resp.Body.Close()

	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"))

	eventSeen := false
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "event:") {
			eventSeen = true
			break
		}
	}
	is.True(eventSeen)
}

func setupTest(t *testing.T, svc hub.Hub) (*is.I, *httptest.Server, webevents.WebEvents) {
	is := is.New(t)

	we := webevents.New()
	t.Cleanup(we.Shutdown)

	router, err := RegisterHandlers(context.Background(), chi.NewRouter(), nil, svc, we)
	is.NoErr(err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return is, server, we
}

func setupTestWithAuth(t *testing.T, svc hub.Hub) (*is.I, *httptest.Server) {
	is := is.New(t)

	we := webevents.New()
	t.Cleanup(we.Shutdown)

	router, err := RegisterHandlers(context.Background(), chi.NewRouter(), bytes.NewBufferString(opaModule), svc, we)
	is.NoErr(err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return is, server
}

func testRequest(ts *httptest.Server, method, path string, token string, body io.Reader) (*http.Response, string) {
	req, _ := http.NewRequest(method, ts.URL+path, body)

	if len(token) > 0 {
		req.Header.Add("Authorization", "Bearer "+token)
	}

	resp, _ := http.DefaultClient.Do(req)
	respBody, _ := io.ReadAll(resp.Body)
	defer resp.Body.Close()

	return resp, string(respBody)
}

func createJWT(scopes []string) string {
	tokenAuth := jwtauth.New("HS256", []byte("secret"), nil)
	_, tokenString, _ := tokenAuth.Encode(map[string]any{"user_id": 123, "azp": "home-hub-frontend", "homes": []string{"home"}, "scopes": scopes})
	return tokenString
}

const opaModule string = `
#
# Use https://play.openpolicyagent.org for easier editing/validation of this policy file
#

package example.authz

default allow := false

allow = response {
    is_valid_token

    token.payload.azp == "home-hub-frontend"

    granted := {scope | scope := token.payload.scopes[_]}
    required := {scope | scope := input.scopes[_]} - {"any"}
    count(required - granted) == 0

    response := {
        "access": {home: token.payload.scopes | home := token.payload.homes[_]}
    }
}

is_valid_token {
    1 == 1
}

token := {"payload": payload} {
    [_, payload, _] := io.jwt.decode(input.token)
}
`
