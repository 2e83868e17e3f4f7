package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"log/slog"

	"github.com/diwise/home-hub/internal/pkg/application/commands"
	"github.com/diwise/home-hub/internal/pkg/application/hub"
	"github.com/diwise/home-hub/internal/pkg/application/registry"
	"github.com/diwise/home-hub/internal/pkg/application/statestore"
	"github.com/diwise/home-hub/internal/pkg/application/webevents"
	"github.com/diwise/home-hub/internal/pkg/presentation/api/auth"
	"github.com/diwise/home-hub/pkg/types"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("home-hub/api")

// RegisterHandlers mounts the hub API on the given router. Everything under
// /api/v0 requires a token when an authorization policy is provided, with
// commands behind the control scope. A nil policy reader leaves the API open,
// which is the expected mode for a hub on a trusted home network.
func RegisterHandlers(ctx context.Context, router *chi.Mux, policies io.Reader, svc hub.Hub, web webevents.WebEvents) (*chi.Mux, error) {

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	log := logging.GetFromContext(ctx)

	noAuth := func(next http.Handler) http.Handler { return next }

	requireRead := noAuth
	requireControl := noAuth

	if policies != nil {
		authenticator, err := auth.NewAuthenticator(ctx, policies)
		if err != nil {
			return nil, fmt.Errorf("failed to create api authenticator: %w", err)
		}

		requireRead = authenticator.RequireAccess(auth.ScopeRead)
		requireControl = authenticator.RequireAccess(auth.ScopeControl)
	}

	router.Route("/api/v0", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireRead)

			r.Get("/status", getStatusHandler(log, svc))
			r.Get("/drivers/health", getDriverHealthHandler(log, svc))

			r.Get("/homes/{homeID}/devices", queryHomeDevicesHandler(log, svc))
			r.Get("/devices/{deviceID}", getDeviceDetailsHandler(log, svc))

			r.Get("/entities", queryEntitiesHandler(log, svc))
			r.Get("/entities/{entityID}", getEntityDetailsHandler(log, svc))
			r.Get("/entities/{entityID}/state", getEntityStateHandler(log, svc))
			r.Get("/entities/{entityID}/telemetry", getEntityTelemetryHandler(log, svc))

			r.Get("/events", web.Server().ServeHTTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireControl)

			r.Post("/entities/{entityID}/command", sendCommandHandler(log, svc))
		})
	})

	return router, nil
}

func getStatusHandler(log *slog.Logger, svc hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "get-status")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		status, err := svc.GetStatus(ctx)
		if err != nil {
			requestLogger.Error("unable to fetch hub status", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		b, err := json.Marshal(NewApiResponse(status))
		if err != nil {
			requestLogger.Error("unable to marshal hub status to json", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

func getDriverHealthHandler(log *slog.Logger, svc hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "get-driver-health")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		b, err := json.Marshal(NewApiResponse(svc.GetDriverHealth(ctx)))
		if err != nil {
			requestLogger.Error("unable to marshal driver health to json", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

func queryHomeDevicesHandler(log *slog.Logger, svc hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "query-home-devices")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		homeID := chi.URLParam(r, "homeID")
		if homeID != "" {
			requestLogger = requestLogger.With(slog.String("home_id", homeID))
		}

		_, err = svc.Registry().GetHome(ctx, homeID)
		if errors.Is(err, registry.ErrHomeNotFound) {
			requestLogger.Debug("home not found")
			writeError(w, http.StatusNotFound, "home not found")
			return
		}
		if err != nil {
			requestLogger.Error("could not fetch data", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		devices, err := svc.GetDevicesByHome(ctx, homeID)
		if err != nil {
			requestLogger.Error("unable to fetch devices", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		b, err := json.Marshal(NewCollectionResponse(r.URL.RequestURI(), devices))
		if err != nil {
			requestLogger.Error("unable to marshal devices to json", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

func getDeviceDetailsHandler(log *slog.Logger, svc hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "get-device")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		deviceID := chi.URLParam(r, "deviceID")
		if deviceID != "" {
			requestLogger = requestLogger.With(slog.String("device_id", deviceID))
		}

		device, err := svc.Registry().GetDevice(ctx, deviceID)
		if errors.Is(err, registry.ErrDeviceNotFound) {
			requestLogger.Debug("device not found")
			writeError(w, http.StatusNotFound, "device not found")
			return
		}
		if err != nil {
			requestLogger.Error("could not fetch data", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		b, err := json.Marshal(NewApiResponse(device))
		if err != nil {
			requestLogger.Error("unable to marshal device to json", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		requestLogger.Info("returning information about device")

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

func queryEntitiesHandler(log *slog.Logger, svc hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "query-entities")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		entities, err := svc.GetEntities(ctx, r.URL.Query())
		if err != nil {
			requestLogger.Error("unable to fetch entities", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		b, err := json.Marshal(NewCollectionResponse(r.URL.RequestURI(), entities))
		if err != nil {
			requestLogger.Error("unable to marshal entities to json", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

func getEntityDetailsHandler(log *slog.Logger, svc hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "get-entity")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		entityID := chi.URLParam(r, "entityID")
		if entityID != "" {
			requestLogger = requestLogger.With(slog.String("entity_id", entityID))
		}

		entity, err := svc.Registry().GetEntity(ctx, entityID)
		if errors.Is(err, registry.ErrEntityNotFound) {
			requestLogger.Debug("entity not found")
			writeError(w, http.StatusNotFound, "entity not found")
			return
		}
		if err != nil {
			requestLogger.Error("could not fetch data", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		details := entityDetails{Entity: entity}

		state, stateErr := svc.StateStore().GetEntityState(ctx, entityID)
		if stateErr == nil {
			details.State = state.State
			details.StateUpdatedAt = &state.UpdatedAt
		} else if !errors.Is(stateErr, statestore.ErrStateNotFound) {
			err = stateErr
			requestLogger.Error("could not fetch entity state", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		b, err := json.Marshal(NewApiResponse(details))
		if err != nil {
			requestLogger.Error("unable to marshal entity to json", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

func getEntityStateHandler(log *slog.Logger, svc hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "get-entity-state")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		entityID := chi.URLParam(r, "entityID")
		if entityID != "" {
			requestLogger = requestLogger.With(slog.String("entity_id", entityID))
		}

		state, err := svc.StateStore().GetEntityState(ctx, entityID)
		if errors.Is(err, statestore.ErrStateNotFound) {
			requestLogger.Debug("no state for entity")
			writeError(w, http.StatusNotFound, "no state for entity")
			return
		}
		if err != nil {
			requestLogger.Error("could not fetch data", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		b, err := json.Marshal(NewApiResponse(state))
		if err != nil {
			requestLogger.Error("unable to marshal entity state to json", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

func getEntityTelemetryHandler(log *slog.Logger, svc hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "get-entity-telemetry")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		entityID := chi.URLParam(r, "entityID")
		if entityID != "" {
			requestLogger = requestLogger.With(slog.String("entity_id", entityID))
		}

		_, err = svc.Registry().GetEntity(ctx, entityID)
		if errors.Is(err, registry.ErrEntityNotFound) {
			requestLogger.Debug("entity not found")
			writeError(w, http.StatusNotFound, "entity not found")
			return
		}
		if err != nil {
			requestLogger.Error("could not fetch data", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		points, err := svc.GetEntityTelemetry(ctx, entityID, r.URL.Query())
		if err != nil {
			requestLogger.Error("unable to fetch telemetry", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		b, err := json.Marshal(NewApiResponse(points))
		if err != nil {
			requestLogger.Error("unable to marshal telemetry to json", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

func sendCommandHandler(log *slog.Logger, svc hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "send-command")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		entityID := chi.URLParam(r, "entityID")
		if entityID != "" {
			requestLogger = requestLogger.With(slog.String("entity_id", entityID))
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			requestLogger.Error("unable to read body", "err", err.Error())
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var cmd struct {
			Capability string         `json:"capability"`
			Value      any            `json:"value"`
			Metadata   map[string]any `json:"metadata,omitempty"`
		}

		err = json.Unmarshal(body, &cmd)
		if err != nil {
			requestLogger.Error("unable to unmarshal body", "err", err.Error())
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := svc.ProcessCommand(ctx, types.CommandRequest{
			EntityID:   entityID,
			Capability: cmd.Capability,
			Value:      cmd.Value,
			Metadata:   cmd.Metadata,
		})

		if errors.Is(err, commands.ErrInvalidCommand) {
			requestLogger.Error("invalid command", "err", err.Error())
			writeError(w, http.StatusBadRequest, "invalid command")
			return
		}
		if errors.Is(err, commands.ErrRateLimited) {
			requestLogger.Warn("rate limit exceeded")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		if errors.Is(err, registry.ErrEntityNotFound) || errors.Is(err, registry.ErrDeviceNotFound) {
			requestLogger.Debug("entity not found")
			writeError(w, http.StatusNotFound, "entity not found")
			return
		}
		if err != nil {
			requestLogger.Error("unable to process command", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		b, err := json.Marshal(NewApiResponse(result))
		if err != nil {
			requestLogger.Error("unable to marshal command result to json", "err", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

// writeError responds with a fixed short message so that internals never
// leak to api consumers.
func writeError(w http.ResponseWriter, statusCode int, msg string) {
	b, _ := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: msg})

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(b)
}
