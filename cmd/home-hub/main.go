package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/diwise/home-hub/internal/pkg/application/drivers"
	"github.com/diwise/home-hub/internal/pkg/application/drivers/esphome"
	"github.com/diwise/home-hub/internal/pkg/application/drivers/hue"
	"github.com/diwise/home-hub/internal/pkg/application/events"
	"github.com/diwise/home-hub/internal/pkg/application/hub"
	"github.com/diwise/home-hub/internal/pkg/application/msgbridge"
	"github.com/diwise/home-hub/internal/pkg/application/webevents"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/database"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/database/hubdb"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/router"
	"github.com/diwise/home-hub/internal/pkg/presentation/api"
	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/samber/lo"
)

const serviceName string = "home-hub"

type flagType int
type flagMap map[flagType]string

const (
	listenAddress flagType = iota
	servicePort

	configFile
	policiesFile
	notificationsFile

	dbPath

	hubID
	homeName
	homeTimezone
	enabledDrivers

	discoveryInterval
	esphomePort
	huePollInterval
)

func defaultFlags() flagMap {
	return flagMap{
		listenAddress: "0.0.0.0",
		servicePort:   "8080",

		configFile:        "",
		policiesFile:      "",
		notificationsFile: "",

		dbPath: "/opt/diwise/data/home-hub.db",

		hubID:          "",
		homeName:       "Home",
		homeTimezone:   "UTC",
		enabledDrivers: "esphome,hue",

		// empty means "use the configuration file value, or the built-in
		// default" - setting these via env or flag overrides both
		discoveryInterval: "",
		esphomePort:       "",
		huePollInterval:   "",
	}
}

func main() {
	ctx, flags := parseExternalConfig(context.Background(), defaultFlags())

	serviceVersion := buildinfo.SourceVersion()
	ctx, logger, cleanup := o11y.Init(ctx, serviceName, serviceVersion, "json")
	defer cleanup()

	var fileCfg appConfig

	if flags[configFile] != "" {
		f, err := os.Open(flags[configFile])
		exitIf(err, logger, "unable to open configuration file")

		fileCfg, err = loadAppConfig(f)
		f.Close()
		exitIf(err, logger, "unable to parse configuration file")
	}

	var policies io.Reader

	if flags[policiesFile] != "" {
		p, err := os.Open(flags[policiesFile])
		exitIf(err, logger, "unable to open opa policy file")
		defer p.Close()

		policies = p
	}

	var notificationsCfg *events.Config

	if flags[notificationsFile] != "" {
		n, err := os.Open(flags[notificationsFile])
		exitIf(err, logger, "unable to open notifications configuration file")

		notificationsCfg, err = events.LoadConfiguration(n)
		n.Close()
		exitIf(err, logger, "unable to parse notifications configuration")
	}

	storage, err := newStorage(ctx, flags, fileCfg)
	exitIf(err, logger, "could not create or connect to database")

	svc := hub.New(ctx, newHubConfig(flags, fileCfg, serviceVersion), storage, newDriverFactories(flags, fileCfg))

	err = svc.Initialize(ctx)
	exitIf(err, logger, "failed to initialize hub")

	web := webevents.New()
	web.Start(svc.Bus())

	notifier, err := events.New(notificationsCfg)
	exitIf(err, logger, "failed to create event sender")
	notifier.Start(svc.Bus())

	var bridge msgbridge.MsgBridge

	if os.Getenv("RABBITMQ_HOST") != "" {
		messenger, err := messaging.Initialize(ctx, messaging.LoadConfiguration(ctx, serviceName, logger))
		exitIf(err, logger, "failed to init messenger")

		messenger.Start()
		defer messenger.Close()

		bridge = msgbridge.New(svc.Bus(), messenger)
		bridge.Start()
	}

	err = svc.Start(ctx)
	exitIf(err, logger, "failed to start hub")

	r, err := api.RegisterHandlers(ctx, router.New(serviceName), policies, svc, web)
	exitIf(err, logger, "failed to register handlers")

	apiPort := flags[servicePort]
	server := &http.Server{Addr: flags[listenAddress] + ":" + apiPort, Handler: r}

	errChan := make(chan error, 1)

	go func() {
		logger.Info("starting to listen for incoming connections", slog.String("port", apiPort))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logger.Error("server failure", "err", err.Error())
	case s := <-sigChan:
		logger.Info("received shutdown signal", slog.String("signal", s.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "err", err.Error())
	}

	if bridge != nil {
		bridge.Stop()
	}

	notifier.Shutdown()
	web.Shutdown()

	if err := svc.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop hub", "err", err.Error())
	}
}

func newDriverFactories(flags flagMap, file appConfig) map[string]drivers.Factory {
	factories := map[string]drivers.Factory{
		"esphome": esphome.Factory(newESPHomeConfig(flags, file)),
		"hue":     hue.Factory(newHueConfig(flags, file)),
	}

	enabled := strings.Split(flags[enabledDrivers], ",")
	for i := range enabled {
		enabled[i] = strings.TrimSpace(enabled[i])
	}

	return lo.PickByKeys(factories, enabled)
}

func newStorage(ctx context.Context, flags flagMap, file appConfig) (hubdb.Store, error) {
	if os.Getenv("POSTGRES_HOST") != "" {
		return hubdb.New(ctx, database.NewPostgreSQLConnector(ctx, database.LoadConfigFromEnv(ctx)))
	}

	return hubdb.New(ctx, database.NewSQLiteConnector(ctx, databasePath(flags, file)))
}

func parseExternalConfig(ctx context.Context, flags flagMap) (context.Context, flagMap) {
	// Allow environment variables to override certain defaults
	envOrDef := env.GetVariableOrDefault

	flags[listenAddress] = envOrDef(ctx, "LISTEN_ADDRESS", flags[listenAddress])
	flags[servicePort] = envOrDef(ctx, "SERVICE_PORT", flags[servicePort])

	flags[configFile] = envOrDef(ctx, "CONFIG_FILE", flags[configFile])
	flags[policiesFile] = envOrDef(ctx, "POLICIES_FILE", flags[policiesFile])
	flags[notificationsFile] = envOrDef(ctx, "NOTIFICATIONS_FILE", flags[notificationsFile])

	flags[dbPath] = envOrDef(ctx, "DB_PATH", flags[dbPath])

	flags[hubID] = envOrDef(ctx, "HUB_ID", flags[hubID])
	flags[homeName] = envOrDef(ctx, "HOME_NAME", flags[homeName])
	flags[homeTimezone] = envOrDef(ctx, "HOME_TIMEZONE", flags[homeTimezone])
	flags[enabledDrivers] = envOrDef(ctx, "ENABLED_DRIVERS", flags[enabledDrivers])

	flags[discoveryInterval] = envOrDef(ctx, "DISCOVERY_INTERVAL", flags[discoveryInterval])
	flags[esphomePort] = envOrDef(ctx, "ESPHOME_PORT", flags[esphomePort])
	flags[huePollInterval] = envOrDef(ctx, "HUE_POLL_INTERVAL", flags[huePollInterval])

	apply := func(f flagType) func(string) error {
		return func(value string) error {
			flags[f] = value
			return nil
		}
	}

	// Allow command line arguments to override defaults and environment variables
	flag.Func("config", "a hub configuration file", apply(configFile))
	flag.Func("policies", "an authorization policy file", apply(policiesFile))
	flag.Func("notifications", "a webhook notification configuration file", apply(notificationsFile))
	flag.Func("db", "path to the hub database file", apply(dbPath))
	flag.Func("drivers", "comma separated list of enabled drivers", apply(enabledDrivers))
	flag.Parse()

	return ctx, flags
}

func exitIf(err error, logger *slog.Logger, msg string, args ...any) {
	if err != nil {
		logger.With(args...).Error(msg, "err", err.Error())
		time.Sleep(2 * time.Second)
		os.Exit(1)
	}
}
