// Devices Configuration - charging station configuration service
//
// This is the main entry point. It serves the device configuration API,
// publishes configuration events to MQTT and WebSocket subscribers, and
// records device boot notifications.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/devices-configuration/internal/api"
	"github.com/nerrad567/devices-configuration/internal/audit"
	"github.com/nerrad567/devices-configuration/internal/device"
	"github.com/nerrad567/devices-configuration/internal/events"
	"github.com/nerrad567/devices-configuration/internal/infrastructure/config"
	"github.com/nerrad567/devices-configuration/internal/infrastructure/database"
	"github.com/nerrad567/devices-configuration/internal/infrastructure/influxdb"
	"github.com/nerrad567/devices-configuration/internal/infrastructure/logging"
	"github.com/nerrad567/devices-configuration/internal/infrastructure/metrics"
	"github.com/nerrad567/devices-configuration/internal/infrastructure/mqtt"
	"github.com/nerrad567/devices-configuration/internal/protocols"
	"github.com/nerrad567/devices-configuration/internal/protocols/iot16"
	"github.com/nerrad567/devices-configuration/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"
	configPathEnv     = "DEVICESCFG_CONFIG"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the command line flags.
type options struct {
	configPath string
	memory     bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fset := flag.NewFlagSet("devicesconfig", flag.ContinueOnError)
	fset.StringVar(&opts.configPath, "config", "", "path to config.yaml (default $"+configPathEnv+" or "+defaultConfigPath+")")
	fset.BoolVar(&opts.memory, "memory", false, "keep all state in memory; nothing survives a restart")
	if err := fset.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// run wires every component and blocks until ctx is cancelled.
// Components are closed in reverse order of creation.
func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	log := logging.Default()
	log.Info("starting devices configuration service",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, configPath, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)

	dbPath := cfg.Database.Path
	if opts.memory {
		dbPath = database.MemoryPath
	}
	db, err := database.Open(database.Config{
		Path:        dbPath,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", dbPath)

	checks := map[string]api.HealthChecker{"database": db}
	m := metrics.New()

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
		mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
		checks["mqtt"] = mqttClient
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled, events are streamed over WebSocket only")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		checks["influxdb"] = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	var repo device.Repository = device.NewSQLiteRepository(db.DB)
	if opts.memory {
		repo = device.NewMemoryRepository()
	}

	history := audit.NewSQLiteRepository(db.DB)
	hub := api.NewHub(cfg.WebSocket, log)
	sinks := []events.Sink{audit.NewSink(history), events.NewBroadcastSink(hub)}
	if mqttClient != nil {
		sinks = append(sinks, events.NewMQTTPublisher(mqttClient))
	}

	svc := device.NewService(repo, events.NewMultiPublisher(sinks...))
	svc.SetLogger(log.With("component", "device"))
	svc.SetObserver(m)
	if influxClient != nil {
		svc.SetRecorder(influxdb.NewVisibilityRecorder(influxClient))
	}

	if mqttClient != nil {
		if err := subscribeBootNotifications(mqttClient, db, m, log); err != nil {
			return err
		}
	}

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Service:  svc,
		Metrics:  m,
		History:  history,
		Checks:   checks,
		Hub:      hub,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	return nil
}

// loadConfig reads the config file named by the flag, the environment or
// the default path. Only a missing default file falls back to built-in
// defaults; an explicitly named file must exist.
func loadConfig(flagPath string) (*config.Config, string, error) {
	path, explicit := getConfigPath(flagPath)

	cfg, err := config.Load(path)
	if err == nil {
		return cfg, path, nil
	}
	if explicit || !errors.Is(err, fs.ErrNotExist) {
		return nil, path, err
	}

	cfg, err = config.Default()
	if err != nil {
		return nil, "", err
	}
	return cfg, "(built-in defaults)", nil
}

func getConfigPath(flagPath string) (path string, explicit bool) {
	if flagPath != "" {
		return flagPath, true
	}
	if path := os.Getenv(configPathEnv); path != "" {
		return path, true
	}
	return defaultConfigPath, false
}

// subscribeBootNotifications stores device info from boot payloads on
// devices/+/boot.
func subscribeBootNotifications(client *mqtt.Client, db *database.DB, m *metrics.Metrics, log *logging.Logger) error {
	handler := protocols.NewBootHandler(protocols.NewSQLiteRepository(db.DB), iot16.Decode)
	handler.SetLogger(log.With("component", "boot"))
	handler.SetObserver(m)

	topic := mqtt.Topics{}.AllDeviceBoots()
	if err := client.Subscribe(topic, client.QoS(), handler.HandleMessage); err != nil {
		return fmt.Errorf("subscribing to boot notifications: %w", err)
	}
	log.Info("subscribed to boot notifications", "topic", topic)
	return nil
}
