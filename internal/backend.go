package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markusressel/alt2go/internal/api"
	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/control_loop"
	"github.com/markusressel/alt2go/internal/controller"
	"github.com/markusressel/alt2go/internal/hwmon"
	"github.com/markusressel/alt2go/internal/outputs"
	"github.com/markusressel/alt2go/internal/persistence"
	"github.com/markusressel/alt2go/internal/sensors"
	"github.com/markusressel/alt2go/internal/statistics"
	"github.com/markusressel/alt2go/internal/ui"
	"github.com/markusressel/alt2go/internal/util"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Objects are the runtime objects created from the configuration
type Objects struct {
	Sensors         []sensors.Sensor
	FieldController controller.FieldController
	// monitors for sensors which are not read by the field controller
	SensorMonitors []sensors.SensorMonitor
}

func RunDaemon() {
	if os.Geteuid() != 0 {
		ui.Warning("alt2go is not running as root, access to pwm, gpio or i2c devices will probably fail")
	}

	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	if err := pers.Init(); err != nil {
		ui.Fatal("Unable to initialize database: %v", err)
	}

	objects, err := InitializeObjects(pers)
	if err != nil {
		ui.Fatal("%v", err)
	}
	defer sensors.CloseBuses()

	statistics.Register(statistics.NewSensorCollector(objects.Sensors))
	statistics.Register(statistics.NewControllerCollector([]controller.FieldController{objects.FieldController}))

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	if configuration.CurrentConfig.Profiling.Enabled {
		// === pprof
		mux := http.NewServeMux()
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

		profiling := configuration.CurrentConfig.Profiling
		addr := fmt.Sprintf("%s:%d", profiling.Host, profiling.Port)
		addHttpServer(&g, ctx, "profiling", &http.Server{Addr: addr, Handler: mux})
	}
	if configuration.CurrentConfig.Statistics.Enabled {
		// === Prometheus Exporter
		port := configuration.CurrentConfig.Statistics.Port
		if port <= 0 || port >= 65535 {
			port = 9000
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		addHttpServer(&g, ctx, "statistics", &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux})
	}
	if configuration.CurrentConfig.Api.Enabled {
		// === REST api
		apiConfig := configuration.CurrentConfig.Api
		rest := api.CreateRestService(objects.FieldController, pers, prometheus.DefaultRegisterer)
		addr := fmt.Sprintf("%s:%d", apiConfig.Host, apiConfig.Port)
		addHttpServer(&g, ctx, "api", &http.Server{Addr: addr, Handler: rest})
	}
	{
		// === sensor monitoring
		for _, monitor := range objects.SensorMonitors {
			mon := monitor
			g.Add(func() error {
				return mon.Run(ctx)
			}, func(err error) {
				if err != nil {
					ui.Warning("Error monitoring sensor: %v", err)
				}
			})
		}
	}
	{
		// === field controller
		fieldId := configuration.CurrentConfig.Field.ID
		g.Add(func() error {
			err := objects.FieldController.Run(ctx)
			ui.Info("Field controller for field %s stopped.", fieldId)
			return err
		}, func(err error) {
			if err != nil {
				ui.Warning("Something went wrong: %v", err)
			}
		})
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			select {
			case <-sig:
				ui.Info("Received SIGTERM signal, exiting...")
			case <-ctx.Done():
			}
			return nil
		}, func(err error) {
			signal.Stop(sig)
			cancel()
		})
	}

	if err := g.Run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		sensors.CloseBuses()
		os.Exit(1)
	}
	ui.Info("Done.")
}

// addHttpServer runs the given server until the context is done
func addHttpServer(g *run.Group, ctx context.Context, name string, server *http.Server) {
	g.Add(func() error {
		ui.Info("Starting %s server on %s", name, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ui.Error("Cannot start %s server (%v)", name, err)
			return err
		}
		return nil
	}, func(err error) {
		ui.Info("Stopping %s server...", name)
		timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if shutdownErr := server.Shutdown(timeoutCtx); shutdownErr != nil {
			ui.Warning("Error stopping %s server: %v", name, shutdownErr)
		}
	})
}

// InitializeObjects creates sensors, output, regulator and field controller from the current configuration
func InitializeObjects(pers persistence.Persistence) (*Objects, error) {
	config := configuration.CurrentConfig
	objects := &Objects{}

	var chips []*hwmon.HwMonChip
	for _, sensorConfig := range config.Sensors {
		if sensorConfig.HwMon != nil {
			if chips == nil {
				chips = hwmon.GetChips()
			}
			err := hwmon.UpdateSensorConfigFromHwMonChips(chips, sensorConfig.HwMon)
			if err != nil {
				return nil, fmt.Errorf("couldn't find hwmon device with platform '%s' for sensor: %s. Run 'alt2go detect' again and correct any mistake", sensorConfig.HwMon.Platform, sensorConfig.ID)
			}
		}

		sensor, err := sensors.NewSensor(sensorConfig)
		if err != nil {
			return nil, fmt.Errorf("unable to process sensor configuration %s: %w", sensorConfig.ID, err)
		}

		currentValue, err := sensor.GetValue()
		if err != nil {
			ui.Warning("Error reading sensor %s: %v", sensorConfig.ID, err)
		}
		sensor.SetMovingAvg(currentValue)

		sensors.SensorMap.Set(sensorConfig.ID, sensor)
		objects.Sensors = append(objects.Sensors, sensor)
	}

	fieldSensors := controller.FieldSensors{}
	var err error
	if fieldSensors.Temperature, err = sensors.GetSensor(config.Field.Sensors.Temperature); err != nil {
		return nil, err
	}
	if fieldSensors.Voltage, err = sensors.GetSensor(config.Field.Sensors.Voltage); err != nil {
		return nil, err
	}
	if fieldSensors.Current, err = sensors.GetSensor(config.Field.Sensors.Current); err != nil {
		return nil, err
	}

	pollingRate := config.SensorPollingRate
	if pollingRate <= 0 {
		pollingRate = config.TickRate
	}
	fieldSensorIds := config.Field.Sensors.Ids()
	for _, sensor := range objects.Sensors {
		if util.ContainsString(fieldSensorIds, sensor.GetId()) {
			continue
		}
		objects.SensorMonitors = append(objects.SensorMonitors, sensors.NewSensorMonitor(sensor, pollingRate))
	}

	regulator, err := control_loop.NewRegulator(config.Regulator, config.TickRate)
	if err != nil {
		return nil, err
	}

	output, err := outputs.NewFieldOutput(config.Field)
	if err != nil {
		return nil, fmt.Errorf("unable to open output of field %s: %w", config.Field.ID, err)
	}

	objects.FieldController = controller.NewFieldController(pers, config.Field, regulator, fieldSensors, output, config.TickRate)

	return objects, nil
}
