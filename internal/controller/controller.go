package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/control_loop"
	"github.com/markusressel/alt2go/internal/outputs"
	"github.com/markusressel/alt2go/internal/persistence"
	"github.com/markusressel/alt2go/internal/sensors"
	"github.com/markusressel/alt2go/internal/ui"
	"github.com/markusressel/alt2go/internal/util"
)

// number of ticks the average duty is computed over
const dutyWindowSize = 10

type FieldController interface {
	Run(ctx context.Context) error
	// Tick reads the sensors, runs the regulator once and applies the result
	Tick() error

	GetLimits() configuration.LimitsConfig
	SetLimits(limits configuration.LimitsConfig) error
	// ResetLimits drops persisted limits and falls back to the configured ones
	ResetLimits() error
	IsEnabled() bool
	SetEnabled(enabled bool) error

	GetStatus() Status
	GetStatistics() Statistics
}

// FieldSensors are the sensors the regulator is fed with
type FieldSensors struct {
	Temperature sensors.Sensor
	Voltage     sensors.Sensor
	Current     sensors.Sensor
}

type Status struct {
	Field     string    `json:"field"`
	Regulator string    `json:"regulator"`
	Enabled   bool      `json:"enabled"`
	LastTick  time.Time `json:"lastTick"`
	LastError string    `json:"lastError,omitempty"`

	Temperature float64 `json:"temperature"`
	Voltage     float64 `json:"voltage"`
	Current     float64 `json:"current"`

	Duty        int     `json:"duty"`
	DutyPercent float64 `json:"dutyPercent"`
	DutyAvg     float64 `json:"dutyAvg"`

	Trends map[string]float64    `json:"trends,omitempty"`
	Events []control_loop.Event `json:"events"`
}

type Statistics struct {
	Ticks        int
	SensorErrors int
	EventCounts  map[control_loop.Event]int
}

type fieldController struct {
	persistence persistence.Persistence
	config      configuration.FieldConfig
	regulator   control_loop.Regulator
	sensors     FieldSensors
	output      outputs.FieldOutput
	tickRate    time.Duration

	// duty state of the regulator, only accessed by the tick goroutine
	duty       int
	dutyWindow *rolling.PointPolicy
	// set when a tick skipped the regulator, its sample history is outdated then
	regulatorStale bool

	mu      sync.RWMutex
	limits  configuration.LimitsConfig
	enabled bool
	status  Status
	stats   Statistics
}

func NewFieldController(
	persistence persistence.Persistence,
	config configuration.FieldConfig,
	regulator control_loop.Regulator,
	fieldSensors FieldSensors,
	output outputs.FieldOutput,
	tickRate time.Duration,
) FieldController {
	return &fieldController{
		persistence: persistence,
		config:      config,
		regulator:   regulator,
		sensors:     fieldSensors,
		output:      output,
		tickRate:    tickRate,
		dutyWindow:  util.CreateRollingWindow(dutyWindowSize),
		limits:      config.Limits,
		enabled:     true,
		status: Status{
			Field:     config.ID,
			Regulator: regulator.Type(),
			Enabled:   true,
		},
		stats: Statistics{
			EventCounts: map[control_loop.Event]int{},
		},
	}
}

func (c *fieldController) Run(ctx context.Context) error {
	c.loadPersistedSettings()

	if err := c.applyDuty(outputs.MinDuty); err != nil {
		return fmt.Errorf("field %s: cannot initialize output: %w", c.config.ID, err)
	}

	ui.Info("Starting %s regulator for field '%s'", c.regulator.Type(), c.config.ID)

	ticker := time.NewTicker(c.tickRate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			ui.Info("Switching off field '%s'...", c.config.ID)
			err := c.applyDuty(outputs.MinDuty)
			return errors.Join(err, c.output.Close())
		case <-ticker.C:
			if err := c.Tick(); err != nil {
				ui.Error("Error in FieldController for field %s: %v", c.config.ID, err)
			}
		}
	}
}

func (c *fieldController) loadPersistedSettings() {
	limits, err := c.persistence.LoadLimits(c.config.ID)
	if err == nil {
		ui.Info("Using limits of field '%s' from database", c.config.ID)
		c.mu.Lock()
		c.limits = limits
		c.mu.Unlock()
	}

	enabled, err := c.persistence.LoadEnabled(c.config.ID)
	if err == nil {
		c.mu.Lock()
		c.enabled = enabled
		c.mu.Unlock()
	}
}

func (c *fieldController) Tick() error {
	reading, err := c.readSensors()
	if err != nil {
		applyErr := c.applyDuty(outputs.MinDuty)
		c.regulatorStale = true
		c.updateStatus(reading, nil, err, true)
		return errors.Join(err, applyErr)
	}

	if !c.IsEnabled() {
		err = c.applyDuty(outputs.MinDuty)
		c.regulatorStale = true
		c.updateStatus(reading, nil, err, false)
		return err
	}

	if c.regulatorStale {
		ui.Debug("Field %s: resetting %s regulator after skipped ticks", c.config.ID, c.regulator.Type())
		c.regulator.Reset()
		c.regulatorStale = false
	}

	c.mu.RLock()
	limits := control_loop.Limits{
		DerateTemp:    c.limits.DerateTemp,
		TargetVoltage: c.limits.TargetVoltage,
		CurrentLimit:  c.limits.CurrentLimit,
	}
	c.mu.RUnlock()

	result := c.regulator.Cycle(reading, limits, c.duty)
	err = c.applyDuty(result.Duty)
	c.handleEvents(result)
	c.updateStatus(reading, result.Events, err, false)

	return err
}

func (c *fieldController) readSensors() (control_loop.Reading, error) {
	var reading control_loop.Reading
	var err error

	if reading.TempC, err = sensors.UpdateSensor(c.sensors.Temperature); err != nil {
		return reading, fmt.Errorf("temperature sensor %s: %w", c.sensors.Temperature.GetId(), err)
	}
	if reading.Volts, err = sensors.UpdateSensor(c.sensors.Voltage); err != nil {
		return reading, fmt.Errorf("voltage sensor %s: %w", c.sensors.Voltage.GetId(), err)
	}
	if reading.Amps, err = sensors.UpdateSensor(c.sensors.Current); err != nil {
		return reading, fmt.Errorf("current sensor %s: %w", c.sensors.Current.GetId(), err)
	}
	return reading, nil
}

func (c *fieldController) applyDuty(duty int) error {
	c.duty = util.Coerce(duty, outputs.MinDuty, outputs.MaxDuty)
	c.dutyWindow.Append(float64(c.duty))
	return c.output.SetDuty(c.duty)
}

func (c *fieldController) handleEvents(result control_loop.Result) {
	c.mu.RLock()
	previousEvents := c.status.Events
	c.mu.RUnlock()

	now := time.Now()
	for _, event := range result.Events {
		ui.Warning("Field %s: %s", c.config.ID, event)

		if event == control_loop.EventOvertempDerate && !containsEvent(previousEvents, event) {
			ui.NotifyWarn("Field "+c.config.ID, string(event))
		}

		entry := persistence.EventEntry{
			Time:  now,
			Field: c.config.ID,
			Event: string(event),
			Duty:  result.Duty,
		}
		err := c.persistence.AppendEvent(entry, configuration.CurrentConfig.MaxEventLogSize)
		if err != nil {
			ui.Warning("Unable to save event of field %s: %v", c.config.ID, err)
		}
	}
}

func (c *fieldController) updateStatus(reading control_loop.Reading, events []control_loop.Event, err error, sensorError bool) {
	var trends map[string]float64
	if reporter, ok := c.regulator.(control_loop.TrendReporter); ok {
		trends = map[string]float64{}
		for metric, value := range reporter.Trends() {
			trends[metric.String()] = value
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Ticks++
	if sensorError {
		c.stats.SensorErrors++
	}
	for _, event := range events {
		c.stats.EventCounts[event]++
	}

	c.status.Enabled = c.enabled
	c.status.LastTick = time.Now()
	c.status.LastError = ""
	if err != nil {
		c.status.LastError = err.Error()
	}
	c.status.Temperature = reading.TempC
	c.status.Voltage = reading.Volts
	c.status.Current = reading.Amps
	c.status.Duty = c.duty
	c.status.DutyPercent = util.DutyToFraction(c.duty) * 100
	c.status.DutyAvg = util.GetWindowAvg(c.dutyWindow)
	c.status.Trends = trends
	c.status.Events = events
}

func (c *fieldController) GetLimits() configuration.LimitsConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.limits
}

// SetLimits validates and persists the given limits, they are used from the next tick on
func (c *fieldController) SetLimits(limits configuration.LimitsConfig) error {
	if err := configuration.ValidateLimits(limits); err != nil {
		return err
	}
	if err := c.persistence.SaveLimits(c.config.ID, limits); err != nil {
		return err
	}

	c.mu.Lock()
	c.limits = limits
	c.mu.Unlock()

	ui.Info("Updated limits of field '%s': %+v", c.config.ID, limits)
	return nil
}

func (c *fieldController) ResetLimits() error {
	if err := c.persistence.DeleteLimits(c.config.ID); err != nil {
		return err
	}

	c.mu.Lock()
	c.limits = c.config.Limits
	c.mu.Unlock()

	ui.Info("Reset limits of field '%s' to configuration: %+v", c.config.ID, c.config.Limits)
	return nil
}

func (c *fieldController) IsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// SetEnabled switches regulation on or off. While disabled the field is driven at 0.
func (c *fieldController) SetEnabled(enabled bool) error {
	if err := c.persistence.SaveEnabled(c.config.ID, enabled); err != nil {
		return err
	}

	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()

	ui.Info("Field '%s' enabled: %v", c.config.ID, enabled)
	return nil
}

func (c *fieldController) GetStatus() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := c.status
	if c.status.Trends != nil {
		status.Trends = make(map[string]float64, len(c.status.Trends))
		for k, v := range c.status.Trends {
			status.Trends[k] = v
		}
	}
	status.Events = append([]control_loop.Event(nil), c.status.Events...)
	return status
}

func (c *fieldController) GetStatistics() Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.EventCounts = make(map[control_loop.Event]int, len(c.stats.EventCounts))
	for k, v := range c.stats.EventCounts {
		stats.EventCounts[k] = v
	}
	return stats
}

func containsEvent(events []control_loop.Event, event control_loop.Event) bool {
	for _, e := range events {
		if e == event {
			return true
		}
	}
	return false
}
