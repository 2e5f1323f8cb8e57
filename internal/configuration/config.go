package configuration

import (
	"os"
	"time"

	"github.com/markusressel/alt2go/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Configuration struct {
	DbPath string `json:"dbPath"`

	// Time interval between two control ticks of the field regulator.
	TickRate time.Duration `json:"tickRate"`

	// Maximum number of regulator events kept in the database.
	MaxEventLogSize int `json:"maxEventLogSize"`

	// Polling rate of sensors that are not driving the field.
	SensorPollingRate       time.Duration `json:"sensorPollingRate"`
	SensorRollingWindowSize int           `json:"sensorRollingWindowSize"`

	Field     FieldConfig     `json:"field"`
	Regulator RegulatorConfig `json:"regulator"`
	Sensors   []SensorConfig  `json:"sensors"`

	Api        ApiConfig        `json:"api"`
	Statistics StatisticsConfig `json:"statistics"`
	Profiling  ProfilingConfig  `json:"profiling"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("alt2go")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/alt2go/")
	}

	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("dbPath", "/etc/alt2go/alt2go.db")
	viper.SetDefault("tickRate", 1*time.Second)
	viper.SetDefault("maxEventLogSize", 500)
	viper.SetDefault("sensorPollingRate", 1*time.Second)
	viper.SetDefault("sensorRollingWindowSize", 10)

	viper.SetDefault("field.id", "alternator")
	viper.SetDefault("field.limits.targetVoltage", DefaultLimits.TargetVoltage)
	viper.SetDefault("field.limits.floatVoltage", DefaultLimits.FloatVoltage)
	viper.SetDefault("field.limits.currentLimit", DefaultLimits.CurrentLimit)
	viper.SetDefault("field.limits.derateTemp", DefaultLimits.DerateTemp)

	viper.SetDefault("regulator.type", RegulatorTypeThreshold)

	viper.SetDefault("sensors", []SensorConfig{})

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 9001)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)

	viper.SetDefault("profiling.enabled", false)
	viper.SetDefault("profiling.host", "localhost")
	viper.SetDefault("profiling.port", 6060)
}

// DetectAndReadConfigFile reads the config file and returns its path
func DetectAndReadConfigFile() string {
	if err := viper.ReadInConfig(); err != nil {
		// config file is required, so we fail here
		ui.FatalWithoutStacktrace("Error reading config file, %s", err)
	}
	// this is only populated _after_ ReadInConfig()
	return viper.ConfigFileUsed()
}

func LoadConfig() {
	err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(decodeHook()))
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		StringToFloatHookFunc(),
		DefaultTrueBoolHookFunc(),
	)
}
