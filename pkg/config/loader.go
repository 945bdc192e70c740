package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config package should avoid importing any veil-crypto packages in
// order to prevent any cyclic-dependancy issues

const (
	// current working dir
	searchPath1 = "."
	// home datadir
	searchPath2 = "$HOME/.veil/"

	// name for the config file. Does not include extension.
	configFileName = "veil"
)

var (
	r *Registry
)

// Registry stores all loaded configurations according to the config order
// NB It should be cheap to be copied by value
type Registry struct {
	UsedConfigFile string

	// All configuration groups
	Engine      engineConfiguration
	Logger      loggerConfiguration
	Performance performanceConfiguration
}

// Load makes an attempt to read and unmarshal any configs from flag, env
// and veil config file.
//
// It uses the following precedence order. Each item takes precedence over the item below it:
//  - flag
//  - env
//  - config
//  - default
//
// Veil configuration file can be in form of TOML, JSON, YAML, HCL or Java
// properties config files
func Load() error {

	r = new(Registry)

	// Initialization
	if err := r.init(); err != nil {
		return err
	}

	// Validation and defaulting should be done by the consumers (packages) as
	// they will be the best at knowing what they expect

	return nil
}

// Get returns registry by value in order to avoid further modifications after
// initial configuration loading
func Get() Registry {
	return *r
}

func (r *Registry) init() error {

	defineDefaults()

	// Make an attempt to find veil.toml/veil.json/veil.yaml in any of the
	// provided paths below
	viper.SetConfigName(configFileName)

	// search paths
	viper.AddConfigPath(searchPath1)
	viper.AddConfigPath(searchPath2)

	// Initialize and parse flags
	confFile, err := loadFlags()

	if err != nil {
		return err
	}

	// confPath is overwritten by the one from command line
	if len(confFile) > 0 {
		viper.SetConfigFile(confFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		// a missing config file leaves the defaults in force
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return fmt.Errorf("Error reading config file: %s", err)
		}
	}

	defineENV()

	// Unmarshal all configurations from all conf levels to the registry struct
	if err := viper.Unmarshal(&r); err != nil {
		return fmt.Errorf("unable to decode into struct, %v", err)
	}

	r.UsedConfigFile = viper.ConfigFileUsed()

	return nil
}

func loadFlags() (string, error) {

	pflag.CommandLine.Init("Veil engine", pflag.ExitOnError)

	pflag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", "Veil engine")
		pflag.PrintDefaults()
	}

	// Define all supported flags.
	// All flags should be verified `loader_test.go/TestSupportedFlags`
	defineFlags()
	configFile := pflag.String("config", "", "Set path to the config file")

	// Bind all command line parameters to their corresponding file configs
	//
	// e.g CLI argument `--logger.level="warn"`` will overwrite the value from
	// `[logger] level = "info"`` in the loaded config file
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return "", fmt.Errorf("unable bind pflags, %v", err)
	}

	pflag.Parse()

	return *configFile, nil
}

// define a set of flags as bindings to config file settings
// The settings that are needed to be passed frequently by CLI should be added here
func defineFlags() {
	_ = pflag.StringP("logger.level", "l", "", "override logger.level settings in config file")
	_ = pflag.StringP("logger.output", "o", "veil", "specifies the log output")
	_ = pflag.StringP("engine.implementation", "i", "auto", "force the proof backend: auto, native or accelerated")
}

// defaults applied at the lowest precedence level, mirroring the ones
// the init function seeds for consumers that never call Load
func defineDefaults() {
	viper.SetDefault("engine.implementation", "auto")
	viper.SetDefault("engine.batchsize", 64)
	viper.SetDefault("engine.maxconcurrency", 4)
	viper.SetDefault("engine.inittimeoutmillis", 2000)
	viper.SetDefault("engine.slowproofmillis", 500)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("performance.samplecapacity", 1000)
	viper.SetDefault("performance.decryptbound", 1<<16)
}

// define a set of environment variables as bindings to config file settings
func defineENV() {

	// Bind config key engine.implementation to ENV var VEIL_ENGINE_IMPLEMENTATION
	if err := viper.BindEnv("engine.implementation", "VEIL_ENGINE_IMPLEMENTATION"); err != nil {
		fmt.Printf("defineENV %v", err)
	}

	if err := viper.BindEnv("logger.level", "VEIL_LOGGER_LEVEL"); err != nil {
		fmt.Printf("defineENV %v", err)
	}
}

// Mock should be used only in test packages. It could be useful when a unit
// test needs to be rerun with configs different from the default ones.
func Mock(m *Registry) {
	r = m
}

func init() {
	// By default Registry should be empty but not nil. In that way, consumers
	// (packages) can use their default values on unit testing
	r = new(Registry)
	r.Engine.Implementation = "auto"
	r.Engine.BatchSize = 64
	r.Engine.MaxConcurrency = 4
	r.Engine.InitTimeoutMillis = 2000
	r.Engine.SlowProofMillis = 500
	r.Performance.SampleCapacity = 1000
	r.Performance.DecryptBound = 1 << 16
}
