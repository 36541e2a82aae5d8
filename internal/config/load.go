package config

import (
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/settings"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix             = "WATTWATCH"
	configEnv             = envPrefix + "_CONFIG"
	configName            = "wattwatch"
	DefaultLogLevel       = LogLevelInfo
	DefaultProbeInterval  = 5
	DefaultPIDFileName    = "wattwatch.pid"
	flagConfig            = "config"
	defaultConfigFileType = "toml"
)

// Options is the process configuration: the meter defaults plus daemon settings.
type Options struct {
	Meter         Config `mapstructure:",squash"`
	LogLevel      string `mapstructure:"log_level"`
	SettingsDB    string `mapstructure:"settings_db"`
	MetricsAddr   string `mapstructure:"metrics_addr"`
	CSVOut        string `mapstructure:"csv_out"`
	ReportOut     string `mapstructure:"report_out"`
	ProbeInterval int    `mapstructure:"probe_interval"`
	PIDFile       string `mapstructure:"pid_file"`

	explicit map[string]bool
}

// Explicit reports whether the named flag was given on the command line or
// through its WATTWATCH_* environment variable.
func (o *Options) Explicit(flag string) bool {
	return o.explicit[flag]
}

// RegisterFlags defines every configuration flag on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.String(flagConfig, "", "Path to a TOML configuration file")
	fs.String("api-url", def.APIBaseURL, "Base URL of the meter API")
	fs.String("device-id", def.DeviceID, "Meter device identifier")
	fs.Int("interval", def.PollIntervalSeconds, "Seconds between polls")
	fs.Bool("dark-mode", false, "Render reports with the dark theme")
	fs.Float64("cost-per-kwh", def.CostPerKWh, "Tariff used for cost estimates")
	fs.String("log-level", string(DefaultLogLevel), "Log level (debug, info, warning, error)")
	fs.String("settings-db", settings.DefaultDBPath(), "Path to the settings database")
	fs.String("metrics-addr", "", "Listen address for Prometheus metrics (disabled when empty)")
	fs.String("csv-out", "", "Write a CSV export here on shutdown or SIGUSR1")
	fs.String("report-out", "", "Write an HTML report here on shutdown or SIGUSR1")
	fs.Int("probe-interval", DefaultProbeInterval, "Seconds between connectivity probes (0 disables)")
	fs.String("pid-file", filepath.Join(os.TempDir(), DefaultPIDFileName), "PID file path")
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("api_url", def.APIBaseURL)
	v.SetDefault("device_id", def.DeviceID)
	v.SetDefault("interval", def.PollIntervalSeconds)
	v.SetDefault("dark_mode", def.DarkMode)
	v.SetDefault("cost_per_kwh", def.CostPerKWh)
	v.SetDefault("log_level", string(DefaultLogLevel))
	v.SetDefault("settings_db", settings.DefaultDBPath())
	v.SetDefault("metrics_addr", "")
	v.SetDefault("csv_out", "")
	v.SetDefault("report_out", "")
	v.SetDefault("probe_interval", DefaultProbeInterval)
	v.SetDefault("pid_file", filepath.Join(os.TempDir(), DefaultPIDFileName))
}

// Load reads defaults, an optional config file, WATTWATCH_* environment
// variables and explicitly set flags, in increasing order of precedence.
func Load(flags *pflag.FlagSet) (*Options, error) {
	errFactory := errors.New()
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	configPath := os.Getenv(configEnv)
	if flags != nil {
		if f := flags.Lookup(flagConfig); f != nil && f.Changed {
			configPath = f.Value.String()
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if filepath.Ext(configPath) == "" {
			v.SetConfigType(defaultConfigFileType)
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(defaultConfigFileType)
		v.AddConfigPath("/etc/wattwatch")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "wattwatch"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if f.Name == flagConfig || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
		if bindErr != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, bindErr)
		}
	}

	opts := &Options{}
	if err := v.Unmarshal(opts); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.explicit = explicitFlags(flags)

	return opts, nil
}

func explicitFlags(flags *pflag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	if flags == nil {
		return set
	}

	flags.VisitAll(func(f *pflag.Flag) {
		env := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if _, ok := os.LookupEnv(env); ok || f.Changed {
			set[f.Name] = true
		}
	})

	return set
}

// Validate checks the loaded options.
func (o *Options) Validate() error {
	if !LogLevel(o.LogLevel).IsValid() && o.LogLevel != "warn" {
		return invalid(errors.ErrInvalidLogLevel, "log_level", o.LogLevel, "must be one of debug, info, warning, error")
	}
	if o.Meter.PollIntervalSeconds <= 0 {
		return invalid(errors.ErrInvalidInterval, "interval", o.Meter.PollIntervalSeconds, "must be greater than zero")
	}
	if o.ProbeInterval < 0 {
		return invalid(errors.ErrInvalidInterval, "probe_interval", o.ProbeInterval, "must not be negative")
	}
	if err := o.Meter.Validate(); err != nil {
		return errors.New().Wrap(errors.ErrInvalidConfig, err)
	}

	return nil
}
