package config

import (
	"net/url"
	"strings"

	"codeberg.org/mutker/wattwatch/internal/errors"
)

const (
	DefaultAPIURL     = "https://smartenergymeterapi20251028114041-b0cthrd5cdh2egh3.southafricanorth-01.azurewebsites.net/api/EnergyMeter"
	DefaultDeviceID   = "ESP8266_01"
	DefaultInterval   = 1
	DefaultCostPerKWh = 0.15
)

// Config is the meter polling configuration owned by the Store.
type Config struct {
	APIBaseURL          string  `mapstructure:"api_url"`
	DeviceID            string  `mapstructure:"device_id"`
	PollIntervalSeconds int     `mapstructure:"interval"`
	DarkMode            bool    `mapstructure:"dark_mode"`
	CostPerKWh          float64 `mapstructure:"cost_per_kwh"`
}

// Default returns the built-in polling configuration.
func Default() Config {
	return Config{
		APIBaseURL:          DefaultAPIURL,
		DeviceID:            DefaultDeviceID,
		PollIntervalSeconds: DefaultInterval,
		CostPerKWh:          DefaultCostPerKWh,
	}
}

// Validate checks the fields the poller depends on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return invalid(errors.ErrValidation, "api_url", c.APIBaseURL, "must not be empty")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return invalid(errors.ErrValidation, "api_url", c.APIBaseURL, "must be an absolute http(s) URL")
	}
	if strings.TrimSpace(c.DeviceID) == "" {
		return invalid(errors.ErrValidation, "device_id", c.DeviceID, "must not be empty")
	}
	if c.PollIntervalSeconds <= 0 {
		return invalid(errors.ErrValidation, "interval", c.PollIntervalSeconds, "must be greater than zero")
	}
	if c.CostPerKWh < 0 {
		return invalid(errors.ErrValidation, "cost_per_kwh", c.CostPerKWh, "must not be negative")
	}

	return nil
}
