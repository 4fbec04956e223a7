// Package config loads the simulation/optimization configuration from a
// JSON (or YAML) file via viper, mirroring the source's config.json shape
// with Go-idiomatic defaults and validation instead of a getInstance()
// singleton.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	cserr "edsim/errors"
)

// Config is the full set of tunables driving one simulation+optimization
// run: population, ED capacities, staffing ratios, triage requirements,
// service times, and arrival-rate expressions.
type Config struct {
	PopulationSize int    `mapstructure:"populationSize"`
	ERName         string `mapstructure:"ERName"`
	ERCapacity     int    `mapstructure:"ERCapacity"`

	ERTreatmentRooms int `mapstructure:"ERTreatmentRooms"`

	PatientMinAge int `mapstructure:"patientMinAge"`
	PatientMaxAge int `mapstructure:"patientMaxAge"`

	InterarrivalTimeMins float64 `mapstructure:"interarrivalTimeMins"`

	MaxHoursPerDay         float64 `mapstructure:"maxHoursPerDay"`
	MaxRegularHoursPerWeek float64 `mapstructure:"maxRegularHoursPerWeek"`
	MaxTotalHoursPerWeek   float64 `mapstructure:"maxTotalHoursPerWeek"`
	OvertimeMultiplier     float64 `mapstructure:"overtimeMultiplier"`

	StaffCounts  map[string]int     `mapstructure:"staffCounts"`
	HourlyWages  map[string]float64 `mapstructure:"hourlyWages"`

	LPNRatio float64 `mapstructure:"LPNRatio"`
	CNARatio float64 `mapstructure:"CNARatio"`

	EstTraumaPatientsDay     int `mapstructure:"estTraumaPatientsDay"`
	EstTraumaPatientsEvening int `mapstructure:"estTraumaPatientsEvening"`
	EstTraumaPatientsNight   int `mapstructure:"estTraumaPatientsNight"`

	EstNonTraumaPatientsDay     int `mapstructure:"estNonTraumaPatientsDay"`
	EstNonTraumaPatientsEvening int `mapstructure:"estNonTraumaPatientsEvening"`
	EstNonTraumaPatientsNight   int `mapstructure:"estNonTraumaPatientsNight"`

	TriageNurseRequirements    map[string]float64 `mapstructure:"triageNurseRequirements"`
	TriagePhysicianRequirements map[string]float64 `mapstructure:"triagePhysicianRequirements"`
	TriageRPRequirements       map[string]float64 `mapstructure:"triageRPRequirements"`

	AvgTreatmentTimesMins map[string]float64 `mapstructure:"avgTreatmentTimesMins"`

	DefaultArrivalFunction  string            `mapstructure:"defaultArrivalFunction"`
	PatientArrivalFunctions map[string]string `mapstructure:"patientArrivalFunctions"`

	SchedulingPeriodDays int `mapstructure:"schedulingPeriodDays"`
	TriageVariant        string `mapstructure:"triageVariant"`
}

// Load reads configuration from path (or from ./config.json / ./config.yaml
// in the current directory if path is empty), overlaying environment
// variables prefixed EDSIM_, and validates the required keys. A config
// file that does not exist leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("populationSize", 100000)
	v.SetDefault("ERName", "Main ED")
	v.SetDefault("ERCapacity", 50)
	v.SetDefault("ERTreatmentRooms", 20)
	v.SetDefault("patientMinAge", 5)
	v.SetDefault("patientMaxAge", 99)
	v.SetDefault("interarrivalTimeMins", 10.0)
	v.SetDefault("maxHoursPerDay", 12.0)
	v.SetDefault("maxRegularHoursPerWeek", 40.0)
	v.SetDefault("maxTotalHoursPerWeek", 60.0)
	v.SetDefault("overtimeMultiplier", 1.5)
	v.SetDefault("LPNRatio", 0.0)
	v.SetDefault("CNARatio", 0.0)
	v.SetDefault("defaultArrivalFunction", "flat")
	v.SetDefault("patientArrivalFunctions", map[string]string{"flat": "1"})
	v.SetDefault("schedulingPeriodDays", 28)
	v.SetDefault("triageVariant", "CTAS")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("EDSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the handful of keys whose absence or invalid value would
// otherwise surface as a confusing downstream failure (an unevaluable
// arrival expression, a zero-capacity ED, ...).
func (c *Config) Validate() error {
	if c.ERCapacity <= 0 {
		return &cserr.ConfigError{Key: "ERCapacity", Err: cserr.ErrMissingConfigKey}
	}
	if c.ERTreatmentRooms <= 0 {
		return &cserr.ConfigError{Key: "ERTreatmentRooms", Err: cserr.ErrMissingConfigKey}
	}
	if c.PatientMaxAge < c.PatientMinAge {
		return &cserr.ConfigError{Key: "patientMaxAge", Err: cserr.ErrMissingConfigKey}
	}
	if c.DefaultArrivalFunction == "" {
		return &cserr.ConfigError{Key: "defaultArrivalFunction", Err: cserr.ErrUnknownArrivalFunction}
	}
	if _, ok := c.PatientArrivalFunctions[c.DefaultArrivalFunction]; !ok {
		return &cserr.ConfigError{Key: "defaultArrivalFunction", Err: cserr.ErrUnknownArrivalFunction}
	}
	return nil
}
