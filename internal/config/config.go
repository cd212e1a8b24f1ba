// Package config defines the data structures related to configuration and
// includes functions for loading and materializing pricing requests.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/lowdisc/qmcpricer/pkg/constants"
	"github.com/lowdisc/qmcpricer/pkg/cubature"
	"github.com/lowdisc/qmcpricer/pkg/payoff"
	"github.com/lowdisc/qmcpricer/pkg/pointset"
	"github.com/lowdisc/qmcpricer/pkg/validation"
)

// Configuration holds all configuration for qmcpricer.
type Configuration struct {
	Common    Common
	Scenarios []Scenario
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// Common holds the pricing request shared between all scenarios: the
// asset, the payoff, and the stopping tolerances. Scenarios only vary
// the sampling method, so the request itself stays immutable.
type Common struct {
	InitPrice       float64   `yaml:"initPrice"`
	Rate            float64   `yaml:"rate"`
	Vol             float64   `yaml:"vol"`
	MonitoringTimes []float64 `yaml:"monitoringTimes,omitempty"`
	Monitorings     int       `yaml:"monitorings,omitempty"` // used with Maturity when MonitoringTimes is empty
	Maturity        float64   `yaml:"maturity,omitempty"`    // years; used with Monitorings
	Mean            string    `yaml:"mean,omitempty"`        // arithmetic, geometric
	Kind            string    `yaml:"kind,omitempty"`        // call, put
	Strike          float64   `yaml:"strike"`
	AbsTol          float64   `yaml:"absTol"`
	RelTol          float64   `yaml:"relTol"`
	SampleBudget    int       `yaml:"sampleBudget,omitempty"`
	InitialPoints   int       `yaml:"initialPoints,omitempty"` // starting low-discrepancy point-set size
	Replicates      int       `yaml:"replicates,omitempty"`
}

// Scenario selects one sampling method and path construction to price
// the common request with.
type Scenario struct {
	Name         string `yaml:"name"`
	Active       bool   `yaml:"active"`
	Method       string `yaml:"method"`                 // iid, sobol, lattice
	Construction string `yaml:"construction,omitempty"` // sequential, pca
	Seed         int64  `yaml:"seed,omitempty"`
}

// Request is one validated, immutable pricing request materialized from
// an active scenario plus the common block.
type Request struct {
	Name          string
	Method        pointset.Method
	Construction  payoff.Construction
	Seed          int64
	Asset         payoff.AssetPathParams
	Payoff        payoff.PayoffParams
	Tolerance     cubature.ToleranceSpec
	SampleBudget  int
	InitialPoints int
	Replicates    int
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ExpandMonitoringTimes fills in an equally spaced monitoring grid from
// Monitorings and Maturity when no explicit time vector is given.
func (c *Configuration) ExpandMonitoringTimes() error {
	if len(c.Common.MonitoringTimes) > 0 {
		return nil
	}
	if c.Common.Monitorings <= 0 || c.Common.Maturity <= 0 {
		return fmt.Errorf("either monitoringTimes or both monitorings and maturity must be set")
	}
	times := make([]float64, c.Common.Monitorings)
	for i := range times {
		times[i] = c.Common.Maturity * float64(i+1) / float64(c.Common.Monitorings)
	}
	c.Common.MonitoringTimes = times
	return nil
}

// ValidateConfiguration performs general validation of the configuration
// and returns warnings. Hard errors surface later from PricingRequests.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	active := 0
	names := make(map[string]bool)
	for _, scenario := range c.Scenarios {
		if names[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("Scenario name '%s' is duplicated", scenario.Name))
		}
		names[scenario.Name] = true
		if !scenario.Active {
			continue
		}
		active++
		if c.Common.InitialPoints > 0 {
			warnings = append(warnings, validation.WarnSampleCount(scenario.Method, c.Common.InitialPoints)...)
		}
	}
	if active == 0 {
		warnings = append(warnings, "No active scenarios; nothing will be priced")
	}

	if c.Common.Vol == 0 {
		warnings = append(warnings, "Volatility is zero; the payoff is deterministic and estimates degenerate to a single evaluation")
	}
	if c.Common.Mean == string(payoff.MeanArithmetic) {
		warnings = append(warnings, "Arithmetic-mean payoffs have no closed form; reference prices will be omitted")
	}

	return warnings
}

// PricingRequests materializes validated immutable requests for the
// active scenarios. Invalid arguments are rejected here, before any
// sampling begins.
func (c *Configuration) PricingRequests() ([]Request, error) {
	asset := payoff.AssetPathParams{
		InitPrice: c.Common.InitPrice,
		Rate:      c.Common.Rate,
		Vol:       c.Common.Vol,
		Times:     c.Common.MonitoringTimes,
	}
	if err := asset.Validate(); err != nil {
		return nil, fmt.Errorf("invalid asset parameters: %w", err)
	}

	mean := c.Common.Mean
	if mean == "" {
		mean = string(payoff.MeanGeometric)
	}
	kind := c.Common.Kind
	if kind == "" {
		kind = string(payoff.OptionCall)
	}
	pay := payoff.PayoffParams{
		Mean:   payoff.MeanKind(mean),
		Kind:   payoff.OptionKind(kind),
		Strike: c.Common.Strike,
	}
	if err := pay.Validate(); err != nil {
		return nil, fmt.Errorf("invalid payoff parameters: %w", err)
	}

	tol := cubature.ToleranceSpec{AbsTol: c.Common.AbsTol, RelTol: c.Common.RelTol}
	if err := tol.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tolerances: %w", err)
	}

	budget := c.Common.SampleBudget
	if budget < 0 {
		return nil, fmt.Errorf("sample budget must be non-negative, got %d", budget)
	}
	if budget == 0 {
		budget = constants.DefaultSampleBudget
	}

	var requests []Request
	for _, scenario := range c.Scenarios {
		if !scenario.Active {
			continue
		}
		method, err := pointset.ParseMethod(scenario.Method)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		construction, err := payoff.ParseConstruction(scenario.Construction)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		requests = append(requests, Request{
			Name:          scenario.Name,
			Method:        method,
			Construction:  construction,
			Seed:          scenario.Seed,
			Asset:         asset,
			Payoff:        pay,
			Tolerance:     tol,
			SampleBudget:  budget,
			InitialPoints: c.Common.InitialPoints,
			Replicates:    c.Common.Replicates,
		})
	}
	return requests, nil
}
