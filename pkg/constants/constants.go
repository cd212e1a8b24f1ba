// Package constants provides shared constants for the qmcpricer application.
package constants

// Sampling defaults
const (
	// DefaultSampleBudget is the maximum number of payoff evaluations an
	// estimator may spend before reporting budget exhaustion
	DefaultSampleBudget = 1 << 24

	// DefaultInitialBatch is the size of the first batch for the
	// independent-random estimator
	DefaultInitialBatch = 1 << 10

	// DefaultInitialPoints is the size of the first randomized point set
	// for the Sobol' and lattice estimators
	DefaultInitialPoints = 1 << 8

	// DefaultReplicates is the number of independent randomizations used
	// to estimate the error of a quasi-Monte Carlo mean
	DefaultReplicates = 16

	// MaxSobolDimension is the highest dimension covered by the built-in
	// direction-number table
	MaxSobolDimension = 32
)

// Numerical constants
const (
	// UniformClampEpsilon keeps uniforms away from 0 and 1 so the normal
	// quantile stays finite
	UniformClampEpsilon = 1e-12

	// ConfidenceQuantile is the standard normal quantile for a 99%
	// two-sided confidence interval
	ConfidenceQuantile = 2.5758293035489004

	// ErrorInflation widens the estimated error bound to account for the
	// variance estimate itself being noisy
	ErrorInflation = 1.2
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML requests (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
