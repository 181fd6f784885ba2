// Package constants provides shared constants for the campaign-planner application.
package constants

// DateLayout is the ISO-8601 calendar date format used for plan requests,
// configuration files and every date emitted in results.
const DateLayout = "2006-01-02"

// Money constants
const (
	// MinorUnitDigits is the number of decimal digits in one currency minor unit (cents).
	MinorUnitDigits = 2

	// MaxPlanUnits bounds orders, traffic and budget minor units. Splits are
	// weighted in float64, which counts integers exactly only up to 2^53.
	MaxPlanUnits int64 = 1 << 53
)

// Allocation constants
const (
	// WeightTolerance is the allowed deviation of a funnel weight table from 1.0.
	WeightTolerance = 1e-9

	// PacingUniform spreads a period evenly and books the remainder on its last day.
	PacingUniform = "uniform"

	// PacingFrontLoaded spends more at the start of a period.
	PacingFrontLoaded = "front-loaded"

	// PacingBackLoaded spends more towards the end of a period.
	PacingBackLoaded = "back-loaded"
)

// Funnel stage identifiers of the default funnel table.
const (
	StagePreHeat   = "pre-heat"
	StageMainPush  = "main-push"
	StageFinalPush = "final-push"
)

// Diagnosis constants
const (
	// MaxScoreRatio caps actual/target ratios so overshoot beyond 2x earns nothing extra.
	MaxScoreRatio = 2.0

	// MaxHealthScore is the upper bound of a health score.
	MaxHealthScore = 100
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Run modes of the command line tool.
const (
	ModePlan     = "plan"
	ModeDiagnose = "diagnose"
	ModeServe    = "serve"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024
)
