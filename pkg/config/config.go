// Process configuration: an optional .env file layered under the environment.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/yumyai/strainpipe/logger"
)

// FailurePolicy decides what a batch does when one external tool exits non-zero.
type FailurePolicy string

const (
	PolicyContinue FailurePolicy = "continue"
	PolicyAbort    FailurePolicy = "abort"
)

// LedgerOff disables the sqlite run ledger.
const LedgerOff = "off"

const (
	EnvLogLevel        = "STRAINPIPE_LOG_LEVEL"
	EnvLedger          = "STRAINPIPE_LEDGER"
	EnvDryRun          = "STRAINPIPE_DRY_RUN"
	EnvFailurePolicy   = "STRAINPIPE_FAILURE_POLICY"
	EnvProkka          = "STRAINPIPE_PROKKA"
	EnvAntismash       = "STRAINPIPE_ANTISMASH"
	EnvFastp           = "STRAINPIPE_FASTP"
	EnvPropagateGroups = "STRAINPIPE_PROPAGATEGROUPS"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Programs holds the executable used for every external tool.
type Programs struct {
	Prokka          string
	Antismash       string
	Fastp           string
	PropagateGroups string
}

type Config struct {
	LogLevel      zapcore.Level
	Ledger        string // empty means "next to the output", LedgerOff disables
	DryRun        bool
	FailurePolicy FailurePolicy
	Programs      Programs
}

// DefaultPrograms are the names the tools install under.
func DefaultPrograms() Programs {
	return Programs{
		Prokka:          "prokka",
		Antismash:       "antismash",
		Fastp:           "fastp",
		PropagateGroups: "PropagateGroups.py",
	}
}

// LoadDotenv layers ./.env under the process environment. The error is
// returned rather than logged since it runs before the logger exists.
func LoadDotenv() error {
	return godotenv.Load()
}

// FromEnv resolves the configuration from the process environment.
func FromEnv() (*Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup resolves the configuration from an arbitrary lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		LogLevel:      zapcore.InfoLevel,
		Ledger:        get(EnvLedger),
		FailurePolicy: PolicyContinue,
		Programs:      DefaultPrograms(),
	}

	if v := get(EnvLogLevel); v != "" {
		level, err := logger.ParseLevel(strings.ToLower(v))
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvLogLevel, v)
		}
		cfg.LogLevel = level
	}

	if v := get(EnvDryRun); v != "" {
		dry, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvDryRun, v)
		}
		cfg.DryRun = dry
	}

	if v := get(EnvFailurePolicy); v != "" {
		switch FailurePolicy(strings.ToLower(v)) {
		case PolicyContinue:
			cfg.FailurePolicy = PolicyContinue
		case PolicyAbort:
			cfg.FailurePolicy = PolicyAbort
		default:
			return nil, fmt.Errorf("%w: %s=%q (want continue or abort)", ErrInvalidConfig, EnvFailurePolicy, v)
		}
	}

	override := func(dst *string, key string) {
		if v := get(key); v != "" {
			*dst = v
		}
	}
	override(&cfg.Programs.Prokka, EnvProkka)
	override(&cfg.Programs.Antismash, EnvAntismash)
	override(&cfg.Programs.Fastp, EnvFastp)
	override(&cfg.Programs.PropagateGroups, EnvPropagateGroups)

	return cfg, nil
}
