// Package env identifies the environment the process runs in.
package env

import (
	"os"
	"strings"

	"github.com/ekisa-team/shadowsmith/internal/envvar"
)

// Environment selects logging and other runtime defaults.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Test        Environment = "test"
)

// FromEnv reads the environment from SHADOWSMITH_ENV, defaulting to development.
func FromEnv() Environment {
	switch e := Environment(strings.ToLower(strings.TrimSpace(os.Getenv(envvar.ShadowsmithEnv)))); e {
	case Production, Test:
		return e
	case "prod":
		return Production
	default:
		return Development
	}
}

// IsProduction reports whether e is the production environment.
func (e Environment) IsProduction() bool {
	return e == Production
}
