package commands

import (
	"fmt"

	"github.com/razor389/sec-queries/internal/resolve"
	"github.com/razor389/sec-queries/internal/ruletable"
	"github.com/razor389/sec-queries/pkg/config"
)

// loadConfig loads the environment config and applies global flag
// overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if rulesFile != "" {
		cfg.RulesPath = rulesFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// buildEngine loads the rule table and constructs the resolution engine.
func buildEngine(cfg *config.Config) (*ruletable.Table, *resolve.Engine, error) {
	table, err := ruletable.Load(cfg.RulesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load rule table %s: %w", cfg.RulesPath, err)
	}

	engine := resolve.New(table, resolve.WithTolerance(cfg.IdentityTolerance))
	return table, engine, nil
}
