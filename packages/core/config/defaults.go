package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		DefaultEnvironment: "dev",
		Reporters:          []string{"console"},
		Parallel:           BoolPtr(false),
		Concurrency:        5,
		Bail:               BoolPtr(false),
		Verbose:            BoolPtr(false),
		NoColor:            BoolPtr(false),
		UpdateSnapshots:    BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.DefaultEnvironment == defaults.DefaultEnvironment &&
		len(c.Environments) == 0 &&
		len(c.Reporters) == 1 && c.Reporters[0] == "console" &&
		c.OutputDir == defaults.OutputDir &&
		c.GetParallel() == defaults.GetParallel() &&
		c.Concurrency == defaults.Concurrency &&
		c.GetBail() == defaults.GetBail() &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor() &&
		c.GetUpdateSnapshots() == defaults.GetUpdateSnapshots() &&
		c.Database == ""
}
