package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (HUBSTORE_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("base-url", os.Getenv("HUBSTORE_BASE_URL"), &cfg.BaseURL)
	s.setString("spool-dir", os.Getenv("HUBSTORE_SPOOL_DIR"), &cfg.SpoolDir)
	s.setString("log-level", os.Getenv("HUBSTORE_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("timeout", os.Getenv("HUBSTORE_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("poll", os.Getenv("HUBSTORE_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}

	s.setBoolFromString("once", os.Getenv("HUBSTORE_ONCE"), &cfg.Once)

	return nil
}
