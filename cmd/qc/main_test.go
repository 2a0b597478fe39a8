package main

import (
	"os"
	"path/filepath"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestFlagsOverridesSkipsUnsetValues(t *testing.T) {
	rps := -1.0
	burst := -1
	f := flags{
		configFile:     strPtr("qc.yaml"),
		port:           strPtr(""),
		rateLimitRPS:   &rps,
		rateLimitBurst: &burst,
		reasonPolicy:   strPtr("split"),
	}

	o := f.overrides()
	if o.ConfigFile != "qc.yaml" {
		t.Fatalf("expected config file to be forwarded, got %q", o.ConfigFile)
	}
	if o.Port != nil {
		t.Fatalf("expected empty port to be ignored")
	}
	if o.RateLimitRPS != nil || o.RateLimitBurst != nil {
		t.Fatalf("expected negative rate limit sentinels to be ignored")
	}
	if o.ReasonPolicy == nil || *o.ReasonPolicy != "split" {
		t.Fatalf("expected reason policy override, got %v", o.ReasonPolicy)
	}
	if o.ExportDir != nil || o.LogFile != nil {
		t.Fatalf("expected flags not registered on the command to stay nil")
	}
}

func TestFlagsOverridesZeroDisablesRateLimit(t *testing.T) {
	rps := 0.0
	burst := 0
	o := flags{rateLimitRPS: &rps, rateLimitBurst: &burst}.overrides()

	if o.RateLimitRPS == nil || *o.RateLimitRPS != 0 {
		t.Fatalf("expected zero rps override to be kept")
	}
	if o.RateLimitBurst == nil || *o.RateLimitBurst != 0 {
		t.Fatalf("expected zero burst override to be kept")
	}
}

func TestConsoleLogFileFollowsPrecedence(t *testing.T) {
	t.Run("default when unset", func(t *testing.T) {
		t.Setenv("LOG_FILE", "")
		c := newCLI()
		if _, err := c.app.Parse([]string{"console"}); err != nil {
			t.Fatalf("parse: %v", err)
		}

		cfg, err := loadConfig(c.console.overrides(), defaultConsoleLogFile)
		if err != nil {
			t.Fatalf("loadConfig returned error: %v", err)
		}
		if cfg.LogFile != defaultConsoleLogFile {
			t.Fatalf("expected %q, got %q", defaultConsoleLogFile, cfg.LogFile)
		}
	})

	t.Run("env wins over default", func(t *testing.T) {
		t.Setenv("LOG_FILE", "/tmp/from-env.log")
		c := newCLI()
		if _, err := c.app.Parse([]string{"console"}); err != nil {
			t.Fatalf("parse: %v", err)
		}

		cfg, err := loadConfig(c.console.overrides(), defaultConsoleLogFile)
		if err != nil {
			t.Fatalf("loadConfig returned error: %v", err)
		}
		if cfg.LogFile != "/tmp/from-env.log" {
			t.Fatalf("expected env log file, got %q", cfg.LogFile)
		}
	})

	t.Run("yaml wins over env", func(t *testing.T) {
		t.Setenv("LOG_FILE", "/tmp/from-env.log")
		path := filepath.Join(t.TempDir(), "qc.yaml")
		if err := os.WriteFile(path, []byte("log_file: /tmp/from-yaml.log\n"), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		c := newCLI()
		if _, err := c.app.Parse([]string{"console", "--config", path}); err != nil {
			t.Fatalf("parse: %v", err)
		}

		cfg, err := loadConfig(c.console.overrides(), defaultConsoleLogFile)
		if err != nil {
			t.Fatalf("loadConfig returned error: %v", err)
		}
		if cfg.LogFile != "/tmp/from-yaml.log" {
			t.Fatalf("expected yaml log file, got %q", cfg.LogFile)
		}
	})

	t.Run("flag wins over env", func(t *testing.T) {
		t.Setenv("LOG_FILE", "/tmp/from-env.log")
		c := newCLI()
		if _, err := c.app.Parse([]string{"console", "--log-file", "/tmp/from-flag.log"}); err != nil {
			t.Fatalf("parse: %v", err)
		}

		cfg, err := loadConfig(c.console.overrides(), defaultConsoleLogFile)
		if err != nil {
			t.Fatalf("loadConfig returned error: %v", err)
		}
		if cfg.LogFile != "/tmp/from-flag.log" {
			t.Fatalf("expected flag log file, got %q", cfg.LogFile)
		}
	})
}

func TestServeHasNoLogFileFallback(t *testing.T) {
	t.Setenv("LOG_FILE", "")
	c := newCLI()
	cmd, err := c.app.Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd != c.serveCmd.FullCommand() {
		t.Fatalf("expected serve to be the default command, got %q", cmd)
	}

	cfg, err := loadConfig(c.serve.overrides(), "")
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if cfg.LogFile != "" {
		t.Fatalf("expected serve to log to stderr, got %q", cfg.LogFile)
	}
}
