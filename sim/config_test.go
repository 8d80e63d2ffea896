package sim

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/kbukum/ticksim/config"
	"github.com/kbukum/ticksim/errors"
	"github.com/kbukum/ticksim/logger"
)

const chainYAML = `
name: chain
slo: 10
functions:
  - id: a
    costs:
      gpu:
        "1": 2
  - id: b
    depends_on: [a]
    costs:
      gpu:
        "1": 1
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func validConfig(workflow string) *Config {
	cfg := &Config{
		Simulation: Simulation{
			Ticks:     20,
			Workers:   []WorkerConfig{{ID: 0, Resource: "gpu", Loaded: []string{"a", "b"}}},
			Workflows: []string{workflow},
			Arrivals:  []ArrivalConfig{{Workflow: "chain", Count: 2, Interval: 5, Variant: "1"}},
		},
	}
	cfg.Logging.Output = "discard"
	cfg.ApplyDefaults()
	return cfg
}

func TestConfig_Defaults(t *testing.T) {
	cfg := &Config{Simulation: Simulation{Arrivals: []ArrivalConfig{{Workflow: "chain"}}}}
	cfg.ApplyDefaults()

	if cfg.Name != ServiceName {
		t.Errorf("expected name %q, got %q", ServiceName, cfg.Name)
	}
	if cfg.Environment != "development" || cfg.Logging.Level != "debug" {
		t.Errorf("expected development defaults, got %q/%q", cfg.Environment, cfg.Logging.Level)
	}
	if cfg.Telemetry.SampleRate != 1.0 || cfg.Telemetry.Enabled {
		t.Errorf("unexpected telemetry defaults: %+v", cfg.Telemetry)
	}
	if cfg.Simulation.Arrivals[0].Count != 1 {
		t.Errorf("expected arrival count 1, got %d", cfg.Simulation.Arrivals[0].Count)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero ticks", func(c *Config) { c.Simulation.Ticks = 0 }},
		{"no workers", func(c *Config) { c.Simulation.Workers = nil }},
		{"worker without resource", func(c *Config) { c.Simulation.Workers[0].Resource = "" }},
		{"duplicate worker ids", func(c *Config) {
			c.Simulation.Workers = append(c.Simulation.Workers, WorkerConfig{ID: 0, Resource: "cpu"})
		}},
		{"no workflows", func(c *Config) { c.Simulation.Workflows = nil }},
		{"empty workflow entry", func(c *Config) { c.Simulation.Workflows = []string{""} }},
		{"duplicate workflows", func(c *Config) { c.Simulation.Workflows = []string{"chain", "chain"} }},
		{"arrival without variant", func(c *Config) { c.Simulation.Arrivals[0].Variant = "" }},
		{"negative interval", func(c *Config) { c.Simulation.Arrivals[0].Interval = -1 }},
		{"sample rate above one", func(c *Config) { c.Telemetry.SampleRate = 2 }},
		{"unknown environment", func(c *Config) { c.Environment = "qa" }},
	}

	if err := validConfig("chain").Validate(); err != nil {
		t.Fatalf("expected valid base config, got %v", err)
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig("chain")
			tc.mutate(cfg)
			err := cfg.Validate()
			if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ticksim.yml", `
name: bench
environment: staging
logging:
  output: discard
simulation:
  workers:
    - id: 0
      resource: gpu
      loaded: [a, b]
    - id: 1
      resource: gpu
      tag: warm
  workflows: [chain]
  workflow_dirs: [./workflows]
  arrivals:
    - workflow: chain
      interval: 4
      variant: "1"
telemetry:
  sample_rate: 0.5
  interval: 5s
`)
	t.Setenv("TICKSIM_SIMULATION_TICKS", "30")

	cfg, err := LoadConfig(config.WithConfigFile(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Name != "bench" || cfg.Environment != "staging" {
		t.Errorf("unexpected service config: %+v", cfg.ServiceConfig)
	}
	if cfg.Simulation.Ticks != 30 {
		t.Errorf("expected env override 30, got %d", cfg.Simulation.Ticks)
	}
	if len(cfg.Simulation.Workers) != 2 || cfg.Simulation.Workers[1].Tag != "warm" {
		t.Errorf("unexpected workers: %+v", cfg.Simulation.Workers)
	}
	if got := cfg.Simulation.Arrivals; len(got) != 1 || got[0].Count != 1 || got[0].Interval != 4 {
		t.Errorf("unexpected arrivals: %+v", got)
	}
	if cfg.Telemetry.SampleRate != 0.5 || cfg.Telemetry.Interval.Seconds() != 5 {
		t.Errorf("unexpected telemetry: %+v", cfg.Telemetry)
	}
}

func TestLoadConfig_DefaultTicks(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ticksim.yml", `
simulation:
  workers: [{id: 0, resource: gpu}]
  workflows: [chain]
`)
	cfg, err := LoadConfig(config.WithConfigFile(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Simulation.Ticks != 100 {
		t.Errorf("expected default 100 ticks, got %d", cfg.Simulation.Ticks)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ticksim.yml", `
simulation:
  ticks: 10
  workflows: [chain]
`)
	if _, err := LoadConfig(config.WithConfigFile(path)); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT for a config without workers, got %v", err)
	}
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "chain.yaml", chainYAML)

	t.Run("by path", func(t *testing.T) {
		d, err := Build(validConfig(path))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		report, err := d.Run(context.Background(), 20)
		if err != nil {
			t.Fatal(err)
		}
		if report.Arrived != 2 || report.Completed != 2 || report.SLOMet != 2 {
			t.Fatalf("expected both arrivals to meet their SLO, got %+v", report)
		}
		if !slices.Contains(logger.Registered(), ServiceName) {
			t.Errorf("expected the run logger registered as %q", ServiceName)
		}
	})

	t.Run("by name", func(t *testing.T) {
		cfg := validConfig("chain")
		cfg.Simulation.WorkflowDirs = []string{dir}
		if _, err := Build(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("with telemetry", func(t *testing.T) {
		cfg := validConfig(path)
		cfg.Telemetry.Enabled = true
		d, err := Build(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := d.Run(context.Background(), 10); err != nil {
			t.Fatal(err)
		}
	})
}

func TestBuild_Errors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "chain.yaml", chainYAML)
	dup := writeFile(t, dir, "copy/chain.yml", chainYAML)

	tests := []struct {
		name   string
		mutate func(*Config)
		code   errors.ErrorCode
	}{
		{"missing workflow file", func(c *Config) {
			c.Simulation.Workflows = []string{filepath.Join(dir, "missing.yaml")}
		}, errors.ErrCodeNotFound},
		{"unknown workflow name", func(c *Config) {
			c.Simulation.Workflows = []string{"nope"}
			c.Simulation.WorkflowDirs = []string{dir}
		}, errors.ErrCodeNotFound},
		{"workflow defined twice", func(c *Config) {
			c.Simulation.Workflows = []string{path, dup}
		}, errors.ErrCodeInvalidInput},
		{"unknown loaded function", func(c *Config) {
			c.Simulation.Workers[0].Loaded = []string{"zzz"}
		}, errors.ErrCodeNotFound},
		{"arrival for unknown workflow", func(c *Config) {
			c.Simulation.Arrivals[0].Workflow = "other"
		}, errors.ErrCodeNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(path)
			tc.mutate(cfg)
			_, err := Build(cfg)
			if !errors.HasCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	path := writeFile(t, t.TempDir(), "chain.yaml", chainYAML)
	cfg := validConfig(path)

	report, err := Execute(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Ticks != 20 || report.Completed != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
}
