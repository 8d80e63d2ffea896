package sim

import (
	"strconv"

	"github.com/kbukum/ticksim/config"
	"github.com/kbukum/ticksim/observability"
	"github.com/kbukum/ticksim/validation"
)

// ServiceName is the default service name and config lookup key.
const ServiceName = "ticksim"

// Config is the full configuration of a simulation run.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Simulation Simulation           `yaml:"simulation" mapstructure:"simulation"`
	Telemetry  observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// Simulation describes the fleet, the workflows and the workload.
type Simulation struct {
	// Ticks is how many ticks Run steps.
	Ticks int `yaml:"ticks" mapstructure:"ticks" validate:"gt=0"`
	// Workers are the executors, stepped in this order.
	Workers []WorkerConfig `yaml:"workers" mapstructure:"workers" validate:"required,min=1,dive"`
	// Workflows are definition files (*.yaml, *.yml) or names looked up in WorkflowDirs.
	Workflows []string `yaml:"workflows" mapstructure:"workflows" validate:"required,min=1,dive,required"`
	// WorkflowDirs are searched for workflows given by name.
	WorkflowDirs []string `yaml:"workflow_dirs" mapstructure:"workflow_dirs"`
	// Arrivals generate the workload.
	Arrivals []ArrivalConfig `yaml:"arrivals" mapstructure:"arrivals" validate:"dive"`
}

// WorkerConfig describes one InferExecutor and its resource.
type WorkerConfig struct {
	ID       int    `yaml:"id" mapstructure:"id" validate:"gte=0"`
	Resource string `yaml:"resource" mapstructure:"resource" validate:"required"`
	// Tag restricts admission to functions loaded under it.
	Tag string `yaml:"tag" mapstructure:"tag"`
	// Loaded are function ids preloaded on the resource.
	Loaded []string `yaml:"loaded" mapstructure:"loaded"`
}

// ArrivalConfig generates Count arrivals of a workflow.
type ArrivalConfig struct {
	Workflow string `yaml:"workflow" mapstructure:"workflow" validate:"required"`
	Count    int    `yaml:"count" mapstructure:"count" validate:"gt=0"`
	Interval int    `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
	Start    int    `yaml:"start" mapstructure:"start" validate:"gte=0"`
	Variant  string `yaml:"variant" mapstructure:"variant" validate:"required"`
}

// ApplyDefaults fills the service name, logging and telemetry defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	for i := range c.Simulation.Arrivals {
		if c.Simulation.Arrivals[i].Count == 0 {
			c.Simulation.Arrivals[i].Count = 1
		}
	}
}

// Validate checks the service fields, the struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c.Simulation); err != nil {
		return err
	}
	if err := validation.Validate(c.Telemetry); err != nil {
		return err
	}

	ids := make([]string, len(c.Simulation.Workers))
	for i, w := range c.Simulation.Workers {
		ids[i] = strconv.Itoa(w.ID)
	}
	v := validation.New()
	v.Unique("simulation.workers.id", ids)
	v.Unique("simulation.workflows", c.Simulation.Workflows)
	return v.Error()
}

// LoadConfig loads a Config from the usual ticksim locations and TICKSIM_*
// environment variables, then applies defaults and validates it.
func LoadConfig(opts ...config.LoaderOption) (*Config, error) {
	base := []config.LoaderOption{
		config.WithEnvPrefix("TICKSIM"),
		config.WithDefault("simulation.ticks", 100),
	}
	var cfg Config
	if err := config.Load(ServiceName, &cfg, append(base, opts...)...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
