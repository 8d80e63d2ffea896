// Package config loads layered configuration for ticksim commands.
//
// Values are resolved from a YAML file, then a .env file, then the process
// environment, and unmarshalled with Viper into a struct that embeds
// ServiceConfig:
//
//	type SimConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Simulation Simulation `yaml:"simulation" mapstructure:"simulation"`
//	}
//
//	var cfg SimConfig
//	err := config.Load("ticksim", &cfg, config.WithConfigFile("sim.yml"))
//
// With an env prefix set, TICKSIM_SIMULATION_TICKS overrides simulation.ticks.
package config
