// Package sim is a reference driver that runs workflows over a fleet of
// executors, one logical tick at a time.
//
// Each arrival instantiates a workflow, walks its execution order and
// submits one function at a time, releasing the next function when its
// predecessor succeeds. Every result is routed back to its workflow instance
// and aggregated by a Collector into a Report.
//
//	cfg, err := sim.LoadConfig(config.WithConfigFile("sim.yml"))
//	d, err := sim.Build(cfg)
//	report, err := d.Run(ctx, cfg.Simulation.Ticks)
package sim
