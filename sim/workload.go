package sim

import (
	"github.com/google/uuid"

	"github.com/kbukum/ticksim/dag"
	"github.com/kbukum/ticksim/message"
)

// Arrival is one request for a workflow instance.
type Arrival struct {
	ID       string
	Workflow *dag.Workflow
	Tick     message.Tick
	Variant  string
}

// GenerateArrivals returns count arrivals of w, the first at start and then
// every interval ticks. Each arrival gets a fresh uuid.
func GenerateArrivals(w *dag.Workflow, count, interval int, start message.Tick, variant string) []Arrival {
	if count <= 0 {
		return nil
	}
	out := make([]Arrival, count)
	for i := range out {
		out[i] = Arrival{
			ID:       uuid.NewString(),
			Workflow: w,
			Tick:     start + message.Tick(i*interval),
			Variant:  variant,
		}
	}
	return out
}
