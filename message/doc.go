// Package message defines the request and outcome values exchanged between
// a simulation driver and its executors.
//
// An Action asks an executor to run one function at one execution variant
// before a deadline tick. Every decision an executor makes about an Action is
// reported back as a Result carrying the Code, the Reason and the ticks at
// which the request was received and the outcome observed. Results are
// correlated by Action.RequestID.
package message
