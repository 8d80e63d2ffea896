// Package errors provides the structured error type used across the
// simulator. Structural contract violations (mutating a sealed workflow,
// duplicate functions, cyclic graphs) are reported as fatal AppErrors so a
// driver can abort, while transient conditions are marked retryable.
package errors
