// Package resource describes the compute an executor runs on.
//
// A Resource has a type name, which selects the cost column of a function,
// and answers whether a function is currently loaded on it. How functions get
// loaded is a placement policy outside this package; Table is an in-memory
// Resource whose loaded set is managed directly.
package resource
