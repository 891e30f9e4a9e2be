// Package registry binds the string identifiers used in schema manifests
// (e.g. resolver = "batch") to the compiled Go hooks that implement them, and
// holds the schemas that Go packages build directly.
//
// The registry is populated once at startup by every Module and is read-only
// afterwards, so manifests loaded later can reference anything registered.
package registry
