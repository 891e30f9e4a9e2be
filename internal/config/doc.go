// Package config implements the declarative configuration model used by the
// training framework.
//
// A Schema is an ordered, immutable set of declarations built once with a
// Builder: plain fields (a cty.Type semantic tag plus an optional default),
// aliases that forward reads and writes to another declaration, and
// sub-configs that embed another Schema. A Config is a populated instance of
// a Schema. It owns its sub-config instances and keeps an extension table for
// fields added at runtime with Register.
//
// The lifecycle is: build a Config (New, or the loader package), Resolve it to
// infer derivable fields, then Validate it. Resolution and validation walk the
// instance tree depth-first and receive the distributed world size through an
// injected Runtime rather than reading process-wide state.
//
// Schemas are safe for concurrent readers. Configs are not safe for concurrent
// mutation.
package config
