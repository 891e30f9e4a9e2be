// Package dag is a small directed graph used to order schema construction.
// An edge from A to B means B depends on A, so A must be built first.
package dag
