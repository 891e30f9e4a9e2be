// Package dist answers the one question the configuration layer asks of the
// distributed runtime: how many participants are cooperating. Every provider
// implements config.Runtime and never reports fewer than one participant.
package dist
