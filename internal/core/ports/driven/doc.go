// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports).
//
// The core owns these interfaces but not their implementations: the
// metadata source, the prefix lookup, the embedding provider and the
// cache store are all external collaborators injected at construction
// time. Adapters live under internal/adapters/driven.
package driven
