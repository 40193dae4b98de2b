// Package services implements the core business logic for contrafeed.
//
// Services implement the driving ports and depend only on domain types
// and driven port interfaces. All external collaborators (metadata
// source, prefix lookup, embedding provider, cache store) are injected
// at construction time.
package services
