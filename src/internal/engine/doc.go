// Package engine reconciles a remote management server with a Declaration.
//
// Apply walks the declaration in dependency order:
//
//  1. gateways and plugins
//  2. the organization
//  3. APIs
//  4. API versions (each also waits for its gateway)
//  5. policies of each version, in document order
//  6. publication of versions marked published
//
// Every entity is upserted: one Exists probe, then Create or Update with the
// full desired state. Gateways marked existing are only probed. A failed
// entity makes everything depending on it SkippedDependencyFailed while
// independent entities continue.
//
// With Options.Workers greater than one, independent entities are applied
// concurrently with at most Workers remote calls in flight. The Report is
// identical in content whatever the worker count.
package engine
