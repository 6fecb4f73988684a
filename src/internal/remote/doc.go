// Package remote defines the contract between the reconciliation engine and a
// management server.
//
// Every remote entity kind (gateway, plugin, org, api, api_version, policy,
// publication) is served by one Capability offering the three upsert
// primitives Exists, Create and Update. The engine only talks to
// Capabilities; the apiman subpackage implements them over HTTP.
package remote
