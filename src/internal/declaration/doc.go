// Package declaration loads the desired-state document.
//
// A document is JSON or YAML with up to four top-level sections:
//
//	properties  lowest-precedence placeholder values
//	shared      named policy and endpoint fragments referenced with $ref
//	system      gateways and plugins
//	org         the organization with its APIs, versions and policies
//
// Load runs the whole pipeline: parse, resolve ${key} placeholders, expand
// shared fragments into private copies, bind into typed structs and validate.
// All validation problems are reported at once as ValidationErrors.
//
// Marshal writes a Declaration back out; loading that output produces an
// equal Declaration with the same Checksum.
package declaration
