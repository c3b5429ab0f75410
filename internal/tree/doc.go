// Package tree defines the read-only capability interface the discovery
// engine walks, plus two implementations: an adapter over parsed HTML
// (golang.org/x/net/html) and a YAML-decodable fixture tree used by tests
// and the scenario harness.
//
// The engine never owns a tree. It queries a Node once per walk and treats
// every answer as a snapshot of a possibly-mutating host structure, which is
// why Children and ComputedStyle can fail.
package tree
