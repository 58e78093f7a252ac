// Package oasforge turns OpenAPI descriptions into ready-to-compile Go client
// libraries, with one callable per API operation and typed request/response
// payloads.
//
// # Overview
//
// The library is organized as a forward pipeline of small packages:
//
//   - loader: parse JSON/YAML text into a generic document tree with source locations
//   - resolver: resolve $ref pointers, including cyclic reference graphs
//   - typemodel: unify schemas into a closed, arena-backed type model
//   - opmodel: build one Operation record per path+method pair
//   - namer: assign deterministic, collision-free output identifiers
//   - planner: group declarations into emission units and produce the final IR
//   - render: a reference renderer turning the IR into Go client source
//   - forge: the orchestrator tying the pipeline together
//
// # Quick Start
//
// Generate a client from a specification file:
//
//	import "github.com/oasforge/oasforge/forge"
//
//	result, err := forge.Generate(
//	    forge.WithFilePath("api.yaml"),
//	    forge.WithPackageName("petstore"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := result.WriteFiles("./petstore", false); err != nil {
//	    log.Fatal(err)
//	}
//
// All pipeline phases are deterministic: byte-identical input and identical
// configuration always produce byte-identical output, including symbol names
// and declaration order.
package oasforge
