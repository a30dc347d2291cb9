// Package reactive defines the primitives the bridge builds on.
//
// # Two systems
//
// The bridge connects two reactive systems. The origin side is abstract:
// the System interface captures the observation contract the bridge
// needs (membership introspection, untracked reads, direct and deep
// change subscriptions, reactive computations), and the Object interface
// captures the member surface of a single source object. The output side
// needs only a mutable reactive cell, provided here as Cell.
//
// # Reference store
//
// Store is a complete, single-threaded implementation of System with
// dependency tracking: computed members record which data members they
// read, and computations re-run when any recorded dependency changes.
// It exists so the bridge has a real origin system to run against in
// tests and tooling; applications with their own reactive layer adapt
// it to System instead.
//
// A Store and every object created from it must be used from a single
// goroutine. The model is cooperative: change notifications run
// synchronously inside the mutating call, and nothing blocks.
package reactive
