// Package nav implements the navigation stack behind panelnav's back-button UI.
//
// A Stack holds an ordered history of panel Descriptors (index 0 is the oldest,
// the last entry is the visible top). Every mutation is applied synchronously and
// then fans a single transition round out to all registered Controllers, waiting
// for every one of them to settle before the mutation call returns.
//
// # Basic Usage
//
//	s := nav.New(nav.WithLogger(logger))
//	s.AddController(renderer)
//	s.AddController(tracer)
//
//	if err := s.Push(ctx, nav.Descriptor{Panel: "settings"}); err != nil {
//	    // at least one controller failed its transition
//	}
//
// # Fire-and-forget
//
// Call sites that cannot wait (key handlers running on a UI event loop) use the
// detached tier. The mutation is still applied before the call returns; only the
// round's outcome becomes unobservable to the caller:
//
//	s.Detached().Pop()
//
// # Rounds
//
// Rounds are not serialized by default: a second mutation issued while a previous
// round is still running starts its own round immediately. WithSerialRounds queues
// rounds in mutation order instead.
package nav
