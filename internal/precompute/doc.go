// Package precompute drives a precompute run: it resolves configured
// entries into candidate plans, estimates each one against the store,
// materializes those whose estimate meets the row threshold and, in test
// mode, brackets the run with a battery of timed reference queries.
//
// A run moves through these stages:
//
//	Idle -> ConfigLoaded -> Resolved -> [BaselineVerify] -> Admitting -> Done
//
// with a per-candidate loop of
//
//	Estimate -> Admit | Skip -> [Materialize -> [Verify]]
//
// Entries are visited in ascending key order and candidates in generation
// order. Everything is sequential: one store call is in flight at a time,
// and one materialization completes before the next candidate is estimated.
//
// Every error is fatal. The first failure aborts the run and is returned
// annotated with the offending configuration key and plan; nothing is
// retried and no partial progress is recorded beyond what the store keeps.
package precompute
