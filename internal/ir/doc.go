// Package ir provides the shared vocabulary of the precompute planner.
//
// This package contains the domain model types (classes, attributes,
// references, collections), the compiled query plan, the error taxonomy,
// and the canonical encoding used to give every plan a stable identity.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Plans are immutable once built. Reordering clones, never mutates.
//   - The from list and select list hold exactly the classes of the
//     originating path, in first-appearance order.
//   - Plan identity is content-addressed (PlanID) so the same plan always
//     maps to the same materialized table.
//   - All JSON tags use snake_case
package ir
