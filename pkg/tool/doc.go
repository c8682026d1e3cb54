// Package tool holds the name-keyed registry of callable tool definitions.
//
// Invariants:
//   - A registry never changes after NewRegistry returns.
//   - Parameter schemas are compiled at construction; Invoke validates
//     arguments before the handler runs.
package tool
