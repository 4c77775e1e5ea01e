// Package table defines the normalized table produced by the loader and
// consumed by the plotter.
//
// This package contains value types only. All other internal packages
// import table; table imports nothing internal, so it stays the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - A Reading is either a Number or NoData, never a sentinel float
//   - Rows keep file order; ordering problems are reported, not repaired
//   - Every row has exactly one reading per column (uniform schema)
//   - Nothing is mutated after construction; derived views return copies
package table
