// Package navigation decides which screen tree the shell presents.
//
// Allowed here:
// - bootstrap phase resolution from collaborator snapshots
// - auth initialization sequencing and the foreground re-check latch
// - plugin route loading and route table composition with fixed precedence
//
// Not allowed here:
// - rendering of any screen (see internal/tui)
// - collaborator bookkeeping such as token storage or plugin enablement
package navigation
