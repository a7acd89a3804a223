// Package testutil provides utilities for testing deliveryman components.
//
// Key components:
//   - MemoryRemote: In-memory types.Remote with link resolution, error
//     injection and recorded commands, for fast isolated tests
//   - MockRemote: testify mock of types.Remote for asserting exact calls
//   - Filesystem helpers: create and assert files for tests that run
//     against the local remote
//
// Usage guidelines:
//   - Most tests should use MemoryRemote for speed and isolation
//   - Only tests of the local remote and end-to-end cycles touch the real
//     filesystem, always below t.TempDir
//   - All test data should be defined inline, not in external files
package testutil
