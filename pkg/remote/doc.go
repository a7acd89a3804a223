// Package remote provides implementations of types.Remote.
//
// A Client wraps a small driver of raw primitives and layers the shared
// behaviour on top: existence and type checks, recursive mkdir/delete/chmod
// as explicit work-lists, forced symlink replacement, uniform error wrapping
// and trace logging. Two drivers exist: SFTP (pkg/sftp over x/crypto/ssh)
// for real hosts and the local OS for base paths on the deploying machine.
package remote
