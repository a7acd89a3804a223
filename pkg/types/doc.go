// Package types defines the types shared across deliveryman packages:
// the Remote interface every deployment host is reached through, and the
// result structures returned by commands and rendered by the ui package.
package types
