// Package types defines the Store interface, the Zoo and Animal row and view
// types, the Animal variant model, and standard error types for menagerie.
package types
