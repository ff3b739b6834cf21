// Package secrets provides the ordered key/value container used for every
// secret snapshot envlock handles.
//
// A Map remembers the order in which keys were first set. All renderers and
// the diff engine iterate in that order, so output is byte-for-byte
// reproducible for the same input.
package secrets
