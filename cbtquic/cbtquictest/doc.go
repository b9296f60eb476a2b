// Package cbtquictest contains in-memory and loopback implementations
// of the cbtquic interfaces, for use in tests.
package cbtquictest
