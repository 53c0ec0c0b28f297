//go:build oceandebug

package query

// debugAssertions turns corrupt field data into a panic.
const debugAssertions = true
