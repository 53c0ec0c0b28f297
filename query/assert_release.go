//go:build !oceandebug

package query

const debugAssertions = false
