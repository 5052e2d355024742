// Package testsupport holds helpers shared by package tests: throwaway
// configs, stub binaries on PATH, and job store fixtures.
package testsupport
