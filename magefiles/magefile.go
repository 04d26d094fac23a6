//go:build mage

// Package main provides build targets for the pantry project using Mage.
//
// Usage:
//
//	mage build             Compile the pantry binary to bin/
//	mage test:all          Run all tests (unit + integration)
//	mage test:unit         Run only unit tests
//	mage test:integration  Build, then run the integration tests
//	mage test:race         Run unit tests with the race detector
//	mage lint              Run golangci-lint
//	mage vet               Run go vet
//	mage clean             Remove build artifacts
//	mage install           Install pantry to GOPATH/bin
//	mage stats             Print lines of code per package
package main

// Default is the target mage runs without arguments.
var Default = Build
