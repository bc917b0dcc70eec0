// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package env

//go:generate mockgen -copyright_file=../.github/license-header.txt -source=env.go -destination=mocks/mock_env.go -package=mocks Reader,Writer

import "os"

// Reader defines an interface for environment variable access
type Reader interface {
	Getenv(key string) string
	// Environ returns the environment as "key=value" pairs.
	Environ() []string
}

// Writer defines an interface for mutating the process environment
type Writer interface {
	Setenv(key, value string) error
}

// OSReader implements Reader using the standard os package
type OSReader struct{}

// Getenv returns the value of the environment variable named by the key
func (*OSReader) Getenv(key string) string {
	return os.Getenv(key)
}

// Environ returns a copy of the process environment
func (*OSReader) Environ() []string {
	return os.Environ()
}

// OSWriter implements Writer using the standard os package
type OSWriter struct{}

// Setenv sets the value of the environment variable named by the key
func (*OSWriter) Setenv(key, value string) error {
	return os.Setenv(key, value)
}
