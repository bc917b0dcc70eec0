// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package env

import (
	"os"
	"slices"
	"testing"
)

func TestOSReader_Getenv(t *testing.T) { //nolint:paralleltest // Modifies environment variables
	testKey := "TEST_ENV_VARIABLE_FOR_TESTING"
	testValue := "test_value_123"

	t.Setenv(testKey, testValue)

	reader := &OSReader{}

	tests := []struct {
		name string
		key  string
		want string
	}{
		{
			name: "existing environment variable",
			key:  testKey,
			want: testValue,
		},
		{
			name: "non-existing environment variable",
			key:  "NONEXISTENT_ENV_VAR_TESTING_12345",
			want: "",
		},
		{
			name: "empty key",
			key:  "",
			want: "",
		},
	}

	for _, tt := range tests { //nolint:paralleltest // Test modifies environment variables
		t.Run(tt.name, func(t *testing.T) {
			got := reader.Getenv(tt.key)
			if got != tt.want {
				t.Errorf("OSReader.Getenv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOSWriter_Setenv(t *testing.T) { //nolint:paralleltest // Modifies environment variables
	testKey := "TEST_ENV_WRITER_FOR_TESTING"
	// t.Setenv registers the cleanup that restores the original value.
	t.Setenv(testKey, "")

	writer := &OSWriter{}
	if err := writer.Setenv(testKey, "written"); err != nil {
		t.Fatalf("OSWriter.Setenv() error = %v", err)
	}

	if got := os.Getenv(testKey); got != "written" {
		t.Errorf("os.Getenv() = %v, want %v", got, "written")
	}

	if got := (&OSReader{}).Getenv(testKey); got != "written" {
		t.Errorf("OSReader.Getenv() = %v, want %v", got, "written")
	}

	if !slices.Contains((&OSReader{}).Environ(), testKey+"=written") {
		t.Errorf("OSReader.Environ() is missing %s=written", testKey)
	}
}

// TestInterfaceCompliance ensures the OS implementations satisfy the interfaces
func TestInterfaceCompliance(t *testing.T) {
	t.Parallel()
	var _ Reader = &OSReader{}
	var _ Writer = &OSWriter{}
}
