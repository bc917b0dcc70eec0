// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package env provides an interface-based abstraction for environment variable
access, enabling dependency injection and testing isolation.

# Basic Usage

Use OSReader to read environment variables via the standard os package:

	reader := &env.OSReader{}
	value := reader.Getenv("ACTIONS_ID_TOKEN_REQUEST_URL")

Use OSWriter to export a variable to the current process and its children:

	writer := &env.OSWriter{}
	err := writer.Setenv("CLOUDSMITH_API_KEY", key)

# Testing

The Reader and Writer interfaces allow injecting mocks in tests to avoid
relying on real environment variables. Generated mocks are available in the
mocks sub-package:

	ctrl := gomock.NewController(t)
	mock := mocks.NewMockReader(ctrl)
	mock.EXPECT().Getenv("GITHUB_ENV").Return("/tmp/env")

	result := myFunc(mock)
*/
package env
