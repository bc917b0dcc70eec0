// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package httpclient issues single HTTP requests under a hard deadline.

A Client makes exactly one attempt per call. Retrying is left to the retry
package so the two concerns stay separate.

# Basic Usage

	client := httpclient.New(ctx, httpclient.WithTimeout(10*time.Second))
	resp, err := client.Do(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    "https://api.cloudsmith.io/openid/acme/",
		Body:   map[string]string{"oidc_token": idToken, "service_slug": "ci"},
	})

# Responses

Bodies with a JSON content type (application/json or any +json type) are
decoded into an any value; everything else is returned as text. A status
outside 200-299 returns both the response and an error wrapping
httperr.ErrUnexpectedStatus that carries it, so the caller can log status,
headers and body without another request.

# Deadlines

The deadline covers connecting, sending, and reading the whole body. When it
expires the connection is closed and Do returns an *httperr.TimeoutError.
*/
package httpclient
