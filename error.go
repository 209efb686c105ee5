// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArguments is returned for caller-side misuse, such as
	// selecting a non-absolute path or signing without a security
	// environment.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrBufferTooSmall is returned when an encoded structure does not
	// fit the fixed-size buffer the card protocol allots for it.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrWrongLength is returned when card data has trailing or missing
	// bytes.
	ErrWrongLength = errors.New("wrong length")

	// ErrNoCardSupport is returned when card data uses an encoding this
	// driver cannot represent.
	ErrNoCardSupport = errors.New("not supported by card")

	// ErrUnknownData is returned when the card answers with a malformed
	// envelope.
	ErrUnknownData = errors.New("unknown data received")

	// ErrCardCommandFailed is returned when a command succeeded on the
	// wire but the reply is inconsistent.
	ErrCardCommandFailed = errors.New("card command failed")

	// ErrNotSupported is returned for operations the card firmware does
	// not offer.
	ErrNotSupported = errors.New("not supported")

	// ErrIncorrectParameters is returned when a PIN reference already
	// carries the backtrack bit.
	ErrIncorrectParameters = errors.New("incorrect parameters")

	// ErrNotFound is returned when the requested file on the smart card
	// is not found.
	ErrNotFound = errors.New("file or object not found")

	// ErrUnknownCard is returned when the ATR matches no known CardOS v5
	// variant.
	ErrUnknownCard = errors.New("unknown card")
)

// AuthError is an error indicating an authentication error occurred
// (wrong PIN or blocked).
type AuthError struct {
	// Retries is the number of retries remaining if this error resulted
	// from a retry-able authentication attempt. If the authentication
	// method is blocked or does not support retries, this will be 0.
	Retries int
}

func (v AuthError) Error() string {
	r := "retries"
	if v.Retries == 1 {
		r = "retry"
	}
	return fmt.Sprintf("verification failed (%d %s remaining)", v.Retries, r)
}
