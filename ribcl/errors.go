/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ribcl

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Fetch errors collapse into a small set of sentinels so callers can
// route on the failure class without string matching. Wrapped detail is
// preserved for logs.
var (
	ErrUnreachable        = errors.New("controller unreachable")
	ErrAuthFailed         = errors.New("controller authentication failed")
	ErrTLS                = errors.New("tls negotiation failed")
	ErrTimeout            = errors.New("controller request timed out")
	ErrMalformedResponse  = errors.New("malformed controller response")
	ErrUnsupportedRequest = errors.New("request not supported by controller")
)

// ClassifyError maps a transport error from the http client onto the
// sentinel taxonomy. Errors that already carry a sentinel pass through.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		ErrUnreachable, ErrAuthFailed, ErrTLS, ErrTimeout,
		ErrMalformedResponse, ErrUnsupportedRequest,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errorClass(ErrTimeout, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return errorClass(ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errorClass(ErrTimeout, err)
	}

	var (
		certVerify  *tls.CertificateVerificationError
		recordErr   tls.RecordHeaderError
		unknownAuth x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		certInvalid x509.CertificateInvalidError
	)
	if errors.As(err, &certVerify) || errors.As(err, &recordErr) ||
		errors.As(err, &unknownAuth) || errors.As(err, &hostnameErr) ||
		errors.As(err, &certInvalid) {
		return errorClass(ErrTLS, err)
	}

	return errorClass(ErrUnreachable, err)
}

// classifyStatus maps a non-zero RIBCL RESPONSE status onto the
// taxonomy. The firmware reports most conditions through the MESSAGE
// attribute rather than distinct status codes, so the message text is
// part of the contract here.
func classifyStatus(status, message string) error {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "login failed") ||
		strings.Contains(msg, "login credentials") ||
		strings.EqualFold(status, "0x005f"):
		return errorStatus(ErrAuthFailed, status, message)
	case strings.Contains(msg, "syntax error") ||
		strings.Contains(msg, "not supported") ||
		strings.Contains(msg, "unrecognized"):
		return errorStatus(ErrUnsupportedRequest, status, message)
	default:
		return errorStatus(ErrMalformedResponse, status, message)
	}
}

func errorClass(sentinel, cause error) error {
	return fmt.Errorf("%w: %v", sentinel, cause)
}

func errorStatus(sentinel error, status, message string) error {
	return fmt.Errorf("%w: status %s - %s", sentinel, status, message)
}
