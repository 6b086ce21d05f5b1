package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/Sternrassler/lostnfound-cloud-client/pkg/response"
)

// requestErrors are the messages net/http uses when it rejects a request
// before any I/O happens. They are unexported there, so match on text.
var requestErrors = []string{
	"unsupported protocol scheme",
	"no Host in request URL",
	"nil Request.URL",
	"nil Request.Header",
	"invalid header field",
	"invalid method",
}

// classifyError maps a failed call or body read to an outcome.
// Every failure of the round trip itself is a network error, including TLS
// verification, malformed replies and redirect loops. Requests net/http
// refuses to send, such as an unsupported URL scheme, are client errors.
func (c *Client) classifyError(err error) response.Outcome {
	outcome := classifyTransportError(err)
	c.logger.Debug().Str("outcome", string(outcome)).Msg("Error classified")
	return outcome
}

func classifyTransportError(err error) response.Outcome {
	if err == nil {
		return response.OtherClientError
	}

	// http.Client.Do wraps every round trip failure in *url.Error.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if isRequestError(urlErr.Err) {
			return response.OtherClientError
		}
		return response.NetworkError
	}

	if isIOError(err) {
		return response.NetworkError
	}
	return response.OtherClientError
}

func isRequestError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, s := range requestErrors {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// isIOError reports failures seen while reading a response body.
func isIOError(err error) bool {
	var (
		netErr       net.Error
		verifyErr    *tls.CertificateVerificationError
		recordErr    tls.RecordHeaderError
		alertErr     tls.AlertError
		authorityErr x509.UnknownAuthorityError
		hostErr      x509.HostnameError
		invalidErr   x509.CertificateInvalidError
	)
	return errors.As(err, &netErr) ||
		errors.As(err, &verifyErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &alertErr) ||
		errors.As(err, &authorityErr) ||
		errors.As(err, &hostErr) ||
		errors.As(err, &invalidErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}
