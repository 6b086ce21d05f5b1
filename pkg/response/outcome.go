// Package response decodes cloud server replies and classifies their outcome.
package response

// Outcome is the closed classification of how a request attempt concluded.
type Outcome string

const (
	// OK means the server reported success (code 0).
	OK Outcome = "ok"

	// AuthError means the server rejected the credentials (code 5).
	AuthError Outcome = "auth_error"

	// AccessError means the credentials lack permission (code 6).
	AccessError Outcome = "access_error"

	// NetworkError means the request failed at the transport level.
	NetworkError Outcome = "network_error"

	// OtherClientError means the request or reply could not be handled locally.
	OtherClientError Outcome = "other_client_error"

	// OtherServerError means the server reported any other code.
	OtherServerError Outcome = "other_server_error"
)

// Server-reported codes with a dedicated outcome.
const (
	CodeOK          = 0
	CodeAuthError   = 5
	CodeAccessError = 6
)

// Outcomes lists every outcome.
var Outcomes = []Outcome{OK, AuthError, AccessError, NetworkError, OtherClientError, OtherServerError}

// Classify maps a server-reported code to an outcome.
// Transport outcomes are never produced here.
func Classify(code int) Outcome {
	switch code {
	case CodeOK:
		return OK
	case CodeAuthError:
		return AuthError
	case CodeAccessError:
		return AccessError
	default:
		return OtherServerError
	}
}

// Local reports whether the outcome was produced without reading a server code.
func (o Outcome) Local() bool {
	return o == NetworkError || o == OtherClientError
}
