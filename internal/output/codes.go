// Package output provides JSON/YAML output formatting and error handling.
package output

// Exit codes for the CLI process.
const (
	ExitOK        = 0 // Success
	ExitUsage     = 1 // Invalid arguments or flags
	ExitNotFound  = 2 // Resource not found
	ExitAuth      = 3 // Not authenticated or authorization failed
	ExitForbidden = 4 // Access denied
	ExitRateLimit = 5 // Rate limited (429)
	ExitNetwork   = 6 // Connection/DNS/timeout error
	ExitAPI       = 7 // Server returned error
)

// Error codes for the JSON envelope.
const (
	CodeUsage         = "usage"
	CodeNotFound      = "not_found"
	CodeAuth          = "auth_required"
	CodeAuthDenied    = "auth_denied"
	CodeStateMismatch = "state_mismatch"
	CodeTokenExchange = "token_exchange"
	CodeForbidden     = "forbidden"
	CodeRateLimit     = "rate_limit"
	CodeNetwork       = "network"
	CodeAPI           = "api_error"
)

// ExitCodeFor returns the exit code for a given error code.
func ExitCodeFor(code string) int {
	switch code {
	case CodeUsage:
		return ExitUsage
	case CodeNotFound:
		return ExitNotFound
	case CodeAuth, CodeAuthDenied, CodeStateMismatch, CodeTokenExchange:
		return ExitAuth
	case CodeForbidden:
		return ExitForbidden
	case CodeRateLimit:
		return ExitRateLimit
	case CodeNetwork:
		return ExitNetwork
	case CodeAPI:
		return ExitAPI
	default:
		return ExitAPI
	}
}
