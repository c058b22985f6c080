package types

const ContextUserKey = "user"

// Machine readable error codes returned next to the human readable reason.
const (
	CodeInvalidRequest     = "invalid_request"
	CodeDuplicateUsername  = "duplicate_username"
	CodeInvalidCredentials = "invalid_credentials"
	CodeMissingToken       = "missing_token"
	CodeInvalidToken       = "invalid_token"
	CodeInvalidPayload     = "invalid_token_payload"
	CodeTokenExpired       = "token_expired"
	CodeUserNotFound       = "user_not_found"
	CodeNotFound           = "not_found"
	CodeStoreUnavailable   = "store_unavailable"
	CodeInternal           = "internal_error"
)
