package handlers

// Common error message constants shared across handlers
const (
	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgUnauthorized       = "Unauthorized"
	ErrMsgInternal           = "Internal server error"
	ErrMsgInvalidStatus      = "Invalid status filter"
)

// API path constants
const (
	APIBasePath = "/api/v1"
)
