package dto

// ErrorResponse standard error envelope for the HTTP layer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
