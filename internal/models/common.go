package models

// APIResponse is the envelope of every server response. Message is set on errors.
type APIResponse[T any] struct {
	Result  T      `json:"result"`
	Message string `json:"message,omitempty"`
}
