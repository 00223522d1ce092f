package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// FieldError mirrors one entry of a 422 response's data list.
type FieldError struct {
	Param string `json:"param"`
	Value string `json:"value,omitempty"`
	Msg   string `json:"msg"`
}

// APIError is a non-2xx response decoded from the server's {message, data} body.
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match any 401.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}
