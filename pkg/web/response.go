// Package web defines common components for a web application.
package web

import (
	"github.com/go-petr/pet-roulette/pkg/errorspkg"
)

// Response holds the common response envelope for all APIs.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK wraps data into a successful envelope.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Error wraps a given err into a failed envelope with a client-safe message.
func Error(err error) Response {
	return Response{Error: errorspkg.PublicMessage(err)}
}

// ErrorMsg returns a failed envelope with the given message.
func ErrorMsg(msg string) Response {
	return Response{Error: msg}
}
