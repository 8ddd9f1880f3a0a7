// Package businessflow contains the business logic for the analytics service.
package businessflow

import (
	"errors"
	"fmt"
	"strings"
)

// Business flow error constants
var (
	ErrShortCodeRequired   = errors.New("short code is required")
	ErrOriginalURLRequired = errors.New("original URL is required")
)

// IsValidationError reports whether err is a required-field failure on the
// ingestion payload. Handlers translate these into a 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrShortCodeRequired) || errors.Is(err, ErrOriginalURLRequired)
}

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ClientMetadata holds the transport-level context of an ingestion request.
// ForwardedFor is the parsed X-Forwarded-For chain, RemoteAddr the peer
// address seen by the server.
type ClientMetadata struct {
	ForwardedFor []string `json:"forwarded_for,omitempty"`
	RemoteAddr   string   `json:"remote_addr,omitempty"`
	UserAgent    string   `json:"user_agent,omitempty"`
	Referer      string   `json:"referer,omitempty"`
	RequestID    string   `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(remoteAddr, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		RemoteAddr: remoteAddr,
		UserAgent:  userAgent,
	}
}

// SetForwardedFor parses a raw X-Forwarded-For header into its hops
func (cm *ClientMetadata) SetForwardedFor(header string) {
	cm.ForwardedFor = cm.ForwardedFor[:0]
	for _, hop := range strings.Split(header, ",") {
		if trimmed := strings.TrimSpace(hop); trimmed != "" {
			cm.ForwardedFor = append(cm.ForwardedFor, trimmed)
		}
	}
}

// ClientIP resolves the best-known client address: the first forwarded hop
// when present, otherwise the transport peer, otherwise nil.
func (cm *ClientMetadata) ClientIP() *string {
	if len(cm.ForwardedFor) > 0 {
		return &cm.ForwardedFor[0]
	}
	if cm.RemoteAddr != "" {
		return &cm.RemoteAddr
	}
	return nil
}
