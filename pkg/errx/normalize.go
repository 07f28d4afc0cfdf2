package errx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	DefaultSource      = "OAuthAPI"
	DefaultDescription = "error communicating with the identity provider"

	upstreamPrefix   = "identity provider: "
	maxPlainTextBody = 200
)

// Envelope is the single error shape every failing route responds with.
type Envelope struct {
	Code        string `json:"error_code"`
	Description string `json:"error_description"`
	Source      string `json:"error_source"`
	Stack       []any  `json:"error_stack"`
}

// Normalizer turns any error into a status and an Envelope.
type Normalizer struct {
	// Source is reported as error_source (default: OAuthAPI)
	Source string

	// Debug adds stack frames and upstream request/response detail to
	// error_stack.
	Debug bool
}

// Normalize classifies err and builds the envelope. A nil error is treated
// as unexpected so the caller always gets something well formed.
func (n Normalizer) Normalize(err error) (int, Envelope) {
	if err == nil {
		err = errors.New("nil error normalized")
	}
	e := Unexpected(err)

	source := n.Source
	if source == "" {
		source = DefaultSource
	}

	var (
		status int
		code   string
		desc   string
	)

	if e.Kind == KindUpstream && e.Upstream != nil {
		status = e.Upstream.Status
		if status == 0 || status < 400 {
			status = http.StatusInternalServerError
		}
		code = "KC-" + strconv.Itoa(status)
		desc = upstreamDescription(e, status)
	} else {
		status = e.Kind.Status()
		code = "OA-" + strconv.Itoa(status)
		desc = localDescription(e)
	}

	env := Envelope{
		Code:        code,
		Description: desc,
		Source:      source,
		Stack:       []any{},
	}
	if n.Debug {
		env.Stack = debugStack(e)
	}
	return status, env
}

func localDescription(e *Error) string {
	if e.Kind != KindUnexpected && e.Description != "" {
		return e.Description
	}
	switch e.Kind {
	case KindValidation:
		return "invalid request"
	case KindUnauthenticated:
		return "missing or malformed bearer token"
	case KindForbidden:
		return "access denied"
	case KindIncompleteData:
		return "identity provider returned an incomplete record"
	default:
		return "internal server error"
	}
}

func upstreamDescription(e *Error, status int) string {
	if msg, ok := e.policy.Override(status); ok {
		return msg
	}
	if e.Description != "" {
		return e.Description
	}
	if msg := BodyDescription(e.Upstream.Body); msg != "" {
		return upstreamPrefix + msg
	}
	if e.policy != nil && e.policy.Fallback != "" {
		return e.policy.Fallback
	}
	return DefaultDescription
}

// BodyDescription pulls a human readable message out of an identity provider
// error body. JSON bodies are searched for error_description, errorMessage
// and error in that order; anything else is used as plain text.
func BodyDescription(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
		for _, key := range []string{"error_description", "errorMessage", "error"} {
			if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	}
	if json.Valid([]byte(trimmed)) || strings.HasPrefix(trimmed, "<") {
		return ""
	}
	if utf8.RuneCountInString(trimmed) > maxPlainTextBody {
		trimmed = string([]rune(trimmed)[:maxPlainTextBody])
	}
	return trimmed
}

func debugStack(e *Error) []any {
	stack := []any{e.Error()}
	for _, f := range e.StackTrace() {
		stack = append(stack, fmt.Sprintf("%n (%s:%d)", f, f, f))
	}
	if u := e.Upstream; u != nil {
		stack = append(stack, map[string]any{
			"upstream_request_method": u.Method,
			"upstream_request_url":    u.URL,
		})
		if u.Status != 0 {
			stack = append(stack, map[string]any{
				"upstream_response_status": u.Status,
				"upstream_response_body":   string(u.Body),
			})
		}
	}
	return stack
}
