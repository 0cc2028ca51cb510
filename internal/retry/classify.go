// Package retry classifies failures and wraps fallible operations with
// bounded exponential-backoff retry.
package retry

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies the failure category of a classified error.
type Kind string

const (
	KindNetwork       Kind = "network"
	KindAuth          Kind = "auth"
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "notFound"
	KindRateLimited   Kind = "rateLimited"
	KindServer        Kind = "server"
	KindClient        Kind = "client"
	KindUnknown       Kind = "unknown"
	KindSlugCollision Kind = "slugCollision"
)

// Descriptor describes a classified failure: what happened, whether retrying
// may help, and what a UI layer should show or do about it.
type Descriptor struct {
	Kind         Kind   `json:"kind"`
	Retryable    bool   `json:"retryable"`
	RedirectHint string `json:"redirect_hint,omitempty"`
	StatusCode   int    `json:"status_code,omitempty"`
	UserMessage  string `json:"user_message"`
}

var statusCodePattern = regexp.MustCompile(`\b(\d{3})\b`)

// Classify maps an arbitrary failure to a Descriptor by matching the error
// text against known indicators, first match wins. Substring checks are
// case-sensitive on purpose: they mirror the messages the upstream source
// actually emits. context, when non-empty, names the thing being validated
// and is folded into validation messages. Classify never fails; anything
// unrecognized is a retryable unknown.
func Classify(err error, context string) Descriptor {
	if err == nil {
		return Descriptor{Kind: KindUnknown, Retryable: true, UserMessage: "Something went wrong. Please try again."}
	}
	msg := err.Error()

	switch {
	case containsAny(msg, "fetch", "Network", "ERR_NETWORK"):
		return Descriptor{
			Kind:        KindNetwork,
			Retryable:   true,
			UserMessage: "Network error. Please check your connection and try again.",
		}
	case containsAny(msg, "401", "Unauthorized", "Session expired"):
		return Descriptor{
			Kind:         KindAuth,
			Retryable:    false,
			RedirectHint: "/login",
			StatusCode:   401,
			UserMessage:  "Your session has expired. Please sign in again.",
		}
	case containsAny(msg, "400", "Bad Request", "Invalid", "validation"):
		userMsg := "The request was invalid. Please check your input and try again."
		if context != "" {
			userMsg = fmt.Sprintf("Invalid %s. Please check your input and try again.", context)
		}
		return Descriptor{
			Kind:        KindValidation,
			Retryable:   false,
			StatusCode:  400,
			UserMessage: userMsg,
		}
	case containsAny(msg, "404", "Not Found", "not found"):
		return Descriptor{
			Kind:        KindNotFound,
			Retryable:   false,
			StatusCode:  404,
			UserMessage: "The requested resource was not found.",
		}
	case containsAny(msg, "429", "Too Many Requests"):
		return Descriptor{
			Kind:        KindRateLimited,
			Retryable:   true,
			StatusCode:  429,
			UserMessage: "Too many requests. Please wait a moment and try again.",
		}
	case containsAny(msg, "500", "502", "503", "504",
		"Internal Server Error", "Bad Gateway", "Service Unavailable", "Gateway Timeout"):
		return Descriptor{
			Kind:        KindServer,
			Retryable:   true,
			StatusCode:  parseStatusCode(msg),
			UserMessage: "The server encountered an error. Please try again later.",
		}
	case containsAny(msg, "timeout", "Timeout"):
		return Descriptor{
			Kind:        KindNetwork,
			Retryable:   true,
			UserMessage: "The request timed out. Please try again.",
		}
	case containsAny(msg, "ChunkLoadError", "Loading chunk"):
		return Descriptor{
			Kind:        KindClient,
			Retryable:   true,
			UserMessage: "Failed to load part of the application. Please reload.",
		}
	default:
		return Descriptor{
			Kind:        KindUnknown,
			Retryable:   true,
			UserMessage: "Something went wrong. Please try again.",
		}
	}
}

// ShouldRetry reports whether re-attempting the failed operation may succeed.
// An error already carrying a Descriptor keeps its classification; anything
// else is classified from its text. Auth and validation failures never
// retry, even if a Descriptor were to mark them retryable.
func ShouldRetry(err error) bool {
	d := Describe(err)
	if d.Kind == KindAuth || d.Kind == KindValidation {
		return false
	}
	return d.Retryable
}

func containsAny(msg string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// parseStatusCode pulls the first 3-digit number out of a server error
// message, defaulting to 500.
func parseStatusCode(msg string) int {
	m := statusCodePattern.FindString(msg)
	if m == "" {
		return 500
	}
	code, err := strconv.Atoi(m)
	if err != nil {
		return 500
	}
	return code
}
