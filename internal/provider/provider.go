package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
)

const (
	CodeInputInvalid     = "INPUT_INVALID"
	CodeGenerationFailed = "GENERATION_FAILED"
	CodeVideoFailed      = "VIDEO_GENERATION_FAILED"
	CodeEntitlement      = "ENTITLEMENT_REQUIRED"
	CodeVideoTimeout     = "VIDEO_TIMEOUT"
	CodeMediaAccess      = "MEDIA_ACCESS_DENIED"
	CodeSpeechFailed     = "SPEECH_FAILED"
	CodeCanceled         = "CANCELED"
)

// EntitlementFragment is what the generation service puts in the message when
// the selected key is not attached to a billed project.
const EntitlementFragment = "Requested entity was not found"

type Error struct {
	Category        string
	Code            string
	Retryable       bool
	UserMessage     string
	InternalMessage string
	Err             error
}

func (e *Error) Error() string {
	if e.InternalMessage != "" {
		return e.Code + ": " + e.InternalMessage
	}
	return e.Code + ": " + e.UserMessage
}

func (e *Error) Unwrap() error { return e.Err }

func newError(category, code, userMsg string, retryable bool, cause error) *Error {
	e := &Error{
		Category:    category,
		Code:        code,
		Retryable:   retryable,
		UserMessage: userMsg,
		Err:         cause,
	}
	if cause != nil {
		e.InternalMessage = cause.Error()
	}
	return e
}

func InputInvalid(msg string) *Error {
	return &Error{Category: "input", Code: CodeInputInvalid, UserMessage: msg, InternalMessage: msg}
}

func GenerationFailure(cause error) *Error {
	return newError("upstream", CodeGenerationFailed,
		"SoulSound could not reach the creative engine. Check your connection.", true, cause)
}

func VideoGenerationFailure(cause error) *Error {
	return newError("upstream", CodeVideoFailed, "Video generation failed. The spirits are tired.", true, cause)
}

func EntitlementError(cause error) *Error {
	return newError("entitlement", CodeEntitlement,
		"Billing project error. Please select a valid paid API key.", true, cause)
}

func TimeoutError(cause error) *Error {
	return newError("network", CodeVideoTimeout, "Video generation took too long. Please try again.", true, cause)
}

func MediaAccessError(cause error) *Error {
	return newError("device", CodeMediaAccess, "Studio needs camera access. Please check your settings.", false, cause)
}

func SpeechFailure(cause error) *Error {
	return newError("upstream", CodeSpeechFailed, "Narration could not be generated.", true, cause)
}

func Canceled(cause error) *Error {
	return newError("canceled", CodeCanceled, "Request canceled", false, cause)
}

// CodeOf returns the taxonomy code carried by err, or "" for foreign errors.
func CodeOf(err error) string {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Code
	}
	return ""
}

func IsEntitlementMessage(err error) bool {
	return err != nil && strings.Contains(err.Error(), EntitlementFragment)
}

// Schema is the SDK-neutral response schema handed to TextModel. It mirrors
// the OpenAPI subset the generation service understands.
type Schema struct {
	Type       SchemaType
	Properties map[string]*Schema
	Items      *Schema
	Required   []string
}

type SchemaType string

const (
	TypeObject SchemaType = "OBJECT"
	TypeArray  SchemaType = "ARRAY"
	TypeString SchemaType = "STRING"
)

type JSONRequest struct {
	Model             string
	SystemInstruction string
	Prompt            string
	Schema            *Schema
}

type TextModel interface {
	GenerateJSON(ctx context.Context, req JSONRequest) (string, error)
}

type VideoRequest struct {
	Model          string
	Prompt         string
	NumberOfVideos int
	Resolution     string
	AspectRatio    string
}

// Operation is a handle to a long-running video synthesis job. A finished
// operation carries either a fetchable URI or the inline bytes.
type Operation struct {
	Name   string
	Done   bool
	URI    string
	Inline []byte
	Err    error
	Handle any
}

type VideoModel interface {
	StartVideo(ctx context.Context, req VideoRequest) (Operation, error)
	PollVideo(ctx context.Context, op Operation) (Operation, error)
	// Fetch downloads the finished resource, appending the access credential.
	Fetch(ctx context.Context, uri string) (io.ReadCloser, string, error)
}

type SpeechRequest struct {
	Model string
	Text  string
	Voice string
}

type SpeechModel interface {
	// Synthesize returns raw 16-bit little-endian mono PCM.
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)
}

func waitCancelable(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func appendKey(uri, key string) string {
	if key == "" {
		return uri
	}
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%skey=%s", uri, sep, url.QueryEscape(key))
}
