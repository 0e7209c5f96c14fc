package tools

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/photogeo/pkg/geo"
)

// APIError is a tool-level failure with information to help the caller
// recover.
type APIError struct {
	Code        string // Machine-readable code, e.g. "INVALID_COORDINATES"
	Message     string // Error message
	Recoverable bool   // Whether correcting the request can succeed
	Guidance    string // Guidance for users on how to recover
}

// Error implements the error interface and provides a formatted error message.
func (e *APIError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s: %s. %s", e.Code, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes.
const (
	CodeInvalidCoordinates = "INVALID_COORDINATES"
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeInvalidPhotos      = "INVALID_PHOTOS"
	CodeTooManyPoints      = "TOO_MANY_POINTS"
	CodeInternal           = "INTERNAL_ERROR"
)

// Common error guidance messages
const (
	GuidanceCoordinates = "Latitude must be between -90 and 90 and longitude between -180 and 180, in decimal degrees."
	GuidancePhotos      = "Pass photos as an array of objects with id, latitude and longitude."
	GuidanceUnit        = "Use \"km\" or \"miles\"."
	GuidanceTooMany     = "Split the request into smaller batches."
	GuidanceGeneral     = "Please correct the parameters and try again."
	GuidanceInternal    = "The request was valid but the server could not complete it. Retrying will not help; report the input that caused it."
)

// NewValidationError returns a recoverable error for a bad request.
func NewValidationError(code, message, guidance string) *APIError {
	if guidance == "" {
		guidance = GuidanceGeneral
	}
	return &APIError{
		Code:        code,
		Message:     message,
		Recoverable: true,
		Guidance:    guidance,
	}
}

// NewInternalError returns a non-recoverable error for a failure that is
// not the caller's fault.
func NewInternalError(message string) *APIError {
	return &APIError{
		Code:     CodeInternal,
		Message:  message,
		Guidance: GuidanceInternal,
	}
}

// PhotosError maps a decodePhotos failure to an APIError.
func PhotosError(err error) *APIError {
	if errors.Is(err, ErrTooManyPhotos) {
		return NewValidationError(CodeTooManyPoints, err.Error(), GuidanceTooMany)
	}
	return NewValidationError(CodeInvalidPhotos, err.Error(), GuidancePhotos)
}

// CoordinateValidationError wraps a geo.CoordinateError (or any other
// validation failure) for the named argument.
func CoordinateValidationError(arg string, err error) *APIError {
	var ce *geo.CoordinateError
	if errors.As(err, &ce) {
		return NewValidationError(CodeInvalidCoordinates, fmt.Sprintf("%s: %v", arg, ce), GuidanceCoordinates)
	}
	return NewValidationError(CodeInvalidArgument, fmt.Sprintf("%s: %v", arg, err), "")
}

// ErrorWithGuidance returns a properly formatted error response with user guidance.
func ErrorWithGuidance(err *APIError) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s\n\nGuidance: %s", err.Message, err.Guidance)
	return mcp.NewToolResultError(errorText)
}
