// Package errors provides standardized error handling for jp2mi.
// It defines the error kinds raised while reading UI selections, building codec
// invocations, loading configuration and launching the external codecs, plus
// helpers for creating, wrapping and classifying them.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// Selection error kinds
	NoSelection
	MissingField
	MalformedCodeblock
	// File error kinds
	FileNotFound
	InvalidPath
	UnsupportedFormat
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Launch error kinds
	LaunchFailed
	LaunchBusy
)

func (k ErrorKind) String() string {
	switch k {
	case NoSelection:
		return "no selection"
	case MissingField:
		return "missing field"
	case MalformedCodeblock:
		return "malformed codeblock"
	case FileNotFound:
		return "file not found"
	case InvalidPath:
		return "invalid path"
	case UnsupportedFormat:
		return "unsupported format"
	case InvalidConfig:
		return "invalid config"
	case ConfigNotFound:
		return "config not found"
	case LaunchFailed:
		return "launch failed"
	case LaunchBusy:
		return "launch busy"
	default:
		return "unknown"
	}
}

// Common error constants for frequently occurring errors
var (
	ErrInvalidConfig = NewConfigError("invalid configuration", "", InvalidConfig, nil)
	ErrLaunchBusy    = NewLaunchError("a codec run is already in progress", "", LaunchBusy, nil)
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// detailed renders "msg: detail[: err]", falling back to the base message
// when there is no detail.
func (e *ApplicationError) detailed(detail string) string {
	if detail == "" {
		return e.Error()
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.msg, detail, e.err)
	}
	return fmt.Sprintf("%s: %s", e.msg, detail)
}

// SelectionError is raised when a required group of mutually exclusive
// choices has nothing checked.
type SelectionError struct {
	ApplicationError
	group string
}

// NewSelectionError creates a new NoSelection error for the named group
func NewSelectionError(group string) *SelectionError {
	return &SelectionError{
		ApplicationError: ApplicationError{
			msg:  "no option selected",
			kind: NoSelection,
		},
		group: group,
	}
}

// Error returns the selection error message
func (e *SelectionError) Error() string {
	return e.detailed(e.group)
}

// Group returns the name of the choice group that had nothing checked
func (e *SelectionError) Group() string {
	return e.group
}

// FieldError is raised when a required path or numeric field is empty or
// cannot be parsed.
type FieldError struct {
	ApplicationError
	field string
	value string
}

// NewFieldError creates a new MissingField error
func NewFieldError(msg, field, value string, err error) *FieldError {
	return &FieldError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: MissingField,
		},
		field: field,
		value: value,
	}
}

// Error returns the field error message
func (e *FieldError) Error() string {
	if e.value != "" {
		return e.detailed(fmt.Sprintf("%s=%q", e.field, e.value))
	}
	return e.detailed(e.field)
}

// Field returns the name of the offending field
func (e *FieldError) Field() string {
	return e.field
}

// Value returns the rejected raw value, if any
func (e *FieldError) Value() string {
	return e.value
}

// CodeblockError is raised when a codeblock size is not of the form W*H with
// two positive integers.
type CodeblockError struct {
	ApplicationError
	value string
}

// NewCodeblockError creates a new MalformedCodeblock error
func NewCodeblockError(value string, err error) *CodeblockError {
	return &CodeblockError{
		ApplicationError: ApplicationError{
			msg:  "malformed codeblock size",
			err:  err,
			kind: MalformedCodeblock,
		},
		value: value,
	}
}

// Error returns the codeblock error message
func (e *CodeblockError) Error() string {
	return e.detailed(fmt.Sprintf("%q (want W*H)", e.value))
}

// Value returns the rejected codeblock string
func (e *CodeblockError) Value() string {
	return e.value
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	return e.detailed(e.path)
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	return e.detailed(e.param)
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// LaunchError represents a failure to start an external codec process
type LaunchError struct {
	ApplicationError
	executable string
}

// NewLaunchError creates a new launch error
func NewLaunchError(msg, executable string, kind ErrorKind, err error) *LaunchError {
	return &LaunchError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		executable: executable,
	}
}

// Error returns the launch error message
func (e *LaunchError) Error() string {
	return e.detailed(e.executable)
}

// Executable returns the executable that could not be started
func (e *LaunchError) Executable() string {
	return e.executable
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// KindOf returns the kind of the first application error in err's chain that
// carries a kind other than Unknown.
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := err.(interface{ Kind() ErrorKind }); ok && k.Kind() != Unknown {
			return k.Kind()
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// IsNoSelection checks if the error is a no-selection error
func IsNoSelection(err error) bool {
	var selErr *SelectionError
	return errors.As(err, &selErr)
}

// IsMissingField checks if the error is a missing or unparsable field error
func IsMissingField(err error) bool {
	var fieldErr *FieldError
	return errors.As(err, &fieldErr)
}

// IsMalformedCodeblock checks if the error is a malformed codeblock error
func IsMalformedCodeblock(err error) bool {
	var cbErr *CodeblockError
	return errors.As(err, &cbErr)
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileNotFound
	}
	return false
}

// IsUnsupportedFormat checks if the error reports a file that is not a
// readable image
func IsUnsupportedFormat(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == UnsupportedFormat
	}
	return false
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// IsConfigNotFound checks if the error reports a missing configuration file
func IsConfigNotFound(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == ConfigNotFound
	}
	return false
}

// IsLaunchBusy checks if the error reports an already running codec
func IsLaunchBusy(err error) bool {
	var launchErr *LaunchError
	if errors.As(err, &launchErr) {
		return launchErr.Kind() == LaunchBusy
	}
	return false
}
