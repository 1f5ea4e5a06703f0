package model

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories from §7: lexical,
// index, resolution, emission or storage failures. Callers branch on
// Kind via errors.As instead of matching strings.
type Kind int

const (
	KindMalformedInclude Kind = iota
	KindUnterminatedLiteral
	KindMultilineLiteral
	KindMalformedImport
	KindUnknownDirective
	KindDuplicateProvide
	KindDuplicateImplement
	KindMissingModule
	KindCyclicDependency
	KindCyclicImports
	KindCacheCorrupt
	KindFileMissing
)

func (k Kind) String() string {
	switch k {
	case KindMalformedInclude:
		return "MalformedInclude"
	case KindUnterminatedLiteral:
		return "UnterminatedLiteral"
	case KindMultilineLiteral:
		return "MultilineLiteral"
	case KindMalformedImport:
		return "MalformedImport"
	case KindUnknownDirective:
		return "UnknownDirective"
	case KindDuplicateProvide:
		return "DuplicateProvide"
	case KindDuplicateImplement:
		return "DuplicateImplement"
	case KindMissingModule:
		return "MissingModule"
	case KindCyclicDependency:
		return "CyclicDependency"
	case KindCyclicImports:
		return "CyclicImports"
	case KindCacheCorrupt:
		return "CacheCorrupt"
	case KindFileMissing:
		return "FileMissing"
	default:
		return "Unknown"
	}
}

// Error is the pipeline's single error type. File is folded into the
// message as the call stack unwinds, matching the "re-raise after
// context" behavior of the original tool's exception-driven control
// flow (§9), expressed here as plain wrapped errors.
type Error struct {
	Kind    Kind
	File    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind with a formatted message.
func New(kind Kind, file, format string, args ...any) *Error {
	return &Error{Kind: kind, File: file, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind wrapping an underlying
// error, preserving it for errors.Is/errors.As.
func Wrap(kind Kind, file string, err error) *Error {
	return &Error{Kind: kind, File: file, Message: err.Error(), Err: err}
}

// Is reports whether err (or anything it wraps) is a pipeline *Error
// of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
