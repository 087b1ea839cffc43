package canopy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is reported when no ancestor exposes a required capability.
	ErrNotFound = errors.New("no ancestor provides capability")
	// ErrUninitialized is reported for a declared capability that holds no source.
	ErrUninitialized = errors.New("capability not initialized")
	// ErrReentrantBuild is reported when a node's capability list is requested
	// while it is being built.
	ErrReentrantBuild = errors.New("capability build re-entered")
	// ErrUnknownAccessor is reported for an access path segment the type does not declare.
	ErrUnknownAccessor = errors.New("unknown accessor")
	// ErrUnknownType is reported for a type override naming an unregistered type.
	ErrUnknownType = errors.New("unknown type")
	// ErrTypeMismatch is reported when a resolved type cannot be delivered to a receiver.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnknownReceiver is reported for a configuration record naming no receiver.
	ErrUnknownReceiver = errors.New("unknown receiver")
	// ErrMalformedConfig is returned for structurally invalid binding configuration.
	ErrMalformedConfig = errors.New("malformed binding configuration")
	// ErrInvalidTransition is returned for a lifecycle call not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
)

// ErrorKind classifies the non-fatal conditions the engine reports.
type ErrorKind string

const (
	// KindResolutionFailure means no ancestor exposes the required capability type.
	KindResolutionFailure ErrorKind = "resolution_failure"
	// KindUninitializedCapability means a declared capability was never assigned.
	KindUninitializedCapability ErrorKind = "uninitialized_capability"
	// KindReentrantBuild means a capability registry build re-entered itself.
	KindReentrantBuild ErrorKind = "reentrant_build"
	// KindBindingConstruction means a receiver could not be wired to its declared source.
	KindBindingConstruction ErrorKind = "binding_construction"
)

// BindError describes a binding problem. The affected binding or capability is
// skipped and the node keeps running without it.
type BindError struct {
	Kind     ErrorKind
	NodeType string
	Node     any
	Member   string
	Path     string
	Cause    error
}

func (e *BindError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if e.NodeType != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.NodeType)
	}
	if e.Member != "" {
		sb.WriteString(".")
		sb.WriteString(e.Member)
	}
	if e.Path != "" {
		fmt.Fprintf(&sb, " (path %q)", e.Path)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *BindError) Unwrap() error {
	return e.Cause
}

func newBindError(kind ErrorKind, spec *TypeSpec, member string, cause error) *BindError {
	err := &BindError{
		Kind:   kind,
		Member: member,
		Cause:  cause,
	}
	if spec != nil {
		err.NodeType = spec.Name()
	}
	return err
}

// CleanupError describes a cleanup function that failed during Destroy.
type CleanupError struct {
	Node any
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleanup of %T failed: %v", e.Node, e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}
