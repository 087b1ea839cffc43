package canopy

import "context"

// Extension provides hooks into the engine
type Extension interface {
	// Name returns the extension's name
	Name() string

	// Order determines extension execution order (lower = earlier)
	Order() int

	// Init is called when the extension is registered to an engine
	Init(engine *Engine) error

	// Wrap intercepts lifecycle operations (create, enable, disable, destroy)
	Wrap(ctx context.Context, next func() error, op *Operation) error

	// OnBindError observes non-fatal binding problems after they are logged
	OnBindError(err *BindError, engine *Engine)

	// OnCleanupError handles cleanup failures
	// Returns true if the error was handled, false to use default behavior
	OnCleanupError(err *CleanupError) bool

	// Dispose is called when the engine is disposed
	Dispose(engine *Engine) error
}

// BaseExtension provides default implementations for Extension methods
type BaseExtension struct {
	name string
}

// NewBaseExtension creates a new base extension with the given name
func NewBaseExtension(name string) BaseExtension {
	return BaseExtension{name: name}
}

func (e *BaseExtension) Name() string {
	return e.name
}

func (e *BaseExtension) Order() int {
	return 100
}

func (e *BaseExtension) Init(engine *Engine) error {
	return nil
}

func (e *BaseExtension) Wrap(ctx context.Context, next func() error, op *Operation) error {
	return next()
}

func (e *BaseExtension) OnBindError(err *BindError, engine *Engine) {
}

func (e *BaseExtension) OnCleanupError(err *CleanupError) bool {
	return false
}

func (e *BaseExtension) Dispose(engine *Engine) error {
	return nil
}

// Operation describes what operation is happening
type Operation struct {
	Kind OperationKind
	Node any
	// From is the controller state before the operation.
	From State
	// To is the target state. When a nested operation moved the node elsewhere
	// before this one finished, To holds the state the node ended in.
	To State
}

// OperationKind represents the type of operation
type OperationKind string

const (
	// OpCreate materializes capabilities and binds receivers
	OpCreate OperationKind = "create"
	// OpEnable starts delivery to receivers
	OpEnable OperationKind = "enable"
	// OpDisable buffers deliveries
	OpDisable OperationKind = "disable"
	// OpDestroy disposes bindings
	OpDestroy OperationKind = "destroy"
)
