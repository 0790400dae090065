// Package guard provides a constructor guard for value objects and commands.
// Embedding a ConstructorGuard lets a type detect whether it was created
// through its designated constructor or left as a zero value, so that
// validation can reject improperly constructed instances.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific
// validation error is supplied for an unconstructed object.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks an object as having passed through its constructor.
// The zero value is "not constructed" and fails validation.
//
// Example:
//
//	type CreateBlastCommand struct {
//	    loadID kernel.UUID
//	    guard  guard.ConstructorGuard
//	}
//
//	func NewCreateBlastCommand(loadID kernel.UUID) (CreateBlastCommand, error) {
//	    return CreateBlastCommand{loadID: loadID, guard: guard.NewConstructorGuard()}, nil
//	}
//
//	func (c CreateBlastCommand) Validate() error {
//	    return c.guard.Validate(ErrCreateBlastCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marking the enclosing object as
// properly constructed. Call it only from constructors.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil when the object was created through its constructor.
// Otherwise it returns validationError, or ErrDefaultConstructorGuard when
// validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
