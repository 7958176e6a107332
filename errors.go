package depot

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrPending         = errors.New("entity is pending")
	ErrSchemaMismatch  = errors.New("schema mismatch")
	ErrIllegalMutation = errors.New("illegal structural mutation")
	ErrNotReserved     = errors.New("entity id is not reserved")
)

// LockedStorageError is returned by direct structural calls made while a
// safety window is open. Use the command buffer instead.
type LockedStorageError struct {
	Op string
}

func (e LockedStorageError) Error() string {
	return fmt.Sprintf("storage is currently locked: %s must go through the command buffer", e.Op)
}

func (e LockedStorageError) Is(target error) bool {
	return target == ErrIllegalMutation
}

type EntityNotFoundError struct {
	Entity Entity
}

func (e EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity %d does not exist", e.Entity)
}

func (e EntityNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type ComponentNotFoundError struct {
	Entity Entity
	Kind   *Kind
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component does not exist on entity %d: %s", e.Entity, e.Kind)
}

func (e ComponentNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PendingEntityError reports access to an id that was reserved but whose data
// has not been written yet.
type PendingEntityError struct {
	Entity Entity
}

func (e PendingEntityError) Error() string {
	return fmt.Sprintf("entity %d is reserved but not created yet", e.Entity)
}

func (e PendingEntityError) Is(target error) bool {
	return target == ErrPending
}

type SchemaMismatchError struct {
	Kind   *Kind
	Reason string
}

func (e SchemaMismatchError) Error() string {
	return fmt.Sprintf("component %s: %s", e.Kind, e.Reason)
}

func (e SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

type ReservationError struct {
	Entity Entity
}

func (e ReservationError) Error() string {
	return fmt.Sprintf("entity %d was not reserved or was already created", e.Entity)
}

func (e ReservationError) Is(target error) bool {
	return target == ErrNotReserved
}
