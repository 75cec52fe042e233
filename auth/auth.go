// Package auth supplies the ownership/permission capability injected into
// the sale engine. Authorization policy (ownership transfer, permission
// grants) lives with the host; the engine only asks the questions below.
package auth

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied indicates the actor may not perform the action.
var ErrPermissionDenied = errors.New("auth: permission denied")

// Authority answers ownership and permission questions for the engine.
type Authority interface {
	// IsOwner reports whether addr is the contract owner.
	IsOwner(addr string) bool

	// CheckPermission returns nil when actor may perform action.
	CheckPermission(action, actor string) error

	// OnBeforeExecute runs before every dispatched message; a non-nil
	// error aborts the call.
	OnBeforeExecute(action, sender string) error
}

// Static is an Authority with a fixed owner and no extra permission policy.
type Static struct {
	Owner string
}

// Compile-time interface check.
var _ Authority = Static{}

func (s Static) IsOwner(addr string) bool { return addr != "" && addr == s.Owner }

func (s Static) CheckPermission(action, actor string) error {
	if !s.IsOwner(actor) {
		return fmt.Errorf("%w: %s may not %s", ErrPermissionDenied, actor, action)
	}
	return nil
}

func (s Static) OnBeforeExecute(string, string) error { return nil }

// Mock is a test double for Authority. Function fields left nil fall back
// to permissive defaults.
type Mock struct {
	IsOwnerFn         func(addr string) bool
	CheckPermissionFn func(action, actor string) error
	OnBeforeExecuteFn func(action, sender string) error
}

func (m *Mock) IsOwner(addr string) bool {
	if m.IsOwnerFn == nil {
		return true
	}
	return m.IsOwnerFn(addr)
}

func (m *Mock) CheckPermission(action, actor string) error {
	if m.CheckPermissionFn == nil {
		return nil
	}
	return m.CheckPermissionFn(action, actor)
}

func (m *Mock) OnBeforeExecute(action, sender string) error {
	if m.OnBeforeExecuteFn == nil {
		return nil
	}
	return m.OnBeforeExecuteFn(action, sender)
}
