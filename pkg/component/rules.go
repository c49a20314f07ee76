package component

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownComponent = errors.New("unknown component")
	ErrUnknownPort      = errors.New("unknown port")
	ErrSelfLoop         = errors.New("wire starts and ends on the same port")
	ErrSameComponent    = errors.New("wire would short two ports of one component")
	ErrDriverConflict   = errors.New("two driving outputs cannot be tied together")
	ErrDriverGrounded   = errors.New("driving output cannot be tied to ground")
	ErrDuplicateWire    = errors.New("ports are already wired together")
)

// Endpoint is one end of a prospective wire.
type Endpoint struct {
	Component string
	Kind      Kind
	Port      string
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%s", e.Component, e.Port)
}

// CheckConnection applies the port rules to a wire between a and b. It
// does not know about existing wires; duplicate detection is the caller's.
func CheckConnection(a, b Endpoint) error {
	pa, err := resolvePort(a)
	if err != nil {
		return err
	}
	pb, err := resolvePort(b)
	if err != nil {
		return err
	}

	if a.Component == b.Component {
		if a.Port == b.Port {
			return fmt.Errorf("%s: %w", a, ErrSelfLoop)
		}
		return fmt.Errorf("%s and %s: %w", a, b, ErrSameComponent)
	}

	switch {
	case pa.Role == RoleDriver && pb.Role == RoleDriver:
		return fmt.Errorf("%s and %s: %w", a, b, ErrDriverConflict)
	case pa.Role == RoleDriver && pb.Role == RoleGround,
		pa.Role == RoleGround && pb.Role == RoleDriver:
		return fmt.Errorf("%s and %s: %w", a, b, ErrDriverGrounded)
	}

	return nil
}

func resolvePort(e Endpoint) (Port, error) {
	spec, ok := Lookup(e.Kind)
	if !ok || len(spec.Ports) == 0 {
		return Port{}, fmt.Errorf("%s (%s): %w", e.Component, e.Kind, ErrUnknownComponent)
	}
	p, ok := spec.Port(e.Port)
	if !ok {
		return Port{}, fmt.Errorf("%s: %w", e, ErrUnknownPort)
	}
	return p, nil
}
