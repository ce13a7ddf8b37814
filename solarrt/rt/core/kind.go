package core

import (
	"errors"
	"fmt"
	"strings"
)

// Kind selects the shader pair and uniform usage of a body.
type Kind int

const (
	// Lit bodies are shaded by the scene light.
	Lit Kind = iota
	// Emissive bodies draw in their flat color.
	Emissive
)

var ErrUnknownKind = errors.New("unknown body kind")

func (k Kind) String() string {
	switch k {
	case Lit:
		return "lit"
	case Emissive:
		return "emissive"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lit", "planet", "moon":
		return Lit, nil
	case "emissive", "sun", "star":
		return Emissive, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
