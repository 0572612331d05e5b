package opc

import (
	"fmt"
	"sync"

	"github.com/yuanying/opcpkg/opc/packuri"
)

// Constructor builds a part from its loaded payload.
type Constructor func(partName packuri.URI, contentType string, pkg *Package, blob []byte) (Part, error)

// PartFactory maps content types to part constructors. Registration happens
// once at startup; the first Construct seals the factory, after which it is
// read-only and may be shared by any number of packages.
type PartFactory struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	fallback     func(contentType string) Constructor
	sealed       bool
}

// NewPartFactory returns a factory that builds every part as a binary part
// until constructors are registered.
func NewPartFactory() *PartFactory {
	return &PartFactory{constructors: make(map[string]Constructor)}
}

// Register sets the constructor for contentType.
func (f *PartFactory) Register(contentType string, c Constructor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sealed {
		return fmt.Errorf("%w: cannot register %q", ErrFactorySealed, contentType)
	}
	f.constructors[contentType] = c
	return nil
}

// RegisterFallback sets the function choosing a constructor for content
// types without a registered one. A nil result from fn selects
// LoadBinaryPart.
func (f *PartFactory) RegisterFallback(fn func(contentType string) Constructor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sealed {
		return fmt.Errorf("%w: cannot register fallback", ErrFactorySealed)
	}
	f.fallback = fn
	return nil
}

// Construct builds the part for partName with the constructor registered for
// contentType.
func (f *PartFactory) Construct(partName packuri.URI, contentType string, pkg *Package, blob []byte) (Part, error) {
	return f.constructorFor(contentType)(partName, contentType, pkg, blob)
}

func (f *PartFactory) constructorFor(contentType string) Constructor {
	f.mu.Lock()
	f.sealed = true
	c, ok := f.constructors[contentType]
	fallback := f.fallback
	f.mu.Unlock()

	if ok {
		return c
	}
	if fallback != nil {
		if c := fallback(contentType); c != nil {
			return c
		}
	}
	return LoadBinaryPart
}
