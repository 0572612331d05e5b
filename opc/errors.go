package opc

import (
	"errors"
	"fmt"

	"github.com/yuanying/opcpkg/opc/medium"
	"github.com/yuanying/opcpkg/opc/packuri"
)

var (
	// ErrPackageNotFound means the input is neither a zip archive nor a
	// directory, or is missing its content-type map.
	ErrPackageNotFound = medium.ErrPackageNotFound
	// ErrItemNotFound means an item is absent from the physical medium.
	ErrItemNotFound = medium.ErrItemNotFound
	// ErrInvalidPartName means a part name does not begin with a slash or a
	// part-name template is malformed.
	ErrInvalidPartName = packuri.ErrInvalid

	ErrNotXML                = errors.New("not well-formed XML")
	ErrNoContentType         = errors.New("no content type")
	ErrNotFound              = errors.New("relationship not found")
	ErrAmbiguousRelationship = errors.New("ambiguous relationship")
	ErrExternalTarget        = errors.New("relationship target is external")
	ErrFactorySealed         = errors.New("part factory already in use")
)

// PartError records which item an operation failed on.
type PartError struct {
	Op       string
	PartName packuri.URI
	Err      error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.PartName, e.Err)
}

func (e *PartError) Unwrap() error {
	return e.Err
}
