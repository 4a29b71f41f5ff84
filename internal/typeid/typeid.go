package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixShape    = "shape"
	PrefixDocument = "doc"
	PrefixSnapshot = "snap"
	PrefixSession  = "sess"
)

// New returns a fresh, k-sortable id such as "shape_01h455vb4pex5vsknk084sn02q".
func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewShapeID() string    { return New(PrefixShape) }
func NewDocumentID() string { return New(PrefixDocument) }
func NewSnapshotID() string { return New(PrefixSnapshot) }
func NewSessionID() string  { return New(PrefixSession) }

// Validate checks that id parses as a type id carrying prefix.
func Validate(id, prefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", id, err)
	}
	if parsed.Prefix() != prefix {
		return fmt.Errorf("id %q has prefix %q, want %q", id, parsed.Prefix(), prefix)
	}
	return nil
}
