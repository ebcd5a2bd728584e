package docwriter

import (
	"errors"
	"io"
	"os"
)

// Serializer writes a Document in some output format. Implementations visit
// blocks in document order and must not modify the document.
type Serializer interface {
	Serialize(w io.Writer, doc *Document) error
}

// SerializerFunc adapts a function to the Serializer interface.
type SerializerFunc func(w io.Writer, doc *Document) error

func (f SerializerFunc) Serialize(w io.Writer, doc *Document) error {
	return f(w, doc)
}

// Save serializes doc to the file at path, creating or truncating it. I/O
// failures are returned as *DocumentError wrapping the underlying error, and
// a file left behind by a failed save is removed.
func Save(doc *Document, path string, s Serializer) error {
	if doc == nil {
		return NewDocumentError("save", path, errors.New("nil document"))
	}
	if s == nil {
		return NewDocumentError("save", path, errors.New("nil serializer"))
	}

	f, err := os.Create(path)
	if err != nil {
		return NewDocumentError("create", path, err)
	}

	if err := s.Serialize(f, doc); err != nil {
		f.Close()
		os.Remove(path)
		var docErr *DocumentError
		if errors.As(err, &docErr) {
			return err
		}
		return NewDocumentError("serialize", path, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return NewDocumentError("close", path, err)
	}

	GetLogger().Debug("document saved", "path", path, "blocks", doc.Len())
	return nil
}
