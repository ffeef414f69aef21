package format

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Common errors.
var (
	ErrMalformed   = errors.New("malformed document")
	ErrNoCompanion = errors.New("no companion store location")
)

// FileFormat reads and writes a Document in one serialization. Every
// failure is returned and also appended to the text reported by Errors,
// which accumulates until Clear.
type FileFormat interface {
	Read(r io.Reader, doc *Document) error
	Write(w io.Writer, doc *Document) error

	// Identifier is a unique, stable name for the format.
	Identifier() string
	Name() string
	Description() string
	SpecificationURL() string
	FileExtensions() []string
	MimeTypes() []string

	Errors() string
	FileName() string
	SetFileName(name string)
	Clear()

	// NewInstance returns a fresh format of the same kind and
	// configuration, with no accumulated state.
	NewInstance() FileFormat
}

// Base carries the state shared by FileFormat implementations. Embed it.
type Base struct {
	errors   []string
	fileName string
}

// AppendError records msg for Errors.
func (b *Base) AppendError(msg string) {
	b.errors = append(b.errors, msg)
}

// fail records err and returns it.
func (b *Base) fail(err error) error {
	b.AppendError(err.Error())
	return err
}

// Errors returns every recorded error, one per line.
func (b *Base) Errors() string { return strings.Join(b.errors, "\n") }

func (b *Base) FileName() string { return b.fileName }

func (b *Base) SetFileName(name string) { b.fileName = name }

// Clear forgets recorded errors and the file name.
func (b *Base) Clear() {
	b.errors = nil
	b.fileName = ""
}

// ReadFile reads the file at name into doc.
func ReadFile(f FileFormat, name string, doc *Document) error {
	in, err := os.Open(name)
	if err != nil {
		err = fmt.Errorf("opening %s: %w", name, err)
		recordError(f, err)
		return err
	}
	defer in.Close()

	f.SetFileName(name)
	return f.Read(in, doc)
}

// WriteFile writes doc to the file at name, creating or truncating it.
func WriteFile(f FileFormat, name string, doc *Document) (err error) {
	out, err := os.Create(name)
	if err != nil {
		err = fmt.Errorf("creating %s: %w", name, err)
		recordError(f, err)
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", name, cerr)
			recordError(f, err)
		}
	}()

	f.SetFileName(name)
	return f.Write(out, doc)
}

// ReadString reads doc from s.
func ReadString(f FileFormat, s string, doc *Document) error {
	return f.Read(strings.NewReader(s), doc)
}

// WriteString returns doc serialized by f.
func WriteString(f FileFormat, doc *Document) (string, error) {
	var sb strings.Builder
	if err := f.Write(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

type errorAppender interface {
	AppendError(msg string)
}

func recordError(f FileFormat, err error) {
	if a, ok := f.(errorAppender); ok {
		a.AppendError(err.Error())
	}
}
