package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Response is the success envelope for machine-readable output.
type Response struct {
	OK      bool   `json:"ok" yaml:"ok"`
	Data    any    `json:"data,omitempty" yaml:"data,omitempty"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	OK    bool   `json:"ok" yaml:"ok"`
	Error string `json:"error" yaml:"error"`
	Code  string `json:"code" yaml:"code"`
	Hint  string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Format specifies the output format.
type Format int

const (
	FormatAuto Format = iota // Auto-detect: TTY → Styled, non-TTY → JSON
	FormatJSON
	FormatYAML
	FormatStyled
	FormatQuiet
	FormatIDs
	FormatCount
)

// Options controls output behavior.
type Options struct {
	Format Format
	Writer io.Writer
}

// Writer handles all output formatting.
type Writer struct {
	opts Options
}

// New creates a new output writer.
func New(opts Options) *Writer {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	return &Writer{opts: opts}
}

// ResponseOption mutates the success envelope before writing.
type ResponseOption func(*Response)

// WithSummary attaches a one-line human summary to the response.
func WithSummary(summary string) ResponseOption {
	return func(r *Response) {
		r.Summary = summary
	}
}

// OK outputs a success response.
func (w *Writer) OK(data any, opts ...ResponseOption) error {
	resp := &Response{OK: true, Data: data}
	for _, opt := range opts {
		opt(resp)
	}
	return w.write(resp)
}

// Err outputs an error response.
func (w *Writer) Err(err error) error {
	e := AsError(err)
	resp := &ErrorResponse{
		OK:    false,
		Error: e.Message,
		Code:  e.Code,
		Hint:  e.Hint,
	}
	return w.write(resp)
}

func (w *Writer) write(v any) error {
	format := w.opts.Format

	if format == FormatAuto {
		if isTTY(w.opts.Writer) {
			format = FormatStyled
		} else {
			format = FormatJSON
		}
	}

	switch format {
	case FormatQuiet:
		if resp, ok := v.(*Response); ok {
			return w.writeJSON(resp.Data)
		}
		return w.writeJSON(v)
	case FormatYAML:
		return w.writeYAML(v)
	case FormatIDs:
		return w.writeIDs(v)
	case FormatCount:
		return w.writeCount(v)
	case FormatStyled:
		return w.writeStyled(v)
	default:
		return w.writeJSON(v)
	}
}

// isTTY checks if the writer is a terminal.
func isTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		fi, err := f.Stat()
		if err != nil {
			return false
		}
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func (w *Writer) writeJSON(v any) error {
	enc := json.NewEncoder(w.opts.Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func (w *Writer) writeYAML(v any) error {
	enc := yaml.NewEncoder(w.opts.Writer)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}

// writeIDs prints one stable item id per line for items implementing
// Identifiable.
func (w *Writer) writeIDs(v any) error {
	resp, ok := v.(*Response)
	if !ok {
		return w.writeJSON(v)
	}
	for _, id := range collectIDs(resp.Data) {
		if _, err := fmt.Fprintln(w.opts.Writer, id); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeCount(v any) error {
	resp, ok := v.(*Response)
	if !ok {
		return w.writeJSON(v)
	}
	n := 0
	rv := reflect.ValueOf(resp.Data)
	if rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		n = rv.Len()
	} else if resp.Data != nil {
		n = 1
	}
	_, err := fmt.Fprintln(w.opts.Writer, n)
	return err
}

// Identifiable exposes a stable identity for --ids output and dedupe.
type Identifiable interface {
	Identity() string
}

func collectIDs(data any) []string {
	var ids []string
	rv := reflect.ValueOf(data)
	if !rv.IsValid() {
		return nil
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		if item, ok := data.(Identifiable); ok {
			return []string{item.Identity()}
		}
		return nil
	}
	for i := 0; i < rv.Len(); i++ {
		if item, ok := rv.Index(i).Interface().(Identifiable); ok {
			ids = append(ids, item.Identity())
		}
	}
	return ids
}
