package export

import (
	"fmt"
	"io"
	"time"
)

// ExportBuilder provides a fluent API for configuring and executing
// export operations.
//
// Example usage:
//
//	err := NewExportBuilder().
//	    WithFormat(FormatJSON).
//	    WithFilePath("standings.json").
//	    WithPrettyJSON(true).
//	    Export(rows)
type ExportBuilder struct {
	format     Format
	filePath   string
	prettyJSON bool
	overwrite  bool
	writer     io.Writer
	useWriter  bool
}

// NewExportBuilder creates a builder with JSON format and no output
// destination set.
func NewExportBuilder() *ExportBuilder {
	return &ExportBuilder{format: FormatJSON}
}

// WithFormat sets the export format (CSV or JSON).
func (b *ExportBuilder) WithFormat(format Format) *ExportBuilder {
	b.format = format
	return b
}

// WithFilePath sets the output file path for the export.
func (b *ExportBuilder) WithFilePath(filePath string) *ExportBuilder {
	b.filePath = filePath
	b.useWriter = false
	return b
}

// WithWriter sets an io.Writer as the output destination instead of a
// file, e.g. stdout or a buffer.
func (b *ExportBuilder) WithWriter(w io.Writer) *ExportBuilder {
	b.writer = w
	b.useWriter = true
	return b
}

// WithPrettyJSON enables indented output for JSON exports.
func (b *ExportBuilder) WithPrettyJSON(pretty bool) *ExportBuilder {
	b.prettyJSON = pretty
	return b
}

// WithOverwrite allows replacing an existing output file.
func (b *ExportBuilder) WithOverwrite(overwrite bool) *ExportBuilder {
	b.overwrite = overwrite
	return b
}

// WithDefaultFilename generates a timestamped filename from the export
// type, e.g. "games_20240101_120000.csv".
func (b *ExportBuilder) WithDefaultFilename(exportType string) *ExportBuilder {
	b.filePath = GenerateFilename(exportType, b.format)
	b.useWriter = false
	return b
}

// WithTimestampedFilename generates a filename with a custom prefix and
// the current timestamp.
func (b *ExportBuilder) WithTimestampedFilename(prefix string) *ExportBuilder {
	b.filePath = fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_150405"), b.format)
	b.useWriter = false
	return b
}

// Build creates an Options struct from the builder's configuration, for
// code that takes Options directly.
func (b *ExportBuilder) Build() Options {
	return Options{
		Format:     b.format,
		FilePath:   b.filePath,
		PrettyJSON: b.prettyJSON,
		Overwrite:  b.overwrite,
	}
}

// Export executes the export with the configured settings.
func (b *ExportBuilder) Export(data interface{}) error {
	if err := b.validate(); err != nil {
		return err
	}

	if b.useWriter {
		return ExportToWriter(b.writer, b.format, data, b.prettyJSON)
	}
	return NewExporter(b.Build()).Export(data)
}

func (b *ExportBuilder) validate() error {
	if !b.useWriter && b.filePath == "" {
		return fmt.Errorf("either file path or writer must be set")
	}
	switch b.format {
	case FormatCSV, FormatJSON:
	default:
		return fmt.Errorf("unsupported export format: %s", b.format)
	}
	return nil
}
