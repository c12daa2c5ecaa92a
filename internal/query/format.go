package query

import (
	"errors"
	"fmt"
)

// FieldFormat controls how field identity is rendered in results:
// by numeric id, by internal field name, or by display label.
type FieldFormat string

const (
	FieldFormatID     FieldFormat = "id"
	FieldFormatName   FieldFormat = "name"
	FieldFormatPretty FieldFormat = "pretty"
)

// ErrUnsupportedFieldFormat is returned for a field format outside
// id/name/pretty, and by formatter constructors handed a format
// without a single field format (combined formats).
var ErrUnsupportedFieldFormat = errors.New("unsupported field format")

// Format describes which fields a query returns and how field
// identity and values are resolved. Concrete formats are TextFormat,
// DetailedFormat, RawFormat and CombinedFormat.
type Format interface {
	// FieldFormat returns the configured field format. The second
	// return is false for formats without a single field format
	// (combined), which field-resolving formatters must reject.
	FieldFormat() (FieldFormat, bool)
	// FieldIDs returns any explicitly selected field ids.
	FieldIDs() []LogField
	// Clone returns a structurally independent copy.
	Clone() Format

	data() map[string]any
}

// fieldSettings carries the field selection shared by the flat
// formats: explicit ids and/or names plus the field format. Ids and
// names merge additively and are unioned in the request when both
// are present.
type fieldSettings struct {
	fieldFormat FieldFormat
	fieldIDs    []LogField
	fieldNames  []string
}

// SetFieldIDs adds field ids to the selection. Repeated calls merge;
// duplicates are dropped, first-seen order is kept.
func (s *fieldSettings) SetFieldIDs(ids ...LogField) {
	for _, id := range ids {
		if !containsField(s.fieldIDs, id) {
			s.fieldIDs = append(s.fieldIDs, id)
		}
	}
}

// SetFieldNames adds internal field names to the selection. Names
// are case sensitive. Repeated calls merge like SetFieldIDs.
func (s *fieldSettings) SetFieldNames(names ...string) {
	for _, name := range names {
		if !containsString(s.fieldNames, name) {
			s.fieldNames = append(s.fieldNames, name)
		}
	}
}

// SetFieldFormat selects how field identity is rendered. Values
// outside id/name/pretty are rejected.
func (s *fieldSettings) SetFieldFormat(ff FieldFormat) error {
	switch ff {
	case FieldFormatID, FieldFormatName, FieldFormatPretty:
		s.fieldFormat = ff
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFieldFormat, ff)
}

// FieldFormat returns the configured field format.
func (s *fieldSettings) FieldFormat() (FieldFormat, bool) {
	return s.fieldFormat, true
}

// FieldIDs returns a copy of the explicitly selected field ids.
func (s *fieldSettings) FieldIDs() []LogField {
	if len(s.fieldIDs) == 0 {
		return nil
	}
	out := make([]LogField, len(s.fieldIDs))
	copy(out, s.fieldIDs)
	return out
}

func (s *fieldSettings) fill(m map[string]any) {
	m["field_format"] = string(s.fieldFormat)
	if len(s.fieldIDs) > 0 {
		m["field_ids"] = fieldInts(s.fieldIDs)
	}
	if len(s.fieldNames) > 0 {
		names := make([]string, len(s.fieldNames))
		copy(names, s.fieldNames)
		m["field_names"] = names
	}
}

func (s *fieldSettings) cloneSettings() fieldSettings {
	cp := fieldSettings{fieldFormat: s.fieldFormat}
	cp.fieldIDs = append(cp.fieldIDs, s.fieldIDs...)
	cp.fieldNames = append(cp.fieldNames, s.fieldNames...)
	return cp
}

// TextFormat resolves field values the way the console log viewer
// displays them. It is the default format for every query, using
// pretty field labels and sender resolution.
type TextFormat struct {
	fieldSettings
	typ       string
	resolving map[string]any
}

// NewTextFormat returns a text format with pretty field labels.
func NewTextFormat() *TextFormat {
	return &TextFormat{
		fieldSettings: fieldSettings{fieldFormat: FieldFormatPretty},
		typ:           "texts",
		resolving:     map[string]any{"senders": true},
	}
}

// SetResolving merges per-field resolution options into the format.
// Recognized options include timezone (string), time_show_zone,
// time_show_millis, keys, ip_elements, ip_dns and ip_locations
// (bool). Setting a timezone implies time_show_zone unless the
// caller supplied it explicitly.
func (f *TextFormat) SetResolving(opts map[string]any) {
	if _, hasTZ := opts["timezone"]; hasTZ {
		if _, explicit := opts["time_show_zone"]; !explicit {
			f.resolving["time_show_zone"] = true
		}
	}
	for k, v := range opts {
		f.resolving[k] = v
	}
}

// Timezone sets the timezone applied to timestamp fields, e.g.
// "US/Eastern" or "Europe/Helsinki", and shows the zone in output.
func (f *TextFormat) Timezone(tz string) {
	f.resolving["timezone"] = tz
	f.resolving["time_show_zone"] = true
}

// Clone returns an independent copy of the format.
func (f *TextFormat) Clone() Format {
	return &TextFormat{
		fieldSettings: f.cloneSettings(),
		typ:           f.typ,
		resolving:     copyResolving(f.resolving),
	}
}

func (f *TextFormat) data() map[string]any {
	m := map[string]any{
		"type":      f.typ,
		"resolving": copyResolving(f.resolving),
	}
	f.fill(m)
	return m
}

// DetailedFormat is a TextFormat variant that skips value conversion
// and ships a field map in the first payload. Field resolution
// queries use it internally.
type DetailedFormat struct {
	TextFormat
}

// NewDetailedFormat returns a detailed format with pretty labels.
func NewDetailedFormat() *DetailedFormat {
	f := &DetailedFormat{TextFormat: *NewTextFormat()}
	f.typ = "detailed"
	return f
}

// Clone returns an independent copy of the format.
func (f *DetailedFormat) Clone() Format {
	inner := f.TextFormat.Clone().(*TextFormat)
	return &DetailedFormat{TextFormat: *inner}
}

// RawFormat is an abbreviated detailed format: fewer fields and no
// value resolution.
type RawFormat struct {
	fieldSettings
}

// NewRawFormat returns a raw format with pretty field labels.
func NewRawFormat() *RawFormat {
	return &RawFormat{fieldSettings: fieldSettings{fieldFormat: FieldFormatPretty}}
}

// Clone returns an independent copy of the format.
func (f *RawFormat) Clone() Format {
	return &RawFormat{fieldSettings: f.cloneSettings()}
}

func (f *RawFormat) data() map[string]any {
	m := map[string]any{"type": "raw"}
	f.fill(m)
	return m
}

// CombinedFormat names several sub-formats so one query can resolve
// different fields in different ways. Each result record becomes a
// map keyed by the sub-format keys. A combined format deliberately
// has no top-level field format; field-resolving formatters reject
// it rather than guessing.
type CombinedFormat struct {
	formats map[string]Format
}

// NewCombinedFormat builds a combined format. The child formats are
// flattened into the request at construction time key by key.
func NewCombinedFormat(formats map[string]Format) *CombinedFormat {
	f := &CombinedFormat{formats: make(map[string]Format, len(formats))}
	for key, sub := range formats {
		f.formats[key] = sub.Clone()
	}
	return f
}

// FieldFormat reports that a combined format has no single field
// format.
func (f *CombinedFormat) FieldFormat() (FieldFormat, bool) {
	return "", false
}

// FieldIDs returns nil; field selection lives on the sub-formats.
func (f *CombinedFormat) FieldIDs() []LogField {
	return nil
}

// Clone returns an independent copy of the format.
func (f *CombinedFormat) Clone() Format {
	return NewCombinedFormat(f.formats)
}

func (f *CombinedFormat) data() map[string]any {
	formats := make(map[string]any, len(f.formats))
	for key, sub := range f.formats {
		formats[key] = sub.data()
	}
	return map[string]any{
		"type":    "combined",
		"formats": formats,
	}
}

func copyResolving(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func containsField(ids []LogField, id LogField) bool {
	for _, have := range ids {
		if have == id {
			return true
		}
	}
	return false
}

func containsString(names []string, name string) bool {
	for _, have := range names {
		if have == name {
			return true
		}
	}
	return false
}
