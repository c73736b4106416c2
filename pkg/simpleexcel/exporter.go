// Package simpleexcel builds data-entry workbooks: one header row per sheet,
// optional data rows, and in-cell dropdowns on the columns that ask for them.
package simpleexcel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/locvowork/dropdown_export/pkg/dropdown"
	"github.com/xuri/excelize/v2"
)

// ExcelDataExporter is the main entry point for exporting data.
type ExcelDataExporter struct {
	sheets []*SheetBuilder
	// formatters holds registered formatter functions by name
	formatters map[string]func(interface{}) interface{}
	// dictionaries holds values bound for dictionary-backed dropdowns
	dictionaries map[DictionaryLookup]DictionaryValues
	placerOpts   []dropdown.Option
}

// SheetBuilder configures one sheet.
type SheetBuilder struct {
	exporter    *ExcelDataExporter
	name        string
	columns     []ColumnConfig
	headerStyle *StyleTemplate
	protection  *ProtectionTemplate
	data        interface{}
}

func NewExcelDataExporter() *ExcelDataExporter {
	return &ExcelDataExporter{
		formatters:   make(map[string]func(interface{}) interface{}),
		dictionaries: make(map[DictionaryLookup]DictionaryValues),
	}
}

// NewExcelDataExporterFromYamlConfig creates an exporter with the sheets of a YAML template.
func NewExcelDataExporterFromYamlConfig(yamlConfig string) (*ExcelDataExporter, error) {
	tmpl, err := ParseTemplate([]byte(yamlConfig))
	if err != nil {
		return nil, err
	}
	return NewExcelDataExporterFromTemplate(tmpl), nil
}

// NewExcelDataExporterFromTemplate creates an exporter with the sheets of tmpl.
func NewExcelDataExporterFromTemplate(tmpl *ReportTemplate) *ExcelDataExporter {
	e := NewExcelDataExporter()
	for _, st := range tmpl.Sheets {
		e.AddSheet(st.Name).
			WithHeaderStyle(st.HeaderStyle).
			WithProtection(st.Protection).
			WithColumns(st.Columns...)
	}
	return e
}

// AddSheet starts a new sheet builder.
func (e *ExcelDataExporter) AddSheet(name string) *SheetBuilder {
	sb := &SheetBuilder{exporter: e, name: name}
	e.sheets = append(e.sheets, sb)
	return sb
}

// GetSheet returns a SheetBuilder by name, or nil if not found.
func (e *ExcelDataExporter) GetSheet(name string) *SheetBuilder {
	for _, sheet := range e.sheets {
		if sheet.name == name {
			return sheet
		}
	}
	return nil
}

// SheetNames returns the configured sheet names in order.
func (e *ExcelDataExporter) SheetNames() []string {
	names := make([]string, len(e.sheets))
	for i, sb := range e.sheets {
		names[i] = sb.name
	}
	return names
}

// BindSheetData binds rows to a sheet by name.
func (e *ExcelDataExporter) BindSheetData(name string, data interface{}) error {
	sb := e.GetSheet(name)
	if sb == nil {
		return fmt.Errorf("sheet %q is not configured", name)
	}
	sb.WithData(data)
	return nil
}

// RegisterFormatter registers a formatter function with a name.
// This allows referencing formatters by name in YAML configurations.
func (e *ExcelDataExporter) RegisterFormatter(name string, f func(interface{}) interface{}) *ExcelDataExporter {
	e.formatters[name] = f
	return e
}

// WithDropdownOptions configures the dropdown placement of every sheet.
func (e *ExcelDataExporter) WithDropdownOptions(opts ...dropdown.Option) *ExcelDataExporter {
	e.placerOpts = append(e.placerOpts, opts...)
	return e
}

// Lookups returns the distinct dictionary lookups still to be bound.
func (e *ExcelDataExporter) Lookups() []DictionaryLookup {
	seen := make(map[DictionaryLookup]bool)
	var out []DictionaryLookup
	for _, sb := range e.sheets {
		for _, l := range lookups(sb.resolvedColumns()) {
			if seen[l] {
				continue
			}
			seen[l] = true
			if _, ok := e.dictionaries[l]; !ok {
				out = append(out, l)
			}
		}
	}
	return out
}

// BindDictionary stores the values of a dictionary lookup.
func (e *ExcelDataExporter) BindDictionary(l DictionaryLookup, v DictionaryValues) *ExcelDataExporter {
	e.dictionaries[l] = v
	return e
}

// BuildExcel constructs the workbook: header, rows and dropdowns of every sheet.
func (e *ExcelDataExporter) BuildExcel() (*excelize.File, error) {
	if len(e.sheets) == 0 {
		return nil, fmt.Errorf("no sheets to export")
	}

	f := excelize.NewFile()
	columns := make([][]ColumnConfig, len(e.sheets))
	for i, sb := range e.sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sb.name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(sb.name); err != nil {
			f.Close()
			return nil, err
		}

		columns[i] = sb.resolvedColumns()
		if err := e.renderSheet(f, sb, columns[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("render sheet %q: %w", sb.name, err)
		}
	}

	// Dropdowns go last so auxiliary sheets follow the data sheets.
	placer := dropdown.NewPlacer(f, e.placerOpts...)
	for i, sb := range e.sheets {
		descriptors, err := Descriptors(columns[i], e.dictionaries)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", sb.name, err)
		}
		if err := placer.Apply(sb.name, descriptors); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", sb.name, err)
		}
	}
	return f, nil
}

func (e *ExcelDataExporter) renderSheet(f *excelize.File, sb *SheetBuilder, cols []ColumnConfig) error {
	headerStyle := sb.headerStyle
	if headerStyle == nil {
		headerStyle = defaultHeaderStyle
	}
	styleID, err := createStyle(f, headerStyle)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(cols))
	for i, col := range cols {
		header[i] = col.Header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := col.Width
		if width <= 0 {
			width = defaultWidth
		}
		if err := f.SetColWidth(sb.name, name, name, width); err != nil {
			return err
		}
		if col.Hidden {
			if err := f.SetColVisible(sb.name, name, false); err != nil {
				return err
			}
		}
	}
	if len(cols) == 0 {
		return nil
	}
	if err := unlockColumns(f, sb.name, len(cols), sb.protection); err != nil {
		return err
	}
	if err := f.SetSheetRow(sb.name, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := f.SetCellStyle(sb.name, "A1", last, styleID); err != nil {
		return err
	}

	rows := reflect.ValueOf(sb.data)
	if rows.Kind() == reflect.Ptr {
		rows = rows.Elem()
	}
	if rows.Kind() != reflect.Slice {
		return protectSheet(f, sb.name, sb.protection)
	}
	for r := 0; r < rows.Len(); r++ {
		item := rows.Index(r)
		values := make([]interface{}, len(cols))
		for c, col := range cols {
			values[c] = e.format(col, extractValue(item, col.FieldName))
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sb.name, cell, &values); err != nil {
			return err
		}
	}
	return protectSheet(f, sb.name, sb.protection)
}

func (e *ExcelDataExporter) format(col ColumnConfig, val interface{}) interface{} {
	if col.Formatter != nil {
		return col.Formatter(val)
	}
	if col.FormatterName != "" {
		if fn, ok := e.formatters[col.FormatterName]; ok {
			return fn(val)
		}
	}
	return val
}

// ExportToExcel generates the Excel file on disk.
func (e *ExcelDataExporter) ExportToExcel(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := e.BuildExcel()
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// ToBytes exports the Excel file to an in-memory byte slice.
func (e *ExcelDataExporter) ToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := e.ToWriter(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToWriter exports the Excel file directly to a writer.
func (e *ExcelDataExporter) ToWriter(w io.Writer) error {
	f, err := e.BuildExcel()
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

// WithColumns appends column configs.
func (sb *SheetBuilder) WithColumns(cols ...ColumnConfig) *SheetBuilder {
	sb.columns = append(sb.columns, cols...)
	return sb
}

// AddColumn appends one column config.
func (sb *SheetBuilder) AddColumn(col ColumnConfig) *SheetBuilder {
	return sb.WithColumns(col)
}

// WithHeaderStyle overrides the header row style.
func (sb *SheetBuilder) WithHeaderStyle(style *StyleTemplate) *SheetBuilder {
	sb.headerStyle = style
	return sb
}

// WithProtection protects the sheet. Nil leaves it unprotected.
func (sb *SheetBuilder) WithProtection(p *ProtectionTemplate) *SheetBuilder {
	sb.protection = p
	return sb
}

// WithData sets the rows written below the header: a slice of structs or maps.
// Struct fields without a column config become columns.
func (sb *SheetBuilder) WithData(data interface{}) *SheetBuilder {
	sb.data = data
	return sb
}

func (sb *SheetBuilder) Build() *ExcelDataExporter {
	return sb.exporter
}

func (sb *SheetBuilder) resolvedColumns() []ColumnConfig {
	return mergeColumns(sb.data, sb.columns)
}
