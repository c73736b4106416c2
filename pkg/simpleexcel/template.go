package simpleexcel

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ReportTemplate represents the YAML structure.
type ReportTemplate struct {
	Sheets []SheetTemplate `yaml:"sheets"`
}

// SheetTemplate represents a sheet in the YAML.
type SheetTemplate struct {
	Name        string              `yaml:"name"`
	HeaderStyle *StyleTemplate      `yaml:"header_style"`
	Protection  *ProtectionTemplate `yaml:"protection"`
	Columns     []ColumnConfig      `yaml:"columns"`
}

// ProtectionTemplate protects a sheet: the header row is locked and the data
// columns stay editable.
type ProtectionTemplate struct {
	Password      string `yaml:"password"`
	FormatColumns bool   `yaml:"format_columns"`
	Sort          bool   `yaml:"sort"`
	AutoFilter    bool   `yaml:"auto_filter"`
}

// ColumnConfig defines a column of a sheet.
type ColumnConfig struct {
	FieldName     string                        `yaml:"field_name"` // Struct field name or map key
	Header        string                        `yaml:"header"`
	Width         float64                       `yaml:"width"`
	Hidden        bool                          `yaml:"hidden"`
	Formatter     func(interface{}) interface{} `yaml:"-"`         // Optional custom formatter function (Programmatic)
	FormatterName string                        `yaml:"formatter"` // Name of registered formatter (YAML)
	Dropdown      *DropdownConfig               `yaml:"dropdown"`
}

// DropdownConfig attaches a dropdown to a column. Values come either inline
// (Options, Children) or from a named dictionary resolved before BuildExcel.
//
// A column with DependsOn becomes the second level of a cascading dropdown
// whose first level is the column named by DependsOn.
type DropdownConfig struct {
	Options    []string            `yaml:"options"`
	Dictionary string              `yaml:"dictionary"`
	DependsOn  string              `yaml:"depends_on"`
	Children   map[string][]string `yaml:"children"`
}

// StyleTemplate defines basic styling.
type StyleTemplate struct {
	Font      *FontTemplate      `yaml:"font"`
	Fill      *FillTemplate      `yaml:"fill"`
	Alignment *AlignmentTemplate `yaml:"alignment"`
}

type AlignmentTemplate struct {
	Horizontal string `yaml:"horizontal"` // center, left, right
	Vertical   string `yaml:"vertical"`   // top, center, bottom
}

type FontTemplate struct {
	Bold  bool   `yaml:"bold"`
	Color string `yaml:"color"` // Hex color
}

type FillTemplate struct {
	Color string `yaml:"color"` // Hex color
}

// ParseTemplate decodes a YAML template.
func ParseTemplate(yamlConfig []byte) (*ReportTemplate, error) {
	if len(yamlConfig) == 0 {
		return nil, fmt.Errorf("yaml config is empty")
	}
	var tmpl ReportTemplate
	if err := yaml.Unmarshal(yamlConfig, &tmpl); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(tmpl.Sheets) == 0 {
		return nil, fmt.Errorf("template has no sheets")
	}
	seen := make(map[string]bool, len(tmpl.Sheets))
	for _, s := range tmpl.Sheets {
		if s.Name == "" {
			return nil, fmt.Errorf("template sheet without a name")
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicated sheet %q", s.Name)
		}
		seen[s.Name] = true
	}
	return &tmpl, nil
}
