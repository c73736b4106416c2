package dropdown

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// NoColumn marks a descriptor without a second-level column.
const NoColumn = -1

var (
	a1Pattern   = regexp.MustCompile(`^[A-Za-z]{1,3}[0-9]+$`)
	r1c1Pattern = regexp.MustCompile(`^[Rr]([0-9]+)?([Cc]([0-9]+)?)?$|^[Cc]([0-9]+)?$`)
)

// Descriptor requests one dropdown, or one pair of cascading dropdowns, on the
// target sheet. Columns are zero-based.
type Descriptor struct {
	// Column receives the first-level dropdown.
	Column int
	// Options are the first-level choices, in display order.
	Options []string
	// ChildColumn receives the second-level dropdown. NoColumn unless cascading.
	ChildColumn int
	// ChildOptions maps a first-level option to its second-level choices.
	// A missing key renders an empty second-level list for that option.
	ChildOptions map[string][]string
}

// NewListDescriptor returns a single-level descriptor.
func NewListDescriptor(column int, options ...string) Descriptor {
	return Descriptor{
		Column:      column,
		Options:     options,
		ChildColumn: NoColumn,
	}
}

// NewCascadingDescriptor returns a two-level descriptor whose second-level
// choices in childColumn depend on the value picked in column.
func NewCascadingDescriptor(column, childColumn int, options []string, children map[string][]string) Descriptor {
	return Descriptor{
		Column:       column,
		Options:      options,
		ChildColumn:  childColumn,
		ChildOptions: children,
	}
}

// IsCascading reports whether the descriptor carries second-level options.
func (d Descriptor) IsCascading() bool {
	return len(d.ChildOptions) > 0
}

// columns returns every target column the descriptor occupies.
func (d Descriptor) columns() []int {
	if d.IsCascading() {
		return []int{d.Column, d.ChildColumn}
	}
	return []int{d.Column}
}

// Validate checks the descriptor without touching any workbook.
func (d Descriptor) Validate() error {
	if d.Column < 0 || d.Column > MaxColumnIndex {
		return fmt.Errorf("%w: column %d", ErrColumnOutOfRange, d.Column)
	}
	if !d.IsCascading() {
		return nil
	}

	if d.ChildColumn < 0 {
		return fmt.Errorf("%w: cascading descriptor on column %d has no second-level column", ErrDescriptorConflict, d.Column)
	}
	if d.ChildColumn == d.Column {
		return fmt.Errorf("%w: second-level column %d equals first-level column", ErrDescriptorConflict, d.ChildColumn)
	}
	if d.ChildColumn > MaxColumnIndex {
		return fmt.Errorf("%w: column %d", ErrColumnOutOfRange, d.ChildColumn)
	}
	if len(d.Options) > MaxColumnIndex+1 {
		return fmt.Errorf("%w: %d first-level options do not fit one auxiliary row", ErrColumnOutOfRange, len(d.Options))
	}

	seen := make(map[string]bool, len(d.Options))
	for _, opt := range d.Options {
		if seen[opt] {
			return fmt.Errorf("%w: duplicated first-level option %q", ErrDescriptorConflict, opt)
		}
		seen[opt] = true
		if err := checkRangeName(opt); err != nil {
			return err
		}
	}
	for parent := range d.ChildOptions {
		if !seen[parent] {
			return fmt.Errorf("%w: child options given for unknown option %q", ErrDescriptorConflict, parent)
		}
	}
	return nil
}

// checkRangeName reports whether a first-level option can name the range
// holding its children, since INDIRECT resolves the cell text as a name.
func checkRangeName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty option cannot name a range", ErrInvalidOptionValue)
	}
	if utf8.RuneCountInString(name) > excelize.MaxFieldLength {
		return fmt.Errorf("%w: %q is too long for a range name", ErrInvalidOptionValue, name)
	}
	for i, r := range name {
		switch {
		case unicode.IsLetter(r), r == '_':
		case i > 0 && (unicode.IsDigit(r) || r == '.'):
		default:
			return fmt.Errorf("%w: %q cannot be used as a range name", ErrInvalidOptionValue, name)
		}
	}
	if a1Pattern.MatchString(name) || r1c1Pattern.MatchString(name) {
		return fmt.Errorf("%w: %q looks like a cell reference", ErrInvalidOptionValue, name)
	}
	return nil
}
