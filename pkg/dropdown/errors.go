package dropdown

import (
	"errors"
	"fmt"
)

// Construction-time errors. They are returned before the workbook is touched.
var (
	// ErrInvalidOptionValue indicates an option part or token that breaks the option format.
	ErrInvalidOptionValue = errors.New("invalid option value")

	// ErrDescriptorConflict indicates a descriptor that cannot be placed as described.
	ErrDescriptorConflict = errors.New("descriptor conflict")

	// ErrColumnOutOfRange indicates a column index outside A..ZZ.
	ErrColumnOutOfRange = errors.New("column index out of range")

	// ErrNameCollision indicates a sheet or defined name that already exists in the workbook.
	ErrNameCollision = errors.New("name collision")

	// ErrSheetNotFound indicates the target sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
)

// GenerationError is returned when the workbook writer fails while dropdowns are placed.
type GenerationError struct {
	Sheet string
	Step  string // "aux_sheet", "stream", "defined_name", "validation", "visibility"
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("dropdown generation failed on sheet %q (%s): %v", e.Sheet, e.Step, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func newGenerationError(sheet, step string, err error) *GenerationError {
	return &GenerationError{
		Sheet: sheet,
		Step:  step,
		Err:   err,
	}
}
