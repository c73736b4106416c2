package dropdown

import (
	"fmt"
	"strconv"
	"strings"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// MaxColumnIndex is the last zero-based column ColumnLetters can address (ZZ).
const MaxColumnIndex = 26*27 - 1

// ColumnLetters converts a zero-based column index into its letter address
// (0 -> A, 25 -> Z, 26 -> AA). Only one and two letter columns are supported.
func ColumnLetters(index int) (string, error) {
	if index < 0 || index > MaxColumnIndex {
		return "", fmt.Errorf("%w: %d", ErrColumnOutOfRange, index)
	}
	cycle, offset := index/26, index%26
	if cycle == 0 {
		return alphabet[offset : offset+1], nil
	}
	return alphabet[cycle-1:cycle] + alphabet[offset:offset+1], nil
}

// cellRef returns an absolute reference such as $B$3 for zero-based coordinates.
func cellRef(col, row int) (string, error) {
	letters, err := ColumnLetters(col)
	if err != nil {
		return "", err
	}
	return "$" + letters + "$" + strconv.Itoa(row+1), nil
}

// cellName returns a relative reference such as B3 for zero-based coordinates.
func cellName(col, row int) (string, error) {
	letters, err := ColumnLetters(col)
	if err != nil {
		return "", err
	}
	return letters + strconv.Itoa(row+1), nil
}

// columnSqref returns the range covering rows first..last of one column.
func columnSqref(col, first, last int) (string, error) {
	from, err := cellName(col, first)
	if err != nil {
		return "", err
	}
	to, err := cellName(col, last)
	if err != nil {
		return "", err
	}
	return from + ":" + to, nil
}

// areaRef returns a sheet-qualified absolute area such as 'Lists'!$A$1:$A$9.
func areaRef(sheet string, col1, row1, col2, row2 int) (string, error) {
	from, err := cellRef(col1, row1)
	if err != nil {
		return "", err
	}
	to, err := cellRef(col2, row2)
	if err != nil {
		return "", err
	}
	return quoteSheet(sheet) + "!" + from + ":" + to, nil
}

func quoteSheet(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}
