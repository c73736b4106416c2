package simpleexcel

import (
	"github.com/xuri/excelize/v2"
)

// unlockColumns marks the first n columns editable. It must run before the
// header style is applied, which keeps the header cells locked.
func unlockColumns(f *excelize.File, sheet string, n int, p *ProtectionTemplate) error {
	if p == nil {
		return nil
	}
	styleID, err := f.NewStyle(&excelize.Style{
		Protection: &excelize.Protection{Locked: false},
	})
	if err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(n)
	if err != nil {
		return err
	}
	return f.SetColStyle(sheet, "A:"+last, styleID)
}

func protectSheet(f *excelize.File, sheet string, p *ProtectionTemplate) error {
	if p == nil {
		return nil
	}
	return f.ProtectSheet(sheet, &excelize.SheetProtectionOptions{
		Password:            p.Password,
		SelectLockedCells:   true,
		SelectUnlockedCells: true,
		FormatColumns:       p.FormatColumns,
		Sort:                p.Sort,
		AutoFilter:          p.AutoFilter,
	})
}
