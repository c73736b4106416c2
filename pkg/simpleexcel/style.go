package simpleexcel

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

var defaultHeaderStyle = &StyleTemplate{
	Font:      &FontTemplate{Bold: true},
	Fill:      &FillTemplate{Color: "DDEBF7"},
	Alignment: &AlignmentTemplate{Horizontal: "center", Vertical: "center"},
}

func createStyle(f *excelize.File, tmpl *StyleTemplate) (int, error) {
	if tmpl == nil {
		return 0, nil
	}

	style := &excelize.Style{}
	if tmpl.Font != nil {
		style.Font = &excelize.Font{
			Bold:  tmpl.Font.Bold,
			Color: strings.TrimPrefix(tmpl.Font.Color, "#"),
		}
	}
	if tmpl.Fill != nil {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(tmpl.Fill.Color, "#")},
			Pattern: 1,
		}
	}
	if tmpl.Alignment != nil {
		style.Alignment = &excelize.Alignment{
			Horizontal: tmpl.Alignment.Horizontal,
			Vertical:   tmpl.Alignment.Vertical,
		}
	}
	return f.NewStyle(style)
}
