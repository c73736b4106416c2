package simpleexcel

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
)

const defaultWidth = 20

// mergeColumns merges user-defined columns with fields detected from data.
// User columns come first, then remaining detected fields in declaration order.
func mergeColumns(data interface{}, userConfigs []ColumnConfig) []ColumnConfig {
	finalCols := make([]ColumnConfig, 0, len(userConfigs))
	seen := make(map[string]bool)
	for _, col := range userConfigs {
		seen[col.FieldName] = true
		finalCols = append(finalCols, col)
	}

	for _, col := range detectColumns(data) {
		if !seen[col.FieldName] {
			finalCols = append(finalCols, col)
			seen[col.FieldName] = true
		}
	}
	return finalCols
}

// detectColumns returns default column configs for the fields of data,
// a slice of structs or maps.
func detectColumns(data interface{}) []ColumnConfig {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice {
		return nil
	}

	elemType := v.Type().Elem()
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() == reflect.Struct {
		return structColumns(elemType)
	}

	// Maps: union of keys over the first rows, sorted for a stable layout.
	limit := v.Len()
	if limit > 50 {
		limit = 50
	}
	keys := make(map[string]bool)
	for i := 0; i < limit; i++ {
		row := v.Index(i)
		if row.Kind() == reflect.Ptr || row.Kind() == reflect.Interface {
			row = row.Elem()
		}
		if row.Kind() != reflect.Map {
			continue
		}
		for _, key := range row.MapKeys() {
			keys[key.String()] = true
		}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	cols := make([]ColumnConfig, len(names))
	for i, name := range names {
		cols[i] = ColumnConfig{FieldName: name, Header: name, Width: defaultWidth}
	}
	return cols
}

func structColumns(t reflect.Type) []ColumnConfig {
	var cols []ColumnConfig
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		col := ColumnConfig{FieldName: field.Name, Header: field.Name, Width: defaultWidth}
		if tag, ok := field.Tag.Lookup("excel"); ok {
			if tag == "-" {
				continue
			}
			parseExcelTag(&col, tag)
		}
		cols = append(cols, col)
	}
	return cols
}

// parseExcelTag applies a tag such as
// `excel:"header:Category,width:18,dict:category"` or
// `excel:"header:Item,options:Apple|Banana,depends:Category"`.
func parseExcelTag(col *ColumnConfig, tag string) {
	for _, part := range strings.Split(tag, ",") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		key, value := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])

		switch key {
		case "header":
			col.Header = value
		case "width":
			if w, err := strconv.ParseFloat(value, 64); err == nil {
				col.Width = w
			}
		case "hidden":
			col.Hidden = value == "true"
		case "formatter":
			col.FormatterName = value
		case "options":
			dropdownOf(col).Options = strings.Split(value, "|")
		case "dict":
			dropdownOf(col).Dictionary = value
		case "depends":
			dropdownOf(col).DependsOn = value
		}
	}
}

func dropdownOf(col *ColumnConfig) *DropdownConfig {
	if col.Dropdown == nil {
		col.Dropdown = &DropdownConfig{}
	}
	return col.Dropdown
}

func extractValue(item reflect.Value, fieldName string) interface{} {
	if item.Kind() == reflect.Ptr || item.Kind() == reflect.Interface {
		item = item.Elem()
	}
	switch item.Kind() {
	case reflect.Struct:
		if f := item.FieldByName(fieldName); f.IsValid() {
			return f.Interface()
		}
	case reflect.Map:
		key := reflect.ValueOf(fieldName)
		if !key.Type().ConvertibleTo(item.Type().Key()) {
			return nil
		}
		if val := item.MapIndex(key.Convert(item.Type().Key())); val.IsValid() {
			return val.Interface()
		}
	}
	return nil
}
