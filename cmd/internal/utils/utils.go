package utils

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// EpochLayout is RFC3339 at the millisecond resolution timestamps are stored with.
const EpochLayout = "2006-01-02T15:04:05.000Z07:00"

func FormatEpoch(millis int64) string {
	return time.UnixMilli(millis).
		UTC().
		Format(EpochLayout)
}

func NowUTC() int64 {
	return time.Now().
		UTC().
		UnixMilli()
}

// Sanitize trims the string fields of the struct pointed by 'o', descending into
// nested structs and string slices. Fields tagged `sanitize:"-"` are left as sent.
func Sanitize(o any) {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("sanitize: expected pointer to struct, got %T", o))
	}
	trimStruct(v.Elem())
}

func trimStruct(v reflect.Value) {
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() || t.Field(i).Tag.Get("sanitize") == "-" {
			continue
		}
		trimValue(field)
	}
}

func trimValue(field reflect.Value) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(strings.TrimSpace(field.String()))

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return
		}
		for j := range field.Len() {
			trimValue(field.Index(j))
		}

	case reflect.Struct:
		trimStruct(field)

	case reflect.Pointer:
		if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
			trimStruct(field.Elem())
		}
	}
}
