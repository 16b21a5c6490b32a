package utils

import (
	"fmt"
	"reflect"
)

var ColumnTag = "db"

// StructTagValues returns the db column names declared on a struct,
// walking embedded structs so composed rows (e.g. a pickup with its
// collector block) flatten into one column list.
func StructTagValues(input any) []string {

	targetValue := reflect.ValueOf(input)
	if targetValue.Kind() == reflect.Ptr {
		targetValue = targetValue.Elem()
	}

	if targetValue.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	targetType := targetValue.Type()

	result := make([]string, 0, targetValue.NumField())

	for i := 0; i < targetValue.NumField(); i++ {

		field := targetType.Field(i)
		if field.PkgPath != "" {
			continue
		}

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			result = append(result, StructTagValues(targetValue.Field(i).Interface())...)
			continue
		}

		tagValue := field.Tag.Get(ColumnTag)
		if tagValue == "" || tagValue == "-" {
			continue
		}

		result = append(result, tagValue)

	}

	return result

}

// StructToMap maps db column names to field values, flattening
// embedded structs the same way StructTagValues does.
func StructToMap(input any) map[string]any {

	result := make(map[string]any)

	itemValue := reflect.ValueOf(input)
	if itemValue.Kind() == reflect.Ptr {
		itemValue = itemValue.Elem()
	}

	if itemValue.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	itemType := itemValue.Type()

	for i := 0; i < itemValue.NumField(); i++ {

		field := itemType.Field(i)
		if field.PkgPath != "" {
			continue
		}

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			for k, v := range StructToMap(itemValue.Field(i).Interface()) {
				result[k] = v
			}
			continue
		}

		tagValue := field.Tag.Get(ColumnTag)
		if tagValue == "" || tagValue == "-" {
			continue
		}

		result[tagValue] = itemValue.Field(i).Interface()

	}

	return result

}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)

}
