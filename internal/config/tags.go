package config

import (
	"reflect"
	"strings"
)

// TagName is the struct tag drivers use to name their arguments.
const TagName = "petal"

// ParseTag reads a field's `petal:"name[,optional]"` tag. A field without a
// tag is addressed by its Go name and is required. A name of "-" means the
// field is not an argument.
func ParseTag(field reflect.StructField) (name string, optional bool) {
	tag, ok := field.Tag.Lookup(TagName)
	if !ok || tag == "" {
		return field.Name, false
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = field.Name
	}
	for _, p := range parts[1:] {
		if p == "optional" {
			optional = true
		}
	}
	return name, optional
}
