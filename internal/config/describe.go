package config

import (
	"strings"

	"github.com/zoobzio/sentinel"
)

// Field documents one option.
type Field struct {
	Name        string
	Type        string
	Description string
}

// Describe lists every option with its file key and description.
func Describe() []Field {
	metadata := sentinel.Inspect[Options]()

	fields := make([]Field, 0, len(metadata.Fields))
	for _, f := range metadata.Fields {
		fields = append(fields, Field{
			Name:        keyName(f),
			Type:        f.Type,
			Description: f.Tags["desc"],
		})
	}
	return fields
}

func keyName(f sentinel.FieldMetadata) string {
	for _, tag := range []string{"yaml", "json"} {
		if v, ok := f.Tags[tag]; ok {
			if name := strings.Split(v, ",")[0]; name != "" && name != "-" {
				return name
			}
		}
	}
	return f.Name
}
