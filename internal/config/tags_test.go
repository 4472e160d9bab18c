package config

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTag(t *testing.T) {
	type input struct {
		URL     string   `petal:"url"`
		Limit   int      `petal:"limit,optional"`
		Tags    []string `petal:",optional"`
		Ignored string   `petal:"-"`
		Plain   bool
		Empty   string `petal:""`
	}

	tests := []struct {
		field        string
		wantName     string
		wantOptional bool
	}{
		{"URL", "url", false},
		{"Limit", "limit", true},
		{"Tags", "Tags", true},
		{"Ignored", "-", false},
		{"Plain", "Plain", false},
		{"Empty", "Empty", false},
	}
	typ := reflect.TypeOf(input{})
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f, ok := typ.FieldByName(tt.field)
			assert.True(t, ok)
			name, optional := ParseTag(f)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantOptional, optional)
		})
	}
}
