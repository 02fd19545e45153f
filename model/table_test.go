package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsTableSchemaIncludesReservedColumns(t *testing.T) {
	m := New("widget", Field{Name: "name", Kind: KindString, Required: true})
	schema := m.AsTableSchema()

	assert.Equal(t, "widget", schema.ModelName)
	assert.Equal(t, "id_", schema.PrimaryKey)
	assert.Equal(t, "t", schema.IndexedField)

	names := make([]string, 0, len(schema.Columns))
	for _, c := range schema.Columns {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "id_")
	assert.Contains(t, names, "t")
	assert.Contains(t, names, "deleted_")
	assert.Contains(t, names, "name")
}

func TestAsTableSchemaIsCached(t *testing.T) {
	m := New("widget")
	first := m.AsTableSchema()
	second := m.AsTableSchema()
	assert.Same(t, first, second)
}
