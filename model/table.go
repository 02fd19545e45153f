package model

// TableSchema is a Model's optional relational-table derivation: it adds
// deleted_, designates id_ as primary key, and indexes t — the shape a
// relational backend needs to create/verify its table, per spec.md §4.1.
type TableSchema struct {
	ModelName    string
	PrimaryKey   string   // always "id_"
	IndexedField string   // always "t"
	Columns      []Column // declared fields plus the reserved ones
}

// Column is one column of a TableSchema.
type Column struct {
	Name     string
	Kind     Kind
	Required bool
}

// AsTableSchema derives m's relational-table representation. The result is
// cached on first call.
func (m *Model) AsTableSchema() *TableSchema {
	if m.table != nil {
		return m.table
	}
	cols := make([]Column, 0, len(m.Fields)+3)
	cols = append(cols, Column{Name: "id_", Kind: KindString, Required: true})
	cols = append(cols, Column{Name: "t", Kind: KindInt, Required: true})
	cols = append(cols, Column{Name: "deleted_", Kind: KindBool, Required: false})
	for _, f := range m.Fields {
		cols = append(cols, Column{Name: f.Name, Kind: f.Kind, Required: f.Required})
	}
	m.table = &TableSchema{
		ModelName:    m.Name,
		PrimaryKey:   "id_",
		IndexedField: "t",
		Columns:      cols,
	}
	return m.table
}
