package postgres

// sortColumn maps an API sort field to a real column name.
// Unknown fields fall back to def, so user input never reaches SQL verbatim
func sortColumn(allowed map[string]string, field string, def string) string {
	if col, ok := allowed[field]; ok {
		return col
	}
	return def
}

func sortDirection(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}
