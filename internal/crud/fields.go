package crud

// OrEmptyObject substitutes an empty object for a nil map so jsonb columns
// never receive SQL NULL from an omitted payload field.
func OrEmptyObject(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// OrEmptyList does the same for jsonb array columns.
func OrEmptyList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ValidatePatchEnum checks an enum column inside a partial update, where the
// value arrives as decoded JSON rather than a typed request field.
func ValidatePatchEnum(fields Fields, col string, allowed []string) error {
	v, ok := fields[col]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return &ValidationError{Field: col, Reason: "must be a string"}
	}
	if _, err := Enum(col, s, "", allowed...); err != nil {
		return err
	}
	if s == "" {
		return &ValidationError{Field: col, Reason: "cannot be cleared"}
	}
	return nil
}
