package tenant

import "strings"

const schemaPrefix = "tenant_"

// maxIdentifier is PostgreSQL's limit for unquoted identifiers.
const maxIdentifier = 63

// ResolveSchema derives the physical schema name for a tenant id.
// Pure string work; validation happens here, never via a query. The same id
// always yields the same schema name.
func ResolveSchema(tenantID string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(tenantID))
	if id == "" {
		return "", ErrInvalidTenantID
	}

	var b strings.Builder
	b.WriteString(schemaPrefix)
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '-':
			b.WriteByte('_')
		default:
			return "", ErrInvalidTenantID
		}
	}

	if b.Len() > maxIdentifier {
		return "", ErrInvalidTenantID
	}
	return b.String(), nil
}

// validSchemaName reports whether a stored schema name is safe to embed in a
// statement. Same character set ResolveSchema produces.
func validSchemaName(name string) bool {
	if name == "" || len(name) > maxIdentifier {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
