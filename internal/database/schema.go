package database

import _ "embed"

// tenantSchema is the setup script a tenant runs by hand against their own
// database instance. Served verbatim by the schema endpoint; there is no
// migrations engine on the tenant side.
//
//go:embed schema.sql
var tenantSchema string

// TenantSchema returns the literal contents of the bundled schema script.
func TenantSchema() string {
	return tenantSchema
}
