package migrations

import "embed"

// FS contiene las migraciones SQL del esquema de módulos y permisos.
//
//go:embed *.sql
var FS embed.FS
