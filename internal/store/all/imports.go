// Package all wires every built-in store backend into the store factory.
//
// The package exists purely for side effects: a blank import runs the init
// functions of each backend, which register their factories with the store
// package. Binaries that only need a subset can import individual backend
// packages instead.
package all

import (
	_ "fundquery/internal/store/mssql"
	_ "fundquery/internal/store/mysql"
	_ "fundquery/internal/store/postgres"
	_ "fundquery/internal/store/sqlite"
)
