// Package all registers every storage backend with the factory.
// Binaries blank-import it so config alone selects the backend.
package all

import (
	_ "dq/internal/storage/mssql"
	_ "dq/internal/storage/postgres"
	_ "dq/internal/storage/sqlite"
)
