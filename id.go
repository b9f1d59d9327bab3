package tenure

import "github.com/xraph/tenure/id"

// ID is the primary identifier type for all Tenure entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
