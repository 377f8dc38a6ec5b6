package feeledger

import "github.com/xraph/feeledger/id"

// ID is the identifier type for journal events, snapshots and ledgers.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
