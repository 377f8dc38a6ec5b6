package snapshot

import (
	"time"

	"github.com/xraph/feeledger/balance"
	"github.com/xraph/feeledger/fee"
	"github.com/xraph/feeledger/id"
	"github.com/xraph/feeledger/proposal"
	"github.com/xraph/feeledger/role"
)

// Snapshot is the whole ledger aggregate at event Seq.
type Snapshot struct {
	ID        id.SnapshotID `json:"id"`
	Ledger    string        `json:"ledger"`
	Seq       uint64        `json:"seq"`
	State     State         `json:"state"`
	CreatedAt time.Time     `json:"created_at"`
}

type State struct {
	Name      string         `json:"name"`
	Symbol    string         `json:"symbol"`
	Accounts  balance.State  `json:"accounts"`
	Fees      fee.State      `json:"fees"`
	Roles     role.State     `json:"roles"`
	Proposals proposal.State `json:"proposals"`
}
