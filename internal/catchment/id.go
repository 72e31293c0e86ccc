package catchment

import (
	"fmt"

	"github.com/google/uuid"
)

// DefaultNamespace seeds the v5 row ids so re-imports of the same file produce
// the same keys.
var DefaultNamespace = uuid.MustParse("6f1c3d52-8f4e-5b7a-9c0d-2e3f4a5b6c7d")

func v5(ns uuid.UUID, name string) uuid.UUID {
	return uuid.NewSHA1(ns, []byte(name))
}

// RowID derives a stable id from the row content and its source line.
func RowID(ns uuid.UUID, r Row) uuid.UUID {
	return v5(ns, fmt.Sprintf("row:%d:%s:%s:%s:%s", r.Line, r.LocalityKey, r.EstablishmentID, r.Street(), r.Parity))
}
