package converter

import (
	"github.com/ginjaninja78/po-export/internal/types"
)

// Aggregate builds the order document for a set of normalized items. The
// grand total is the sum of the source line totals, not price times quantity.
func Aggregate(items []types.LineItem) *types.Document {
	return types.NewDocument(items)
}
