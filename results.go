package docbind

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// SearchResults is one page of Filter results.
//
// Count is the exact number of wrapped hits; Total is the service's
// estimated total match count and may exceed Count for large result
// sets (tune SearchRequest.CheckAtLeast for estimation accuracy).
type SearchResults struct {
	Models       []*Model
	Count        int
	Total        int
	Aggregations json.RawMessage // nil when the server returned none
}

// Aggregation reads a path out of the opaque aggregations payload,
// e.g. res.Aggregation("price_stats.avg"). The zero gjson.Result is
// returned when there are no aggregations or the path does not exist.
func (r *SearchResults) Aggregation(path string) gjson.Result {
	if len(r.Aggregations) == 0 {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.Aggregations, path)
}

// HasAggregations reports whether the server returned an aggregations
// payload at all.
func (r *SearchResults) HasAggregations() bool {
	return len(r.Aggregations) > 0
}
