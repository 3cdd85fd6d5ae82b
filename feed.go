package trading

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
)

// DecodeFeed extracts bars out of an arbitrary provider JSON payload.
//
// Providers rarely agree on an envelope, but the row shape is always the
// same: 'path' is a JSONPath expression selecting a list of rows, each row a
// list of at least six numbers [timestamp, open, high, low, close, volume].
// For example "$.series.daily.data" on:
//
//	{"series":{"daily":{"data":[[1700000000, 1.5, 2.5, 1.0, 2.0, 300], ...]}}}
func DecodeFeed(r io.Reader, path string) ([]Bar, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("cannot parse feed payload: %w", err)
	}

	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("cannot evaluate feed path %q: %w", path, err)
	}

	rows, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("feed path %q must select a list of rows, got %T", path, jval)
	}

	bars := make([]Bar, 0, len(rows))
	for i, row := range rows {
		cells, ok := row.([]any)
		if !ok || len(cells) < 6 {
			return nil, fmt.Errorf("feed row %d must be a list of at least 6 numbers", i)
		}
		nums := make([]float64, 6)
		for c := range nums {
			v, ok := cells[c].(float64)
			if !ok {
				return nil, fmt.Errorf("feed row %d cell %d is not a number: %v", i, c, cells[c])
			}
			nums[c] = v
		}
		bars = append(bars, NewBar(int64(nums[0]), nums[1], nums[2], nums[3], nums[4], uint64(nums[5])))
	}
	return bars, nil
}
