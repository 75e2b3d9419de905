package engine

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/abhisek/sleuth/internal/api"
)

// SameResult reports whether two results hold the same data: the column
// sets are equal and, with columns taken in sorted order, the multisets of
// row tuples are equal. Column and row order do not matter.
func SameResult(got, want *api.QueryResult) bool {
	if len(got.Columns) != len(want.Columns) || len(got.Rows) != len(want.Rows) {
		return false
	}
	cols := slices.Clone(got.Columns)
	slices.Sort(cols)
	wantCols := slices.Clone(want.Columns)
	slices.Sort(wantCols)
	if !slices.Equal(cols, wantCols) {
		return false
	}
	return slices.Equal(rowKeys(got.Rows, cols), rowKeys(want.Rows, cols))
}

func rowKeys(rows []api.Row, cols []string) []string {
	keys := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for _, c := range cols {
			b.WriteString(canonical(row[c]))
			b.WriteByte(0x1f)
		}
		keys[i] = b.String()
	}
	slices.Sort(keys)
	return keys
}

// canonical renders a value so that equal SQL values compare equal as
// strings. Integral floats are written like integers.
func canonical(v any) string {
	switch x := v.(type) {
	case nil:
		return "\x00null"
	case int64:
		return "n" + strconv.FormatInt(x, 10)
	case int:
		return "n" + strconv.Itoa(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return "n" + strconv.FormatInt(int64(x), 10)
		}
		return "n" + strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "n1"
		}
		return "n0"
	case string:
		return "s" + x
	case []byte:
		return "s" + string(x)
	default:
		return "s" + fmt.Sprint(x)
	}
}
