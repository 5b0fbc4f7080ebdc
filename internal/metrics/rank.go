package metrics

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// Row is one file's measurements keyed by metric name. Rank is set by
// Rank; files with equal values share a rank.
type Row struct {
	Path   string
	Rank   int
	Values map[string]Value
}

// Measure computes defs over the document.
func (d *Document) Measure(defs []Definition) Row {
	values := make(map[string]Value, len(defs))
	for _, def := range defs {
		values[def.Name] = def.Compute(d)
	}
	return Row{Path: d.Path, Values: values}
}

// Collect reads and measures every path in parallel. Rows keep the order
// of paths.
func Collect(ctx context.Context, paths []string, defs []Definition) ([]Row, error) {
	rows := make([]Row, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := ReadDocument(path)
			if err != nil {
				return err
			}
			rows[i] = doc.Measure(defs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Rank orders rows by the metric by and numbers them. Files where the
// metric does not apply go last. Ties keep their input order and share
// a rank, so the following rank skips ahead ("1, 1, 3").
func Rank(rows []Row, by Definition, order Order) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		va, vb := a.Values[by.Name], b.Values[by.Name]
		switch {
		case va.Valid != vb.Valid:
			if va.Valid {
				return -1
			}
			return 1
		case !va.Valid:
			return 0
		}
		if order == OrderAsc {
			return cmp.Compare(va.N, vb.N)
		}
		return cmp.Compare(vb.N, va.N)
	})
	for i := range rows {
		rows[i].Rank = i + 1
		if i > 0 && sameValue(rows[i-1].Values[by.Name], rows[i].Values[by.Name]) {
			rows[i].Rank = rows[i-1].Rank
		}
	}
}

func sameValue(a, b Value) bool {
	return a.Valid == b.Valid && a.N == b.N
}

// Top keeps the rows ranked n or better, so a tie at the cut-off is kept
// whole. n <= 0 keeps everything.
func Top(rows []Row, n int) []Row {
	if n <= 0 {
		return rows
	}
	for i, r := range rows {
		if r.Rank > n {
			return rows[:i]
		}
	}
	return rows
}

// Format renders v for a table cell: counts as integers, ratios as
// percentages, flags as yes/no and missing values as "-".
func Format(def Definition, v Value) string {
	if !v.Valid {
		return "-"
	}
	switch def.Kind {
	case KindRatio:
		return fmt.Sprintf("%.1f%%", v.N*100)
	case KindFlag:
		if v.N != 0 {
			return "yes"
		}
		return "no"
	default:
		return strconv.FormatInt(int64(math.Round(v.N)), 10)
	}
}

// JSON returns v as a JSON scalar: an integer, a ratio rounded to three
// decimals, a bool, or nil when missing.
func JSON(def Definition, v Value) any {
	if !v.Valid {
		return nil
	}
	switch def.Kind {
	case KindRatio:
		return math.Round(v.N*1000) / 1000
	case KindFlag:
		return v.N != 0
	default:
		return int64(math.Round(v.N))
	}
}
