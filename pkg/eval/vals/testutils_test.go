package vals

import (
	"time"

	"src.tide.sh/pkg/diag"
)

func i(n int64) Value { return Int{Val: n, Ranging: diag.NoRange} }

func f(x float64) Value { return Float{Val: x, Ranging: diag.NoRange} }

func s(v string) Value { return String{Val: v, Ranging: diag.NoRange} }

func b(v bool) Value { return Bool{Val: v, Ranging: diag.NoRange} }

func dur(d time.Duration) Value { return Duration{Val: d, Ranging: diag.NoRange} }

func size(n int64) Value { return Filesize{Val: n, Ranging: diag.NoRange} }

func list(vs ...Value) Value { return List{Vals: vs, Ranging: diag.NoRange} }

func rec(kvs ...any) Record {
	var rb RecordBuilder
	for k := 0; k < len(kvs); k += 2 {
		rb.Add(kvs[k].(string), FromGo(kvs[k+1]))
	}
	return rb.MustRecord()
}
