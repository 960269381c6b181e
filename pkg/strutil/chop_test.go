package strutil

import (
	"testing"

	"src.tide.sh/pkg/tt"
)

func TestChopLineEnding(t *testing.T) {
	tt.Test(t, tt.Fn("ChopLineEnding", ChopLineEnding), tt.Table{
		tt.Args("").Rets(""),
		tt.Args("text").Rets("text"),
		tt.Args("text\n").Rets("text"),
		tt.Args("text\r\n").Rets("text"),
		tt.Args("text\n\n").Rets("text\n"),
		tt.Args("text\r").Rets("text\r"),
	})
}

func TestSplitLines(t *testing.T) {
	tt.Test(t, tt.Fn("SplitLines", SplitLines), tt.Table{
		tt.Args("").Rets([]string(nil)),
		tt.Args("a\nb\nc\n").Rets([]string{"a", "b", "c"}),
		tt.Args("a\r\nb").Rets([]string{"a", "b"}),
		tt.Args("\n\n").Rets([]string{"", ""}),
	})
}
