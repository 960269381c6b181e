//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package platform

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"golang.org/x/sys/unix"

	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

const validUmaskMsg = "integer from 0 to 0o777"

// The umask can't be read without changing it, so it is read once at startup
// and mirrored here. Nothing else in the process may call unix.Umask.
var (
	umaskVal   int
	umaskMutex sync.RWMutex
)

func init() {
	// The temporary value is the most restrictive one.
	mask := unix.Umask(0o777)
	unix.Umask(mask)
	umaskVal = mask
}

func umask(_ *eval.Frame, call *eval.Call, _ stream.Data) (stream.Data, error) {
	v, given := call.Opt("mask")
	if !given {
		umaskMutex.RLock()
		defer umaskMutex.RUnlock()
		return stream.Single{Value: str(fmt.Sprintf("0o%03o", umaskVal))}, nil
	}
	mask, err := parseUmask(v)
	if err != nil {
		return nil, err
	}
	umaskMutex.Lock()
	defer umaskMutex.Unlock()
	logger.Printf("umask %03o -> %03o", umaskVal, mask)
	unix.Umask(mask)
	umaskVal = mask
	return stream.Empty{}, nil
}

// Strings are octal unless they have a base prefix like 0x.
func parseUmask(v vals.Value) (int, error) {
	var mask int
	switch v := v.(type) {
	case vals.String:
		i, err := strconv.ParseInt(v.Val, 8, 0)
		if err != nil {
			i, err = strconv.ParseInt(v.Val, 0, 0)
			if err != nil {
				return -1, errs.BadValue{What: "umask", Valid: validUmaskMsg, Actual: strconv.Quote(v.Val)}
			}
		}
		mask = int(i)
	case vals.Int:
		mask = int(v.Val)
	case vals.Float:
		intPart, fracPart := math.Modf(v.Val)
		if fracPart != 0 {
			return -1, errs.BadValue{What: "umask", Valid: validUmaskMsg, Actual: vals.Repr(v)}
		}
		mask = int(intPart)
	default:
		return -1, errs.BadValue{What: "umask", Valid: validUmaskMsg, Actual: vals.KindName(v)}
	}
	if mask < 0 || mask > 0o777 {
		return -1, errs.OutOfRange{What: "umask", ValidLow: 0, ValidHigh: 0o777,
			Actual: fmt.Sprintf("%O", mask)}
	}
	return mask, nil
}
