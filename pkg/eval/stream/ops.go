package stream

import "src.tide.sh/pkg/eval/vals"

// Map makes a stream whose elements are f applied to the elements of in. An
// error from f ends the stream.
func Map(intr <-chan struct{}, in *Values, f func(vals.Value) (vals.Value, error)) *Values {
	return NewValues(intr, func() (vals.Value, bool, error) {
		v, ok := in.Next()
		if !ok {
			return nil, false, in.Err()
		}
		out, err := f(v)
		if err != nil {
			return nil, false, err
		}
		return out, true, nil
	}, in.Close)
}

// Filter makes a stream of the elements of in for which keep returns true.
func Filter(intr <-chan struct{}, in *Values, keep func(vals.Value) (bool, error)) *Values {
	return NewValues(intr, func() (vals.Value, bool, error) {
		for {
			v, ok := in.Next()
			if !ok {
				return nil, false, in.Err()
			}
			k, err := keep(v)
			if err != nil {
				return nil, false, err
			}
			if k {
				return v, true, nil
			}
		}
	}, in.Close)
}

// Take makes a stream of at most the first n elements of in. It stops pulling
// from in after n elements, so in may be unbounded.
func Take(intr <-chan struct{}, in *Values, n int) *Values {
	taken := 0
	return NewValues(intr, func() (vals.Value, bool, error) {
		if taken >= n {
			return nil, false, nil
		}
		v, ok := in.Next()
		if !ok {
			return nil, false, in.Err()
		}
		taken++
		return v, true, nil
	}, in.Close)
}

// Skip makes a stream of the elements of in after the first n.
func Skip(intr <-chan struct{}, in *Values, n int) *Values {
	skipped := false
	return NewValues(intr, func() (vals.Value, bool, error) {
		if !skipped {
			skipped = true
			for i := 0; i < n; i++ {
				if _, ok := in.Next(); !ok {
					return nil, false, in.Err()
				}
			}
		}
		v, ok := in.Next()
		if !ok {
			return nil, false, in.Err()
		}
		return v, true, nil
	}, in.Close)
}
