package numutil

import "golang.org/x/exp/constraints"

type Number interface {
	constraints.Float | constraints.Integer
}

func Sum[T Number](xs []T) (r T) {
	for i := range xs {
		r += xs[i]
	}
	return
}

// Clamp restricts x to [lo, hi]. Callers are responsible for lo <= hi.
func Clamp[T constraints.Ordered](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Argmax[T constraints.Ordered](xs []T) (argmax int) {
	for i := range xs {
		if xs[i] > xs[argmax] {
			argmax = i
		}
	}
	return
}
