package util

import (
	"github.com/asecurityteam/rolling"
)

func CreateRollingWindow(size int) *rolling.PointPolicy {
	return rolling.NewPointPolicy(rolling.NewWindow(size))
}

// GetWindowAvg returns the average of all points currently stored in the window
func GetWindowAvg(window *rolling.PointPolicy) float64 {
	return window.Reduce(rolling.Avg)
}

// GetWindowPoint returns the point stored in the bucket at the given offset,
// or 0 if that bucket has not received a point yet.
func GetWindowPoint(window *rolling.PointPolicy, offset int) float64 {
	return window.Reduce(func(w rolling.Window) float64 {
		bucket := w[offset]
		if len(bucket) <= 0 {
			return 0
		}
		return bucket[0]
	})
}
