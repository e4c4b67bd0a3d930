package plan

import (
	"slices"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

// Accumulator collects resolved objects in discovery order.
// Duplicates are kept: an object named directly and swept up by a
// wildcard is copied twice, once per instruction.
type Accumulator struct {
	objects []s3types.ResolvedObject
}

// Add appends one resolved object.
func (a *Accumulator) Add(obj s3types.ResolvedObject) {
	a.objects = append(a.objects, obj)
}

// Len returns the number of objects collected so far.
func (a *Accumulator) Len() int {
	return len(a.objects)
}

// Sorted returns the objects ordered by destination key, byte-wise
// ascending, with equal keys left in discovery order.
func (a *Accumulator) Sorted() []s3types.ResolvedObject {
	sorted := slices.Clone(a.objects)
	slices.SortStableFunc(sorted, func(x, y s3types.ResolvedObject) int {
		return strings.Compare(x.DestinationKey, y.DestinationKey)
	})
	if sorted == nil {
		sorted = []s3types.ResolvedObject{}
	}
	return sorted
}
