package tensor

import "time"

// #region dimensions
const (
	// SegmentWidth is the length of each named dimension vector.
	SegmentWidth = 1024
	// SegmentCount is the number of named dimensions in the identity state.
	SegmentCount = 8
	// FlatSize is the length of the concatenated state vector.
	FlatSize = SegmentWidth * SegmentCount
)

// MinSegmentNorm is the floor below which a dimension vector counts as degenerate.
const MinSegmentNorm = 1e-6

// #endregion dimensions

// #region segment-map
// SegmentMap defines the named 1024-wide ranges within the flat state vector.
// The first three are the Peircean registers; the remaining five carry affect,
// intention, relational context, attentional salience and axiological commitments.
type SegmentMap struct {
	Firstness    [2]int `json:"firstness"`    // [0, 1024)
	Secondness   [2]int `json:"secondness"`   // [1024, 2048)
	Thirdness    [2]int `json:"thirdness"`    // [2048, 3072)
	Dispositions [2]int `json:"dispositions"` // [3072, 4096)
	Orientations [2]int `json:"orientations"` // [4096, 5120)
	Engagements  [2]int `json:"engagements"`  // [5120, 6144)
	Pertinences  [2]int `json:"pertinences"`  // [6144, 7168)
	Valeurs      [2]int `json:"valeurs"`      // [7168, 8192)
}

// SegmentNames lists the eight dimensions in flat-vector order.
var SegmentNames = []string{
	"firstness", "secondness", "thirdness", "dispositions",
	"orientations", "engagements", "pertinences", "valeurs",
}

// DefaultSegmentMap returns the standard 8-segment layout.
func DefaultSegmentMap() SegmentMap {
	var m SegmentMap
	ranges := [SegmentCount][2]int{}
	for i := range ranges {
		ranges[i] = [2]int{i * SegmentWidth, (i + 1) * SegmentWidth}
	}
	m.Firstness = ranges[0]
	m.Secondness = ranges[1]
	m.Thirdness = ranges[2]
	m.Dispositions = ranges[3]
	m.Orientations = ranges[4]
	m.Engagements = ranges[5]
	m.Pertinences = ranges[6]
	m.Valeurs = ranges[7]
	return m
}

// Range returns the [lo, hi) bounds for a named segment.
// The second return is false for unknown names.
func (m SegmentMap) Range(name string) ([2]int, bool) {
	switch name {
	case "firstness":
		return m.Firstness, true
	case "secondness":
		return m.Secondness, true
	case "thirdness":
		return m.Thirdness, true
	case "dispositions":
		return m.Dispositions, true
	case "orientations":
		return m.Orientations, true
	case "engagements":
		return m.Engagements, true
	case "pertinences":
		return m.Pertinences, true
	case "valeurs":
		return m.Valeurs, true
	}
	return [2]int{}, false
}

// #endregion segment-map

// #region state-tensor
// StateTensor is the agent's identity at a discrete tick. It is a value type:
// any operation that would change it returns a new tensor with StateID+1.
// Every segment holds unit L2 norm at rest.
type StateTensor struct {
	StateID   int64
	Segments  SegmentMap
	Vector    [FlatSize]float32
	CreatedAt time.Time
}

// #endregion state-tensor
