package ui

// rowUnits is how many layout units one terminal row stands for. Card
// heights and scroll thresholds are given in layout units.
const rowUnits = 30

// Card height bounds in rows.
const (
	minCardRows = 5
	maxCardRows = 10
)

// cardGap is the number of blank rows between cards in a column.
const cardGap = 1

// Placement is a card's slot in the waterfall, in rows from the top of the
// scrollable content.
type Placement struct {
	Column int // 0 = left, 1 = right
	Top    int
	Height int
}

// cardRows converts a card height in layout units to rows.
func cardRows(units int) int {
	rows := units / rowUnits
	if rows < minCardRows {
		return minCardRows
	}
	if rows > maxCardRows {
		return maxCardRows
	}
	return rows
}

// Waterfall places cards of the given row heights into two columns. Each
// card goes to the currently shorter column, the left one on ties. It
// returns the placements in input order and the content height in rows.
func Waterfall(heights []int, gap int) ([]Placement, int) {
	var cols [2]int
	out := make([]Placement, len(heights))
	for i, h := range heights {
		c := 0
		if cols[1] < cols[0] {
			c = 1
		}
		out[i] = Placement{Column: c, Top: cols[c], Height: h}
		cols[c] += h + gap
	}
	total := max(cols[0], cols[1])
	if total > 0 {
		total -= gap
	}
	return out, total
}
