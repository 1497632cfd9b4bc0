package internal

import "fmt"

// UnknownCategory is returned when gender, age or weight is not known.
const UnknownCategory = "-"

type ageBand struct {
	maxAge int // inclusive; bands are checked in ascending order
	label  string
	breaks []int // ascending weight breakpoints [kg]
}

const openAge = 1 << 30

// Official WKF category tables. Labels are the federation's Czech names.
var femaleBands = []ageBand{
	{11, "Mladší žákyně", []int{35}},
	{13, "Starší žákyně", []int{42, 50}},
	{15, "Dorostenky", []int{47, 54}},
	{17, "Juniorky", []int{48, 53, 59}},
	{openAge, "Ženy", []int{50, 55, 61, 68}},
}

var maleBands = []ageBand{
	{11, "Mladší žáci", []int{30, 35, 41}},
	{13, "Starší žáci", []int{39, 45, 52, 60}},
	{15, "Dorostenci", []int{52, 57, 63, 70}},
	{17, "Junioři", []int{55, 61, 68, 76}},
	{openAge, "Muži", []int{60, 67, 75, 84}},
}

// Category returns the WKF competition category label for a person, e.g.
// "Juniorky, -53kg" or "Muži, +84kg". Any missing attribute yields
// UnknownCategory. Anything other than gender "F" uses the male tables.
func Category(gender string, age *int, weight *float64) string {
	if gender == "" || age == nil || weight == nil {
		return UnknownCategory
	}
	bands := maleBands
	if gender == "F" {
		bands = femaleBands
	}
	for _, b := range bands {
		if *age <= b.maxAge {
			return b.label + weightCategory(b.breaks, *weight)
		}
	}
	return UnknownCategory // unreachable, last band is open-ended
}

// weightCategory picks the lowest breakpoint above the weight; at or above
// the top breakpoint the open "+" category applies.
func weightCategory(breaks []int, weight float64) string {
	for _, b := range breaks {
		if weight < float64(b) {
			return fmt.Sprintf(", -%dkg", b)
		}
	}
	return fmt.Sprintf(", +%dkg", breaks[len(breaks)-1])
}
