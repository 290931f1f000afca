package operator

func span(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for v := from; v <= to; v++ {
		out = append(out, v)
	}
	return out
}

var indiaEntries = []Entry{
	{Brand: "Airtel", MCC: 404, MNCs: []int{2, 3, 10, 31, 40, 45, 49, 70, 90, 92, 93, 94, 95, 96, 97, 98}},
	{Brand: "Airtel", MCC: 405, MNCs: span(51, 56)},
	{Brand: "Vi", MCC: 404, MNCs: []int{4, 5, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 24, 25, 27, 28, 30, 43, 46, 56, 60, 78, 82, 84, 86, 87, 88, 89}},
	{Brand: "Jio", MCC: 405, MNCs: append([]int{840}, span(854, 874)...)},
	{Brand: "BSNL", MCC: 404, MNCs: []int{34, 36, 38, 51, 52, 53, 54, 55, 57, 58, 59, 62, 64, 66, 71, 72, 73, 74, 75, 76, 77, 79, 80, 81}},
	{Brand: "MTNL Delhi", MCC: 404, MNCs: []int{68}},
	{Brand: "MTNL Mumbai", MCC: 404, MNCs: []int{69}},
}

// India returns the built-in table of Indian carriers, used when no region
// table is configured.
func India() *Table {
	t, err := NewTable(indiaEntries)
	if err != nil {
		panic(err)
	}
	return t
}
