package ca

import (
	"sort"
	"strings"
)

// Combo is a band combination an operator is known to deploy.
type Combo struct {
	Operator string   `json:"operator"`
	Class    string   `json:"class"` // "2CC".."4CC" or "5G_NSA"
	Bands    []string `json:"bands"`
	MaxBW    string   `json:"max_bw"`
	Speed    string   `json:"speed"` // advertised peak, informational only
}

// ClassNSA groups LTE+NR combinations in the catalog.
const ClassNSA = "5G_NSA"

// Catalog indexes combos by operator and by their order-insensitive band set.
type Catalog struct {
	byKey map[string]Combo
	all   []Combo
}

// NewCatalog builds a catalog. Later duplicates of the same operator and band
// set replace earlier ones.
func NewCatalog(combos []Combo) *Catalog {
	c := &Catalog{byKey: make(map[string]Combo, len(combos))}
	for _, combo := range combos {
		c.byKey[comboKey(combo.Operator, combo.Bands)] = combo
	}
	c.all = append(c.all, combos...)
	return c
}

// Match finds the combo for operator whose band set equals bands.
func (c *Catalog) Match(operator string, bands []string) (Combo, bool) {
	if c == nil || len(bands) == 0 {
		return Combo{}, false
	}
	combo, ok := c.byKey[comboKey(operator, bands)]
	return combo, ok
}

// ForOperator lists the combos of one operator in catalog order.
func (c *Catalog) ForOperator(operator string) []Combo {
	if c == nil {
		return nil
	}
	var out []Combo
	for _, combo := range c.all {
		if strings.EqualFold(combo.Operator, operator) {
			out = append(out, combo)
		}
	}
	return out
}

func comboKey(operator string, bands []string) string {
	sorted := make([]string, len(bands))
	copy(sorted, bands)
	sort.Strings(sorted)
	return strings.ToLower(strings.TrimSpace(operator)) + "|" + strings.Join(sorted, "+")
}

func combo(op, class, bands, bw, speed string) Combo {
	return Combo{Operator: op, Class: class, Bands: strings.Split(bands, "+"), MaxBW: bw, Speed: speed}
}

var indiaCombos = []Combo{
	combo("Jio", Class2CC, "B3+B40", "20+20=40MHz", "~300 Mbps"),
	combo("Jio", Class2CC, "B3+B41", "20+20=40MHz", "~300 Mbps"),
	combo("Jio", Class2CC, "B5+B40", "10+20=30MHz", "~225 Mbps"),
	combo("Jio", Class2CC, "B40+B41", "20+20=40MHz", "~300 Mbps"),
	combo("Jio", Class3CC, "B3+B40+B41", "20+20+20=60MHz", "~450 Mbps"),
	combo("Jio", Class3CC, "B5+B40+B41", "10+20+20=50MHz", "~375 Mbps"),
	combo("Jio", Class4CC, "B3+B5+B40+B41", "20+10+20+20=70MHz", "~525 Mbps"),
	combo("Jio", ClassNSA, "B3+n78", "20+100=120MHz", "~1.5 Gbps"),
	combo("Jio", ClassNSA, "B40+n78", "20+100=120MHz", "~1.5 Gbps"),
	combo("Jio", ClassNSA, "B3+B40+n78", "20+20+100=140MHz", "~1.8 Gbps"),

	combo("Airtel", Class2CC, "B1+B3", "10+20=30MHz", "~225 Mbps"),
	combo("Airtel", Class2CC, "B3+B40", "20+20=40MHz", "~300 Mbps"),
	combo("Airtel", Class2CC, "B1+B40", "10+20=30MHz", "~225 Mbps"),
	combo("Airtel", Class2CC, "B3+B8", "20+10=30MHz", "~225 Mbps"),
	combo("Airtel", Class3CC, "B1+B3+B40", "10+20+20=50MHz", "~375 Mbps"),
	combo("Airtel", Class3CC, "B3+B8+B40", "20+10+20=50MHz", "~375 Mbps"),
	combo("Airtel", ClassNSA, "B3+n78", "20+100=120MHz", "~1.5 Gbps"),
	combo("Airtel", ClassNSA, "B1+n78", "10+100=110MHz", "~1.4 Gbps"),
	combo("Airtel", ClassNSA, "B1+B3+n78", "10+20+100=130MHz", "~1.6 Gbps"),

	combo("Vi", Class2CC, "B1+B3", "10+20=30MHz", "~225 Mbps"),
	combo("Vi", Class2CC, "B3+B8", "20+10=30MHz", "~225 Mbps"),
	combo("Vi", Class3CC, "B1+B3+B8", "10+20+10=40MHz", "~300 Mbps"),
	combo("Vi", ClassNSA, "B3+n78", "20+100=120MHz", "~1.5 Gbps"),
}

// IndiaCatalog returns the combinations deployed by Indian operators.
func IndiaCatalog() *Catalog {
	return NewCatalog(indiaCombos)
}
