package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cellintel/band"
	"cellintel/ca"
	"cellintel/cell"
	"cellintel/operator"
)

func main() {
	operatorsPath := flag.String("operators", "", "operator table (yaml or plist); built-in India table when empty")
	overlap := flag.String("nr-overlap", "n78", "band reported for the shared n77/n78 span (n77 or n78)")
	flag.Parse()

	policy, err := band.ParseOverlapPolicy(*overlap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	ops := operator.India()
	if *operatorsPath != "" {
		ops, err = operator.LoadFile(*operatorsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading operator table: %v\n", err)
			os.Exit(1)
		}
	}
	resolver := band.NewResolver(policy)
	catalog := ca.IndiaCatalog()

	fmt.Printf("loaded %d operator entries, NR overlap prefers %s\n", ops.Len(), policy)
	fmt.Println("enter '<rat> <channel>', '<mcc> <mnc>' or 'ca <operator>' (Ctrl+C to quit)")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		out, err := lookupLine(resolver, ops, catalog, line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(out)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "input error: %v\n", err)
	}
}

var errUsage = errors.New("want '<rat> <channel>', '<mcc> <mnc>' or 'ca <operator>'")

// lookupLine answers one query. A leading RAT tag selects a band lookup, two
// bare integers select an operator lookup and "ca <operator>" lists the
// operator's known carrier aggregation combos.
func lookupLine(resolver *band.Resolver, ops *operator.Table, catalog *ca.Catalog, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) >= 2 && strings.EqualFold(fields[0], "ca") {
		return comboLines(ops, catalog, strings.Join(fields[1:], " "))
	}
	if len(fields) != 2 {
		return "", errUsage
	}
	second, err := strconv.Atoi(fields[1])
	if err != nil {
		return "", errUsage
	}
	if first, err := strconv.Atoi(fields[0]); err == nil {
		return fmt.Sprintf("%03d-%02d -> %s", first, second, ops.Resolve(first, second)), nil
	}
	rat := cell.ParseRAT(fields[0])
	if rat == cell.Unknown {
		return "", fmt.Errorf("unknown RAT %q", fields[0])
	}
	b := resolver.Resolve(rat, &second)
	if !b.Known() {
		return fmt.Sprintf("%s %d -> no matching band", rat, second), nil
	}
	out := fmt.Sprintf("%s %d -> band=%s, freq=%d MHz, duplex=%s", rat, second, b.ID, b.FrequencyMHz, b.Duplex)
	if len(b.Alternates) > 0 {
		out += ", also=" + strings.Join(b.Alternates, "/")
	}
	return out, nil
}

func comboLines(ops *operator.Table, catalog *ca.Catalog, name string) (string, error) {
	brand, ok := ops.Match(name)
	if !ok {
		if guess, found := ops.Suggest(name); found {
			return "", fmt.Errorf("unknown operator %q (did you mean %q?)", name, guess)
		}
		return "", fmt.Errorf("unknown operator %q", name)
	}
	combos := catalog.ForOperator(brand)
	if len(combos) == 0 {
		return fmt.Sprintf("%s -> no known combos", brand), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %d known combos", brand, len(combos))
	for _, c := range combos {
		fmt.Fprintf(&b, "\n  %-6s %-14s %-20s %s", c.Class, strings.Join(c.Bands, "+"), c.MaxBW, c.Speed)
	}
	return b.String(), nil
}
