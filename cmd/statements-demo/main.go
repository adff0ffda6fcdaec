package main

import (
	"context"
	"fmt"
	"os"

	"github.com/RxDataLab/go-xbrl"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <bundle-dir> [statement]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Parses an XBRL bundle directory (schema, linkbases, instance) and\n")
		fmt.Fprintf(os.Stderr, "prints the resolved financial statements as JSON.\n\n")
		fmt.Fprintf(os.Stderr, "Statements: BalanceSheet IncomeStatement CashFlowStatement\n")
		fmt.Fprintf(os.Stderr, "            StatementOfEquity ComprehensiveIncome (default: all)\n")
		os.Exit(1)
	}

	dir := os.Args[1]
	fmt.Fprintf(os.Stderr, "Loading bundle: %s\n", dir)

	filing, err := xbrl.ParseBundle(context.Background(), xbrl.DirSource{Dir: dir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing bundle: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "✓ Parsed %s (%s, period ending %s)\n",
		filing.Doc.EntityName, filing.Doc.FormType, filing.Doc.PeriodEndDate.Format("2006-01-02"))
	fmt.Fprintf(os.Stderr, "  Contexts: %d  Units: %d  Facts: %d  Roles: %d\n\n",
		len(filing.Contexts), len(filing.Units), len(filing.Facts.Facts), len(filing.Roles))

	types := []xbrl.StatementType{
		xbrl.BalanceSheet,
		xbrl.IncomeStatement,
		xbrl.CashFlowStatement,
		xbrl.StatementOfEquity,
		xbrl.ComprehensiveIncome,
	}
	if len(os.Args) > 2 {
		types = []xbrl.StatementType{xbrl.StatementType(os.Args[2])}
	}

	for _, t := range types {
		stmt, err := filing.Statement(t, xbrl.StatementOptions{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", t, err)
			continue
		}
		data, err := stmt.JSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", t, err)
			continue
		}
		fmt.Println(string(data))
	}
}
