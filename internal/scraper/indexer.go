package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/dictscrape/internal/htmltext"
	"github.com/go-scripts/dictscrape/internal/types"
)

// IndexVariables scans the listing view for all variables in document
// order. A data row has at least one link cell and no header cell; other
// rows (headers, separators) are skipped. One bad row never aborts the
// scan. The returned order is the canonical processing order for the
// rest of the run.
func IndexVariables(doc *goquery.Document, logger *log.Logger) []types.VariableSummary {
	table := findListingTable(doc)
	if table == nil {
		logger.Warn("no listing table found")
		return nil
	}

	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		rows = table.Find("tr")
	}

	var variables []types.VariableSummary
	rows.Each(func(i int, row *goquery.Selection) {
		if row.Find("td a").Length() == 0 || row.Find("th").Length() > 0 {
			return
		}

		name := htmltext.FromSelection(row.Find("td").First().Find("a").First())
		if name == "" {
			logger.Warn("skipping listing row with empty variable name", "row", i)
			return
		}

		v := types.VariableSummary{Name: name}
		cells := row.Find("td")
		if cells.Length() >= 2 {
			v.Description = htmltext.FromSelection(cells.Eq(1))
		}
		if cells.Length() >= 3 {
			v.Type = htmltext.FromSelection(cells.Eq(2))
		}
		variables = append(variables, v)
	})

	logger.Info("collected variables from listing", "variables", len(variables), "rows", rows.Length())
	return variables
}

// findListingTable returns the first table whose text mentions the
// listing marker.
func findListingTable(doc *goquery.Document) *goquery.Selection {
	var table *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		if strings.Contains(t.Text(), listingMarker) {
			table = t
			return false
		}
		return true
	})
	return table
}
