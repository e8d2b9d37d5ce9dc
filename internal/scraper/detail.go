package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/dictscrape/internal/config"
	"github.com/go-scripts/dictscrape/internal/htmltext"
	"github.com/go-scripts/dictscrape/internal/types"
)

// detailFields maps label keywords to output columns. A row's label is
// matched by substring containment in this order; the first matching
// keyword wins, and a field that is already set is never overwritten. A
// label like "Format Value" therefore lands on format, not value.
var detailFields = []struct {
	keyword string
	column  string
}{
	{"Label", "label"},
	{"Type Length", "type_length"},
	{"Available In", "available_in"},
	{"Format", "format"},
	{"Value", "value"},
	{"Links", "links"},
}

// expandKeyword matches expansion controls, case-insensitively.
const expandKeyword = "more"

// maxExpandPasses bounds the poll-until-stable strategy.
const maxExpandPasses = 5

// DetailExtractor retrieves one variable's labeled detail fields.
type DetailExtractor struct {
	session Session
	nav     *Navigator
	cfg     config.Config
	logger  *log.Logger
}

// NewDetailExtractor creates a DetailExtractor over an established
// navigator.
func NewDetailExtractor(session Session, nav *Navigator, cfg config.Config, logger *log.Logger) *DetailExtractor {
	return &DetailExtractor{session: session, nav: nav, cfg: cfg, logger: logger}
}

// Extract navigates to the variable's detail view and returns its
// labeled fields. Truncated cells are expanded before the final pass. A
// returned error means navigation or capture failed; the detail returned
// alongside it is what was recovered, possibly empty, and the caller
// decides persistence.
func (e *DetailExtractor) Extract(ctx context.Context, variableName string) (types.VariableDetail, error) {
	if err := e.nav.ReachDetail(ctx, variableName); err != nil {
		return types.VariableDetail{}, err
	}

	detail, err := e.extractOnce(ctx)
	if err != nil {
		return types.VariableDetail{}, err
	}

	if e.cfg.ExpandUntilStable {
		return e.expandUntilStable(ctx, variableName, detail), nil
	}

	clicked, err := e.session.ExpandControls(ctx, expandKeyword, e.cfg.ExpandSettleDelay.Std())
	if err != nil {
		e.logger.Warn("expansion clicks failed, keeping first pass", "variable", variableName, "err", err)
		return detail, nil
	}
	if clicked > 0 {
		e.logger.Info("expanded truncated content", "variable", variableName, "clicks", clicked)
	}

	// Exactly one re-extraction pass. Expansions revealed by other
	// expansions within this pass are not chased.
	final, err := e.extractOnce(ctx)
	if err != nil {
		e.logger.Warn("re-extraction failed, keeping first pass", "variable", variableName, "err", err)
		return detail, nil
	}
	return final, nil
}

// expandUntilStable repeats expand-and-extract passes until the detail
// stops changing, bounded by maxExpandPasses.
func (e *DetailExtractor) expandUntilStable(ctx context.Context, variableName string, detail types.VariableDetail) types.VariableDetail {
	for pass := 0; pass < maxExpandPasses; pass++ {
		clicked, err := e.session.ExpandControls(ctx, expandKeyword, e.cfg.ExpandSettleDelay.Std())
		if err != nil {
			e.logger.Warn("expansion clicks failed", "variable", variableName, "pass", pass, "err", err)
			return detail
		}
		next, err := e.extractOnce(ctx)
		if err != nil {
			e.logger.Warn("re-extraction failed", "variable", variableName, "pass", pass, "err", err)
			return detail
		}
		if clicked == 0 && equalDetails(detail, next) {
			return next
		}
		detail = next
	}
	return detail
}

func (e *DetailExtractor) extractOnce(ctx context.Context) (types.VariableDetail, error) {
	html, err := e.session.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("error capturing detail view: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("error parsing detail view: %w", err)
	}
	return ExtractDetailFields(doc), nil
}

// ExtractDetailFields scans every row of every table in the detail view.
// A row qualifies when it has at least two cells: the first is the label
// (plain text), the second the value (normalized with break handling).
func ExtractDetailFields(doc *goquery.Document) types.VariableDetail {
	detail := types.VariableDetail{}
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSpace(cells.Eq(0).Text())
		for _, field := range detailFields {
			if strings.Contains(label, field.keyword) {
				if _, set := detail[field.column]; !set {
					detail[field.column] = htmltext.FromSelection(cells.Eq(1))
				}
				break
			}
		}
	})
	return detail
}

func equalDetails(a, b types.VariableDetail) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
