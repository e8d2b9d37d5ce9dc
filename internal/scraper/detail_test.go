package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/dictscrape/internal/types"
)

func TestExtractDetailFields(t *testing.T) {
	doc := parseDoc(t, `<html><table>
		<tr><td>Label</td><td>Foo</td></tr>
		<tr><td>Type Length</td><td>10</td></tr>
		<tr><td>Format</td><td>YYYY</td></tr>
	</table></html>`)

	got := ExtractDetailFields(doc)
	assert.Equal(t, types.VariableDetail{
		"label":       "Foo",
		"type_length": "10",
		"format":      "YYYY",
	}, got)
}

func TestExtractDetailFieldsContainmentOrder(t *testing.T) {
	// "Format Value" contains both keywords; the earlier keyword in the
	// matcher table wins.
	doc := parseDoc(t, `<html><table>
		<tr><td>Format Value</td><td>ambiguous</td></tr>
	</table></html>`)

	got := ExtractDetailFields(doc)
	assert.Equal(t, types.VariableDetail{"format": "ambiguous"}, got)
}

func TestExtractDetailFieldsFirstMatchWins(t *testing.T) {
	doc := parseDoc(t, `<html><table>
		<tr><td>Label</td><td>first</td></tr>
		<tr><td>Label</td><td>second</td></tr>
	</table></html>`)

	got := ExtractDetailFields(doc)
	assert.Equal(t, "first", got["label"])
}

func TestExtractDetailFieldsSkipsShortRows(t *testing.T) {
	doc := parseDoc(t, `<html><table>
		<tr><td>orphan cell</td></tr>
		<tr><th>header</th><th>row</th></tr>
		<tr><td>Available In</td><td>1988 onward</td></tr>
	</table></html>`)

	got := ExtractDetailFields(doc)
	assert.Equal(t, types.VariableDetail{"available_in": "1988 onward"}, got)
}

func TestExtractDetailFieldsNormalizesValue(t *testing.T) {
	doc := parseDoc(t, `<html><table>
		<tr><td>Value</td><td>1 = yes<br>2 = no<br/>9 = unknown</td></tr>
	</table></html>`)

	got := ExtractDetailFields(doc)
	assert.Equal(t, "1 = yes\n2 = no\n9 = unknown", got["value"])
}

func TestExtractDetailFieldsScansAllTables(t *testing.T) {
	doc := parseDoc(t, `<html>
		<table><tr><td>Label</td><td>Foo</td></tr></table>
		<table><tr><td>Links</td><td>related docs</td></tr></table>
	</html>`)

	got := ExtractDetailFields(doc)
	assert.Equal(t, types.VariableDetail{"label": "Foo", "links": "related docs"}, got)
}

func detailPage(rows string) string {
	return "<html><table>" + rows + "</table></html>"
}

func newTestExtractor(session *fakeSession) *DetailExtractor {
	cfg := testConfig()
	nav := NewNavigator(session, cfg, testLogger(), fakeLibrary, fakeDataset)
	nav.libraryURL = fakeLibraryURL
	return NewDetailExtractor(session, nav, cfg, testLogger())
}

func TestExtractUsesPostExpansionPass(t *testing.T) {
	session := &fakeSession{
		detailHTML: map[string]string{
			"SEX": detailPage("<tr><td>Value</td><td>1 = male... more</td></tr>"),
		},
		expandedHTML: map[string]string{
			"SEX": detailPage("<tr><td>Value</td><td>1 = male<br>2 = female</td></tr>"),
		},
	}

	got, err := newTestExtractor(session).Extract(context.Background(), "SEX")
	require.NoError(t, err)
	assert.Equal(t, "1 = male\n2 = female", got["value"])
	assert.Equal(t, 1, session.expandCalls)
}

func TestExtractNavigationFailure(t *testing.T) {
	session := &fakeSession{
		detailHTML: map[string]string{},
		failClicks: map[string]bool{"GHOST": true},
	}

	got, err := newTestExtractor(session).Extract(context.Background(), "GHOST")
	assert.Error(t, err)
	assert.Empty(t, got)
}

func TestExtractUntilStable(t *testing.T) {
	session := &fakeSession{
		detailHTML: map[string]string{
			"SEX": detailPage("<tr><td>Value</td><td>truncated... more</td></tr>"),
		},
		expandedHTML: map[string]string{
			"SEX": detailPage("<tr><td>Value</td><td>full value</td></tr>"),
		},
	}

	cfg := testConfig()
	cfg.ExpandUntilStable = true
	nav := NewNavigator(session, cfg, testLogger(), fakeLibrary, fakeDataset)
	nav.libraryURL = fakeLibraryURL
	extractor := NewDetailExtractor(session, nav, cfg, testLogger())

	got, err := extractor.Extract(context.Background(), "SEX")
	require.NoError(t, err)
	assert.Equal(t, "full value", got["value"])
	// One pass that expanded, one pass that confirmed stability.
	assert.Equal(t, 2, session.expandCalls)
}
