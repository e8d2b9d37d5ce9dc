package types

// Fieldnames is the fixed column order of the output CSV. The file written
// by one run must be readable as the resume ledger of the next, so this
// order never changes.
var Fieldnames = []string{
	"variable_name",
	"main_description",
	"main_type",
	"label",
	"type_length",
	"available_in",
	"format",
	"value",
	"links",
}

// VariableSummary is one variable as it appears in the listing view.
type VariableSummary struct {
	Name        string
	Description string
	Type        string
}

// VariableDetail holds the labeled fields extracted from a variable's
// detail view. It is sparse: a key is present only if its labeled row was
// found. Keys are the detail column names from Fieldnames.
type VariableDetail map[string]string

// OutputRow merges a summary with its detail into the fixed column order.
// Missing detail fields serialize as empty strings.
func OutputRow(summary VariableSummary, detail VariableDetail) []string {
	return []string{
		summary.Name,
		summary.Description,
		summary.Type,
		detail["label"],
		detail["type_length"],
		detail["available_in"],
		detail["format"],
		detail["value"],
		detail["links"],
	}
}
