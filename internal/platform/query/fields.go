package query

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/wundergraph/graphql-go-tools/pkg/ast"
	"github.com/wundergraph/graphql-go-tools/pkg/astparser"
)

// Whitelist is a read-only set of root field names. It is built once and
// may be shared between goroutines without locking.
type Whitelist map[string]struct{}

// NewWhitelist returns the whitelist made of the given field names.
func NewWhitelist(fields ...string) Whitelist {
	w := make(Whitelist, len(fields))
	for _, f := range fields {
		w[f] = struct{}{}
	}
	return w
}

// Allows reports whether the field name is in the whitelist.
func (w Whitelist) Allows(field string) bool {
	_, ok := w[field]
	return ok
}

// StatusFields lists the root fields of the geo node status API that are
// exposed publicly.
var StatusFields = NewWhitelist(
	"indexingStatuses",
	"chains",
	"latestBlock",
	"earliestBlock",
	"publicProofsOfIndexing",
	"entityChangesInBlock",
	"blockData",
	"cachedEthereumCalls",
	"subgraphFeatures",
	"apiVersions",
)

// RootFields returns the names of the fields selected directly by query
// operations and by fragment definitions of the document. Fragments count as
// root selection sets even when they are only spread into nested fields, so
// the whitelist has to cover them as well. Fragment spreads and inline
// fragments are not followed.
func RootFields(doc *ast.Document) map[string]struct{} {

	fields := make(map[string]struct{})

	for _, node := range doc.RootNodes {

		var set int

		switch node.Kind {
		case ast.NodeKindOperationDefinition:
			op := doc.OperationDefinitions[node.Ref]
			if op.OperationType != ast.OperationTypeQuery || !op.HasSelections {
				continue
			}
			set = op.SelectionSet
		case ast.NodeKindFragmentDefinition:
			set = doc.FragmentDefinitions[node.Ref].SelectionSet
		default:
			continue
		}

		if set < 0 || set >= len(doc.SelectionSets) {
			continue
		}

		for _, ref := range doc.SelectionSets[set].SelectionRefs {
			selection := doc.Selections[ref]
			if selection.Kind != ast.SelectionKindField {
				continue
			}
			fields[doc.FieldNameString(selection.Ref)] = struct{}{}
		}
	}

	return fields
}

// ValidateRootFields parses the query and checks its root fields against the
// whitelist. Every field outside of the whitelist is reported.
func ValidateRootFields(query string, allowed Whitelist) error {

	if strings.TrimSpace(query) == "" {
		return &InvalidQueryError{Err: ErrEmptyQuery}
	}

	doc, report := astparser.ParseGraphqlDocumentString(query)
	if report.HasErrors() {
		return &InvalidQueryError{Err: errors.New(report.Error())}
	}

	var unsupported []string
	for field := range RootFields(&doc) {
		if !allowed.Allows(field) {
			unsupported = append(unsupported, field)
		}
	}

	if len(unsupported) > 0 {
		sort.Strings(unsupported)
		return &UnsupportedFieldsError{Fields: unsupported}
	}

	return nil
}
