package upsert

import (
	"fmt"
	"strings"

	"github.com/agenthands/plenum/internal/core/model"
)

// Row keys inside the $rows parameter.
const (
	rowKey   = "key"
	rowProps = "props"
	rowRefs  = "refs"
)

// BuildQuery renders the bulk statement upserting nodes of entity e.
//
// Each row is matched by its natural key and gets every refreshed attribute
// set, on create and on match alike. Every attachment runs in its own unit
// subquery, so a parent missing for one edge does not drop the row before
// the edges that follow it.
func BuildQuery(e model.Entity) string {
	var b strings.Builder

	b.WriteString("UNWIND $rows AS row\n")
	fmt.Fprintf(&b, "MERGE (n:%s {%s: row.%s})\n", e.Label, e.Key, rowKey)
	if len(e.Attributes) > 0 {
		fmt.Fprintf(&b, "SET n += row.%s\n", rowProps)
	}

	for _, a := range e.Attachments {
		b.WriteString("WITH n, row\n")
		b.WriteString("CALL {\n")
		b.WriteString("  WITH n, row\n")
		ref := fmt.Sprintf("row.%s.%s", rowRefs, a.Field)
		if a.Optional {
			fmt.Fprintf(&b, "  OPTIONAL MATCH (p:%s {%s: %s})\n", a.Parent, a.ParentKey, ref)
			b.WriteString("  WITH n, p, row\n")
			fmt.Fprintf(&b, "  WHERE p IS NOT NULL AND %s IS NOT NULL\n", ref)
		} else {
			fmt.Fprintf(&b, "  MATCH (p:%s {%s: %s})\n", a.Parent, a.ParentKey, ref)
		}
		fmt.Fprintf(&b, "  MERGE %s\n", edgePattern(a))
		b.WriteString("}\n")
	}

	b.WriteString("RETURN count(n) AS processed")
	return b.String()
}

func edgePattern(a model.Attachment) string {
	if a.Direction == model.Incoming {
		return fmt.Sprintf("(p)-[:%s]->(n)", a.Relationship)
	}
	return fmt.Sprintf("(n)-[:%s]->(p)", a.Relationship)
}

// BuildRows converts records into the $rows parameter for BuildQuery.
func BuildRows(e model.Entity, records []model.Record, policy model.NullPolicy) []interface{} {
	rows := make([]interface{}, len(records))
	for i, r := range records {
		row := map[string]interface{}{
			rowKey: r[e.Key],
		}
		if len(e.Attributes) > 0 {
			row[rowProps] = model.Properties(e, r, policy)
		}
		if len(e.Attachments) > 0 {
			refs := make(map[string]interface{}, len(e.Attachments))
			for _, a := range e.Attachments {
				refs[a.Field] = r[a.Field]
			}
			row[rowRefs] = refs
		}
		rows[i] = row
	}
	return rows
}
