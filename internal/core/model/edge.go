package model

// Relationship types created by the importer.
const (
	RelBelongsTo     = "PERTENCE_A"
	RelActsIn        = "ATUA_NA_LEGISLATURA"
	RelOfLegislature = "DA_LEGISLATURA"
	RelHolds         = "REALIZA"
	RelReferencedIn  = "REFERENCIADA_EM"
)

// Direction is the orientation of an attached edge relative to the node
// being upserted.
type Direction int

const (
	// Outgoing edges point from the upserted node to its parent.
	Outgoing Direction = iota
	// Incoming edges point from the parent to the upserted node.
	Incoming
)

// Attachment links an upserted node to an existing parent node matched by
// ParentKey against the record's Field. A missing parent never fails the
// upsert; the edge is simply not created.
type Attachment struct {
	Relationship string
	Parent       string
	ParentKey    string
	Field        string
	Direction    Direction
	// Optional attachments are only attempted when Field is present in the
	// record, and the parent lookup is an OPTIONAL MATCH.
	Optional bool
}
