package model

// EntityType identifies one of the node kinds produced by an import.
type EntityType string

const (
	Party       EntityType = "party"
	Legislature EntityType = "legislature"
	Deputy      EntityType = "deputy"
	Caucus      EntityType = "caucus"
	Body        EntityType = "body"
	Bill        EntityType = "bill"
	Vote        EntityType = "vote"
)

// Node labels as stored in the graph.
const (
	LabelParty       = "Partido"
	LabelLegislature = "Legislatura"
	LabelDeputy      = "Deputado"
	LabelCaucus      = "Frente"
	LabelBody        = "Orgao"
	LabelBill        = "Proposicao"
	LabelVote        = "Votacao"
)

// Entity describes how records of one type become nodes: the label, the
// natural key used for matching, the attributes refreshed on every upsert and
// the edges attached to already-present parent nodes.
type Entity struct {
	Type        EntityType
	Label       string
	Key         string
	Attributes  []string
	Attachments []Attachment
}

var entities = map[EntityType]Entity{
	Party: {
		Type:       Party,
		Label:      LabelParty,
		Key:        "sigla",
		Attributes: []string{"id", "nome", "uri"},
	},
	Legislature: {
		Type:  Legislature,
		Label: LabelLegislature,
		Key:   "id",
	},
	Deputy: {
		Type:  Deputy,
		Label: LabelDeputy,
		Key:   "id",
		Attributes: []string{
			"nome", "siglaPartido", "uriPartido", "siglaUf",
			"idLegislatura", "email", "urlFoto", "uri",
		},
		Attachments: []Attachment{
			{Relationship: RelBelongsTo, Parent: LabelParty, ParentKey: "sigla", Field: "siglaPartido", Direction: Outgoing},
			{Relationship: RelActsIn, Parent: LabelLegislature, ParentKey: "id", Field: "idLegislatura", Direction: Outgoing},
		},
	},
	Caucus: {
		Type:       Caucus,
		Label:      LabelCaucus,
		Key:        "id",
		Attributes: []string{"titulo", "idLegislatura", "uri"},
		Attachments: []Attachment{
			{Relationship: RelOfLegislature, Parent: LabelLegislature, ParentKey: "id", Field: "idLegislatura", Direction: Outgoing},
		},
	},
	Body: {
		Type:  Body,
		Label: LabelBody,
		Key:   "sigla",
		Attributes: []string{
			"id", "nome", "apelido", "codTipoOrgao", "tipoOrgao",
			"nomePublicacao", "nomeResumido", "uri",
		},
	},
	Bill: {
		Type:       Bill,
		Label:      LabelBill,
		Key:        "id",
		Attributes: []string{"siglaTipo", "codTipo", "numero", "ano", "ementa", "uri"},
	},
	Vote: {
		Type:  Vote,
		Label: LabelVote,
		Key:   "id",
		Attributes: []string{
			"data", "dataHoraRegistro", "siglaOrgao", "uriOrgao", "uriEvento",
			"proposicaoObjeto", "uriProposicaoObjeto", "descricao", "aprovacao", "uri",
		},
		Attachments: []Attachment{
			{Relationship: RelHolds, Parent: LabelBody, ParentKey: "sigla", Field: "siglaOrgao", Direction: Incoming},
			{Relationship: RelReferencedIn, Parent: LabelBill, ParentKey: "uri", Field: "uriProposicaoObjeto", Direction: Incoming, Optional: true},
		},
	},
}

// ImportOrder is the dependency order stages must respect: every entity
// appears after the entities it attaches to.
var ImportOrder = []EntityType{Party, Legislature, Deputy, Caucus, Body, Bill, Vote}

// Lookup returns the entity definition for t.
func Lookup(t EntityType) (Entity, bool) {
	e, ok := entities[t]
	return e, ok
}

// MustLookup is Lookup for the built-in types; it panics on unknown types.
func MustLookup(t EntityType) Entity {
	e, ok := entities[t]
	if !ok {
		panic("model: unknown entity type " + string(t))
	}
	return e
}

// All returns every entity definition in import order.
func All() []Entity {
	out := make([]Entity, 0, len(ImportOrder))
	for _, t := range ImportOrder {
		out = append(out, entities[t])
	}
	return out
}
