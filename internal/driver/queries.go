package driver

const (
	// CreateConstraintQuery is formatted with the constraint name, label and
	// property. IF NOT EXISTS makes re-issuing it a no-op.
	CreateConstraintQuery = `CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE`

	DumpGraphQuery = `
		OPTIONAL MATCH (n)-[r]->(m)
		RETURN n, r, m
	`

	CountNodesQuery = `
		MATCH (n)
		UNWIND labels(n) AS label
		RETURN label, count(*) AS count
		ORDER BY label
	`

	CountRelationshipsQuery = `
		MATCH ()-[r]->()
		RETURN type(r) AS type, count(*) AS count
		ORDER BY type
	`
)
