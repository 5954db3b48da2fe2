package core

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/plenum/internal/driver"
)

type NodeView struct {
	ElementID string         `json:"element_id"`
	Labels    []string       `json:"labels"`
	Props     map[string]any `json:"props"`
}

type RelationshipView struct {
	ElementID string         `json:"element_id"`
	Type      string         `json:"type"`
	Props     map[string]any `json:"props"`
}

// Triple is one (source)-[relation]->(target) row of a graph dump.
type Triple struct {
	Source   *NodeView         `json:"source,omitempty"`
	Relation *RelationshipView `json:"relation,omitempty"`
	Target   *NodeView         `json:"target,omitempty"`
}

type Stats struct {
	Nodes         map[string]int64 `json:"nodes"`
	Relationships map[string]int64 `json:"relationships"`
}

// TotalNodes sums node counts over every label. Nodes with several labels
// are counted once per label.
func (s Stats) TotalNodes() int64 {
	var n int64
	for _, c := range s.Nodes {
		n += c
	}
	return n
}

func (s Stats) TotalRelationships() int64 {
	var n int64
	for _, c := range s.Relationships {
		n += c
	}
	return n
}

// Inspector reads the graph back. It never writes.
type Inspector struct {
	Driver driver.GraphDriver
}

func NewInspector(d driver.GraphDriver) *Inspector {
	return &Inspector{Driver: d}
}

// Dump returns every relationship together with its endpoints. Nodes
// without relationships do not appear.
func (i *Inspector) Dump(ctx context.Context) ([]Triple, error) {
	res, err := i.Driver.ExecuteRead(ctx, driver.DumpGraphQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dump graph: %w", err)
	}

	var triples []Triple
	for _, rec := range res.Records {
		t := Triple{
			Source:   nodeView(rec, "n"),
			Relation: relationshipView(rec, "r"),
			Target:   nodeView(rec, "m"),
		}
		if t.Source == nil && t.Relation == nil && t.Target == nil {
			continue
		}
		triples = append(triples, t)
	}
	return triples, nil
}

// Counts returns node counts per label and relationship counts per type.
func (i *Inspector) Counts(ctx context.Context) (Stats, error) {
	stats := Stats{
		Nodes:         map[string]int64{},
		Relationships: map[string]int64{},
	}

	nodes, err := i.Driver.ExecuteRead(ctx, driver.CountNodesQuery, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to count nodes: %w", err)
	}
	for _, rec := range nodes.Records {
		label, _ := rec.Get("label")
		count, _ := rec.Get("count")
		name, _ := label.(string)
		n, _ := count.(int64)
		stats.Nodes[name] = n
	}

	rels, err := i.Driver.ExecuteRead(ctx, driver.CountRelationshipsQuery, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to count relationships: %w", err)
	}
	for _, rec := range rels.Records {
		typ, _ := rec.Get("type")
		count, _ := rec.Get("count")
		name, _ := typ.(string)
		n, _ := count.(int64)
		stats.Relationships[name] = n
	}

	return stats, nil
}

func nodeView(rec *neo4j.Record, key string) *NodeView {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	n, ok := v.(neo4j.Node)
	if !ok {
		return nil
	}
	return &NodeView{ElementID: n.ElementId, Labels: n.Labels, Props: n.Props}
}

func relationshipView(rec *neo4j.Record, key string) *RelationshipView {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	r, ok := v.(neo4j.Relationship)
	if !ok {
		return nil
	}
	return &RelationshipView{ElementID: r.ElementId, Type: r.Type, Props: r.Props}
}
