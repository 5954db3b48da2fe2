// Package dataset reads the per-entity JSON envelopes an import consumes.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agenthands/plenum/internal/config"
	"github.com/agenthands/plenum/internal/core/model"
)

// ErrMissingDataset is returned when a dataset file or its record list is absent.
var ErrMissingDataset = errors.New("missing dataset")

// envelope is the file layout: the records sit under "dados", with "data"
// accepted as an alias.
type envelope struct {
	Dados []map[string]any `json:"dados"`
	Data  []map[string]any `json:"data"`
}

// Load reads every dataset file named by files from dir.
func Load(dir string, files config.FilesConfig) (model.Dataset, error) {
	var ds model.Dataset

	info, err := os.Stat(dir)
	if err != nil {
		return ds, fmt.Errorf("%w: datasets directory %s: %v", ErrMissingDataset, dir, err)
	}
	if !info.IsDir() {
		return ds, fmt.Errorf("%w: %s is not a directory", ErrMissingDataset, dir)
	}

	targets := []struct {
		name string
		dst  *[]model.Record
	}{
		{files.Parties, &ds.Parties},
		{files.Deputies, &ds.Deputies},
		{files.Caucuses, &ds.Caucuses},
		{files.Bodies, &ds.Bodies},
		{files.Bills, &ds.Bills},
		{files.Votes, &ds.Votes},
	}
	for _, t := range targets {
		records, err := LoadFile(filepath.Join(dir, t.name))
		if err != nil {
			return ds, err
		}
		*t.dst = records
	}
	return ds, nil
}

// LoadFile reads one envelope file.
func LoadFile(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingDataset, err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Decode parses one envelope. Numbers keep their written form: integers
// become int64 and everything else float64.
func Decode(r io.Reader) ([]model.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}

	raw := env.Dados
	if raw == nil {
		raw = env.Data
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: no \"dados\" or \"data\" list", ErrMissingDataset)
	}

	records := make([]model.Record, len(raw))
	for i, r := range raw {
		records[i] = model.Normalize(r)
	}
	return records, nil
}

// DecodeDataset parses a whole dataset sent as one JSON document keyed by
// file stem, e.g. {"partidos": [...], "deputados": [...]}. Collections may be
// left out, but unknown keys are rejected and at least one collection must
// be present.
func DecodeDataset(data []byte) (model.Dataset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var ds model.Dataset
	if err := dec.Decode(&ds); err != nil {
		return ds, fmt.Errorf("failed to parse dataset: %w", err)
	}

	sets := []*[]model.Record{&ds.Parties, &ds.Deputies, &ds.Caucuses, &ds.Bodies, &ds.Bills, &ds.Votes}
	present := false
	for _, set := range sets {
		if *set == nil {
			continue
		}
		present = true
		for i, r := range *set {
			(*set)[i] = model.Normalize(r)
		}
	}
	if !present {
		return ds, fmt.Errorf("%w: no collection in document", ErrMissingDataset)
	}
	return ds, nil
}
