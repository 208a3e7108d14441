// Package parser reads batches of digests to sign from JSON and CSV files.
package parser

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/stark-ecdsa/pkg/felt"
)

const (
	defaultIDField     = "id"
	defaultDigestField = "digest"
)

// Request is one digest to sign. ID defaults to the record's position when
// the source has no id.
type Request struct {
	ID     string
	Digest *big.Int
}

// DigestParser reads signing requests from a source.
type DigestParser interface {
	ParseFile(path string) ([]*Request, error)
	Parse(r io.Reader) ([]*Request, error)
}

// ForPath picks a parser by file extension (.csv or JSON for anything else).
func ForPath(path string) DigestParser {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return &CSVParser{}
	}
	return &JSONParser{}
}

// JSONParser parses files of the form
//
//	[
//	  {"id": "tx-1", "digest": "0x..."},
//	  {"id": "tx-2", "digest": "12345"}
//	]
type JSONParser struct {
	IDField     string // default "id"
	DigestField string // default "digest"
}

func (p *JSONParser) ParseFile(path string) ([]*Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}
	defer file.Close()
	return p.Parse(file)
}

func (p *JSONParser) Parse(r io.Reader) ([]*Request, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber() // large digests must not pass through float64

	var items []map[string]interface{}
	if err := decoder.Decode(&items); err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON")
	}

	idField := orDefault(p.IDField, defaultIDField)
	digestField := orDefault(p.DigestField, defaultDigestField)

	requests := make([]*Request, 0, len(items))
	for i, item := range items {
		val, ok := item[digestField]
		if !ok {
			return nil, errors.Errorf("record %d: missing %s field", i, digestField)
		}
		digest, err := felt.Parse(val)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d: failed to parse %s", i, digestField)
		}

		id := strconv.Itoa(i)
		if v, ok := item[idField]; ok && v != nil {
			id = fmt.Sprint(v)
		}
		requests = append(requests, &Request{ID: id, Digest: digest})
	}
	return requests, nil
}

// CSVParser parses CSV files with a header row naming the columns.
type CSVParser struct {
	IDColumn     string // default "id"
	DigestColumn string // default "digest"
}

func (p *CSVParser) ParseFile(path string) ([]*Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()
	return p.Parse(file)
}

func (p *CSVParser) Parse(r io.Reader) ([]*Request, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}

	idCol := orDefault(p.IDColumn, defaultIDField)
	digestCol := orDefault(p.DigestColumn, defaultDigestField)

	idIdx, digestIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case idCol:
			idIdx = i
		case digestCol:
			digestIdx = i
		}
	}
	if digestIdx == -1 {
		return nil, errors.Errorf("missing required column: %s", digestCol)
	}

	var requests []*Request
	for row := 0; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read record")
		}

		digest, err := felt.Parse(record[digestIdx])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: failed to parse %s", row, digestCol)
		}

		id := strconv.Itoa(row)
		if idIdx >= 0 && record[idIdx] != "" {
			id = record[idIdx]
		}
		requests = append(requests, &Request{ID: id, Digest: digest})
	}
	return requests, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
