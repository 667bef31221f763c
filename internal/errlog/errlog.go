// Package errlog keeps a JSON document of load failures caused by database
// constraints, so the offending values can be fixed at the source before
// the next run.
//
// The file holds one document that grows across runs:
//
//	{
//	  "constraint_errors": [ {...}, ... ],
//	  "valores_faltando": { "fundo_municipal_id": ["42"] },
//	  "total": 1,
//	  "ultima_atualizacao": "2025-12-02T11:51:00Z"
//	}
package errlog

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jpedro002/middleware/internal/storage"
)

// Entry is one recorded failure.
type Entry struct {
	RunID          string `json:"run_id,omitempty"`
	Table          string `json:"table"`
	Kind           string `json:"tipo_erro"`
	Stage          string `json:"etapa"`
	Page           int64  `json:"pagina,omitempty"`
	ConstraintName string `json:"constraint_name,omitempty"`
	Column         string `json:"campo_erro,omitempty"`
	Value          string `json:"valor_problematico,omitempty"`
	Message        string `json:"mensagem_erro"`
	Detail         string `json:"detalhe,omitempty"`
	Timestamp      string `json:"timestamp"`
}

// Document is the on-disk layout.
type Document struct {
	ConstraintErrors []Entry            `json:"constraint_errors"`
	MissingValues    map[string][]string `json:"valores_faltando"`
	Total            int                 `json:"total"`
	UpdatedAt        string              `json:"ultima_atualizacao"`
}

var (
	// Postgres detail: Key (fundo_municipal_id)=(42) is not present in table "x".
	keyDetailRe = regexp.MustCompile(`Key \(([^)]+)\)=\(([^)]*)\)`)
	// Driver messages that quote the constraint: ... violates foreign key constraint "x"
	constraintRe = regexp.MustCompile(`constraint "([^"]+)"`)
	// SQLite: CHECK constraint failed: name / UNIQUE constraint failed: t.col
	sqliteRe = regexp.MustCompile(`constraint failed: ([A-Za-z0-9_.]+)`)
)

// Loggable reports whether err is a load failure worth recording.
func Loggable(err error) bool {
	var le *storage.LoadError
	return errors.As(err, &le) && (le.Kind == storage.KindConstraint || le.Kind == storage.KindData)
}

// FromError builds an Entry from a load failure. ok is false when err is
// not a *storage.LoadError.
func FromError(err error, table, runID string, now time.Time) (Entry, bool) {
	var le *storage.LoadError
	if !errors.As(err, &le) {
		return Entry{}, false
	}

	e := Entry{
		RunID:     runID,
		Table:     table,
		Kind:      string(le.Kind),
		Stage:     string(le.Stage),
		Page:      le.Page,
		Message:   le.Error(),
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	if le.Err == nil {
		return e, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		e.Message = pgErr.Message
		e.ConstraintName = pgErr.ConstraintName
		e.Column = pgErr.ColumnName
		e.Detail = pgErr.Detail
		if m := keyDetailRe.FindStringSubmatch(pgErr.Detail); m != nil {
			e.Column, e.Value = m[1], m[2]
		}
		return e, true
	}

	msg := le.Err.Error()
	e.Message = msg
	if m := constraintRe.FindStringSubmatch(msg); m != nil {
		e.ConstraintName = m[1]
	} else if m := sqliteRe.FindStringSubmatch(msg); m != nil {
		e.ConstraintName = m[1]
		if i := strings.LastIndexByte(m[1], '.'); i >= 0 {
			e.Column = m[1][i+1:]
		}
	}
	return e, true
}

// Load reads the document at path. A missing file yields an empty document.
func Load(path string) (Document, error) {
	doc := Document{MissingValues: map[string][]string{}}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("errlog: read %s: %w", path, err)
	}
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("errlog: decode %s: %w", path, err)
	}
	if doc.MissingValues == nil {
		doc.MissingValues = map[string][]string{}
	}
	return doc, nil
}

// Append adds e to the document at path and rewrites it. An entry equal to
// a recorded one in table, constraint, page and message is not added again.
func Append(path string, e Entry) (Document, error) {
	doc, err := Load(path)
	if err != nil {
		return doc, err
	}

	dup := slices.ContainsFunc(doc.ConstraintErrors, func(o Entry) bool {
		return o.Table == e.Table && o.ConstraintName == e.ConstraintName &&
			o.Page == e.Page && o.Message == e.Message && o.Value == e.Value
	})
	if !dup {
		doc.ConstraintErrors = append(doc.ConstraintErrors, e)
		if e.Column != "" && e.Value != "" && !slices.Contains(doc.MissingValues[e.Column], e.Value) {
			doc.MissingValues[e.Column] = append(doc.MissingValues[e.Column], e.Value)
		}
	}
	doc.Total = len(doc.ConstraintErrors)
	doc.UpdatedAt = e.Timestamp

	raw, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return doc, fmt.Errorf("errlog: encode: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return doc, fmt.Errorf("errlog: write %s: %w", path, err)
	}
	return doc, nil
}
