package transformer

import (
	"errors"
	"fmt"
)

// FieldError reports a tuple field that could not be coerced.
type FieldError struct {
	Tuple  int // index into the tuples passed to Build
	Field  int // source field position
	Column string
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("tuple %d: field %d (%s) = %q: %v", e.Tuple, e.Field, e.Column, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// FromTuple converts one 9-field tuple. Fields are expected to be trimmed
// already (sqldump.Extract does so).
func FromTuple(fields []string) (GrupoOcorrencia, error) {
	if len(fields) != TupleWidth {
		return GrupoOcorrencia{}, fmt.Errorf("tuple has %d fields, want %d", len(fields), TupleWidth)
	}

	id, err := ParseInt(fields[fieldID])
	if err != nil {
		return GrupoOcorrencia{}, &FieldError{Field: fieldID, Column: "id", Value: fields[fieldID], Err: err}
	}

	criacao, err := ParseDataCriacao(StripQuotes(fields[fieldDataCriacao]))
	if err != nil {
		return GrupoOcorrencia{}, &FieldError{Field: fieldDataCriacao, Column: "data_criacao", Value: fields[fieldDataCriacao], Err: err}
	}

	fundo, err := ParseFundoMunicipalID(fields[fieldFundoMunicipalID])
	if err != nil {
		return GrupoOcorrencia{}, &FieldError{Field: fieldFundoMunicipalID, Column: "fundo_municipal_id", Value: fields[fieldFundoMunicipalID], Err: err}
	}

	return GrupoOcorrencia{
		ID:               id,
		Nome:             StripQuotes(fields[fieldNome]),
		Descricao:        StripQuotes(fields[fieldDescricao]),
		FundoMunicipalID: fundo,
		Ativo:            ParseAtivo(fields[fieldAtivo]),
		DataCriacao:      criacao,
	}, nil
}

// Build converts every tuple in order. The first failure stops the build;
// the returned *FieldError carries the tuple index.
func Build(tuples [][]string) ([]GrupoOcorrencia, error) {
	out := make([]GrupoOcorrencia, 0, len(tuples))
	for i, tp := range tuples {
		rec, err := FromTuple(tp)
		if err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				fe.Tuple = i
				return nil, fe
			}
			return nil, fmt.Errorf("tuple %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
