// Package transformer turns extracted dump tuples into typed
// grupos_ocorrencia records.
//
// Tuple layout (0-based) of the source grupodemanda dump:
//
//	0 id                  -> ID
//	1 ativo               -> Ativo
//	2 data_criacao        -> DataCriacao
//	3 descricao           -> Descricao
//	4 nome                -> Nome
//	5, 6                  -> ignored
//	7 fundo_municipal_id  -> FundoMunicipalID ("NULL" -> 0)
//	8                     -> ignored
//
// Afinidades has no source column and is always NULL.
package transformer

import "time"

// TupleWidth is the number of fields a source tuple must have.
const TupleWidth = 9

// Source field positions.
const (
	fieldID               = 0
	fieldAtivo            = 1
	fieldDataCriacao      = 2
	fieldDescricao        = 3
	fieldNome             = 4
	fieldFundoMunicipalID = 7
)

// Columns is the destination column order used by Values and by the loader.
var Columns = []string{
	"id",
	"nome",
	"descricao",
	"fundo_municipal_id",
	"afinidades",
	"ativo",
	"data_criacao",
}

// KeyColumns is the conflict target of the insert.
var KeyColumns = []string{"id"}

// GrupoOcorrencia is one destination row.
type GrupoOcorrencia struct {
	ID               int64     `json:"id"`
	Nome             string    `json:"nome"`
	Descricao        string    `json:"descricao"`
	FundoMunicipalID int64     `json:"fundo_municipal_id"`
	Afinidades       *string   `json:"afinidades"`
	Ativo            bool      `json:"ativo"`
	DataCriacao      time.Time `json:"data_criacao"`
}

// Values returns the record in Columns order.
func (g GrupoOcorrencia) Values() []any {
	var afinidades any
	if g.Afinidades != nil {
		afinidades = *g.Afinidades
	}
	return []any{
		g.ID,
		g.Nome,
		g.Descricao,
		g.FundoMunicipalID,
		afinidades,
		g.Ativo,
		g.DataCriacao,
	}
}

// Rows converts records to the tabular form consumed by storage backends.
func Rows(recs []GrupoOcorrencia) [][]any {
	out := make([][]any, len(recs))
	for i, r := range recs {
		out[i] = r.Values()
	}
	return out
}
