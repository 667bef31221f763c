package transformer

import "github.com/jpedro002/middleware/internal/schema"

// Table describes the grupos_ocorrencia destination under name, with
// columns in Columns order and id as the key.
func Table(name string) schema.Table {
	return schema.Table{
		Name: name,
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeInt64},
			{Name: "nome", Type: schema.TypeText},
			{Name: "descricao", Type: schema.TypeText},
			{Name: "fundo_municipal_id", Type: schema.TypeInt64},
			{Name: "afinidades", Type: schema.TypeText, Nullable: true},
			{Name: "ativo", Type: schema.TypeBool},
			{Name: "data_criacao", Type: schema.TypeTimestamp},
		},
		Key: KeyColumns,
	}
}
