// Package report prints the human-readable run report: record count, a
// preview of the first records and the load outcome.
package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/jpedro002/middleware/internal/storage"
	"github.com/jpedro002/middleware/internal/transformer"
)

// DefaultPreviewRows is how many records Preview prints when asked for 0.
const DefaultPreviewRows = 5

const previewTimeLayout = "2006-01-02 15:04:05.000000"

// Console writes the report to an io.Writer.
type Console struct {
	out     io.Writer
	noColor bool
}

// Option configures a Console.
type Option func(*Console)

// WithoutColor disables ANSI colours regardless of the terminal.
func WithoutColor() Option { return func(c *Console) { c.noColor = true } }

// NewConsole returns a Console writing to w. Colours follow fatih/color's
// terminal detection unless WithoutColor is given.
func NewConsole(w io.Writer, opts ...Option) *Console {
	c := &Console{out: w, noColor: color.NoColor}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Console) paint(attrs ...color.Attribute) *color.Color {
	col := color.New(attrs...)
	if c.noColor {
		col.DisableColor()
	} else {
		col.EnableColor()
	}
	return col
}

// Count prints the number of records about to be loaded.
func (c *Console) Count(n int) {
	fmt.Fprintf(c.out, "Total de registros a importar: %d\n", n)
}

// Preview prints the first n records as an aligned table.
func (c *Console) Preview(recs []transformer.GrupoOcorrencia, n int) {
	if n <= 0 {
		n = DefaultPreviewRows
	}
	n = min(n, len(recs))

	c.paint(color.Bold).Fprintf(c.out, "\nPrimeiros %d registros:\n", n)

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tnome\tdescricao\tfundo_municipal_id\tafinidades\tativo\tdata_criacao")
	for _, r := range recs[:n] {
		af := "null"
		if r.Afinidades != nil {
			af = *r.Afinidades
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID,
			r.Nome,
			r.Descricao,
			r.FundoMunicipalID,
			af,
			strconv.FormatBool(r.Ativo),
			r.DataCriacao.Format(previewTimeLayout),
		)
	}
	_ = tw.Flush()
}

// Success prints the committed load result.
func (c *Console) Success(res storage.LoadResult) {
	c.paint(color.FgGreen).Fprintf(c.out, "\n✅ %d registros inseridos com sucesso!\n", res.Inserted)
	if res.Skipped > 0 {
		fmt.Fprintf(c.out, "   %d registros já existentes foram ignorados (id duplicado).\n", res.Skipped)
	}
}

// Failure prints a load error.
func (c *Console) Failure(err error) {
	c.paint(color.FgRed).Fprintf(c.out, "❌ Erro ao inserir dados: %v\n", err)
}
