package ask

import (
	"context"

	"github.com/prodex-cloud/prodex/internal/domain/facet"
	"github.com/prodex-cloud/prodex/internal/domain/intent"
	"github.com/prodex-cloud/prodex/internal/domain/record"
	"github.com/prodex-cloud/prodex/internal/domain/schema"
	"github.com/prodex-cloud/prodex/internal/usecase/probe"
	"github.com/prodex-cloud/prodex/internal/usecase/search"
)

// Prober discovers the catalog shape.
type Prober interface {
	Probe(ctx context.Context) (probe.Result, error)
}

// Interpreter turns a free-text question into a structured intent.
type Interpreter interface {
	Interpret(
		ctx context.Context, query string, sch schema.Schema, summary string, filters facet.Filter,
	) intent.Intent
}

// Executor runs the interpreted intent against the catalog.
type Executor interface {
	Execute(
		ctx context.Context, in intent.Intent, filters facet.Filter, resolver *schema.Resolver,
	) (search.Result, error)
}

// Synthesizer generates prose over search results. Summarize degrades
// internally and always returns text; Extract surfaces its failure so the
// caller can fall back to a plain listing of the record.
type Synthesizer interface {
	Summarize(ctx context.Context, query string, records []record.Record, resolver *schema.Resolver) string
	Extract(ctx context.Context, question string, rec record.Record, resolver *schema.Resolver) (string, error)
}
