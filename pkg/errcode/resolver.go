package errcode

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/console-repair-tools/noruart/pkg/errdb"
)

// UnknownDescription is returned when neither the local database nor the
// remote source knows a code.
const UnknownDescription = "No description available"

// RemoteSource is the best-effort online lookup behind the resolver.
// *errdb.Client implements it.
type RemoteSource interface {
	Lookup(ctx context.Context, code string) (string, error)
}

// Resolution is the outcome of resolving one code. Known is false when
// the description is the unknown-code placeholder.
type Resolution struct {
	Code        string
	Description string
	Source      errdb.Source
	Known       bool
}

// Resolver decides lookup policy: local database first, then the remote
// source, feeding remote hits back into the database so later offline
// lookups succeed. It owns no storage of its own.
type Resolver struct {
	db     *errdb.DB
	dbPath string
	remote RemoteSource
	log    zerolog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRemote enables online fallback. dbPath is where remote hits get
// persisted; an empty dbPath merges without persisting.
func WithRemote(remote RemoteSource, dbPath string) ResolverOption {
	return func(r *Resolver) {
		r.remote = remote
		r.dbPath = dbPath
	}
}

// WithResolverLogger attaches a logger; the default discards everything.
func WithResolverLogger(log zerolog.Logger) ResolverOption {
	return func(r *Resolver) { r.log = log }
}

// NewResolver builds a resolver over db. Without WithRemote it operates
// strictly offline.
func NewResolver(db *errdb.DB, opts ...ResolverOption) *Resolver {
	r := &Resolver{db: db, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps a code to a description. Remote failures degrade to an
// unknown-code resolution; they never propagate as errors.
func (r *Resolver) Resolve(ctx context.Context, code string) Resolution {
	if e, ok := r.db.Lookup(code); ok {
		return Resolution{Code: code, Description: e.Description, Source: errdb.SourceOffline, Known: true}
	}

	if r.remote != nil {
		desc, err := r.remote.Lookup(ctx, code)
		if err == nil {
			entry := errdb.Entry{Code: code, Description: desc, Source: errdb.SourceOnline}
			r.db.Merge([]errdb.Entry{entry})
			if r.dbPath != "" {
				if perr := r.db.Persist(r.dbPath); perr != nil {
					r.log.Warn().Err(perr).Str("path", r.dbPath).Msg("cannot persist error code database")
				}
			}
			return Resolution{Code: code, Description: desc, Source: errdb.SourceOnline, Known: true}
		}
		r.log.Debug().Err(err).Str("code", code).Msg("remote lookup failed")
	}

	return Resolution{Code: code, Description: UnknownDescription, Source: errdb.SourceOffline, Known: false}
}

// ResolveAll resolves parsed codes in order.
func (r *Resolver) ResolveAll(ctx context.Context, codes []Code) []Resolution {
	out := make([]Resolution, 0, len(codes))
	for _, c := range codes {
		out = append(out, r.Resolve(ctx, c.Raw))
	}
	return out
}
