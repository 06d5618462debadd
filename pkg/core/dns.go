package core

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/joeydtaylor/steeze-dns/pkg/codec"
	"github.com/joeydtaylor/steeze-dns/pkg/dispatch"
	manifest "github.com/joeydtaylor/steeze-dns/pkg/manifest"
	"github.com/joeydtaylor/steeze-dns/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-dns/pkg/runtime"
)

var errUnauthenticated = errors.New("unauthenticated")

// DNS adapts the two dispatch surfaces to inproc handlers. Requests are
// decoded on the caller's goroutine; only dispatch runs on the runtime.
type DNS struct {
	rt  *runtime.Runtime
	mut *dispatch.Mutations
	qry *dispatch.Queries
}

func NewDNS(rt *runtime.Runtime, mut *dispatch.Mutations, qry *dispatch.Queries) *DNS {
	return &DNS{rt: rt, mut: mut, qry: qry}
}

// RegisterHandlers binds dns.handle and dns.state.
func (d *DNS) RegisterHandlers() {
	Register(manifest.HandlerDNSHandle, d.Handle)
	Register(manifest.HandlerDNSState, d.State)
}

// Handle serves the mutating surface. The caller identity is derived from
// the authenticated user on ctx.
func (d *DNS) Handle(ctx context.Context, in []byte) ([]byte, int, error) {
	u := auth.UserFromContext(ctx)
	if u.Username == "" {
		return nil, http.StatusUnauthorized, errUnauthenticated
	}
	a, err := dispatch.DecodeAction(in)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	var (
		reply dispatch.Reply
		herr  error
	)
	caller := u.Identity()
	if err := d.rt.Do(ctx, func() { reply, herr = d.mut.Handle(caller, a) }); err != nil {
		return nil, errStatus(err), err
	}
	if herr != nil {
		return nil, errStatus(herr), herr
	}
	return encodeReply(reply)
}

// State serves the read-only surface. Anonymous callers are allowed.
func (d *DNS) State(ctx context.Context, in []byte) ([]byte, int, error) {
	q, err := dispatch.DecodeQuery(in)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	var (
		reply dispatch.Reply
		herr  error
	)
	if err := d.rt.Do(ctx, func() { reply, herr = d.qry.Handle(q) }); err != nil {
		return nil, errStatus(err), err
	}
	if herr != nil {
		return nil, errStatus(herr), herr
	}
	return encodeReply(reply)
}

func encodeReply(r dispatch.Reply) ([]byte, int, error) {
	out, err := codec.JSONStrict.Marshal(r)
	if err != nil {
		return nil, http.StatusInternalServerError, errors.Wrap(err, "encode reply")
	}
	return out, http.StatusOK, nil
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, dispatch.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, runtime.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
