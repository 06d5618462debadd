// Package dispatch routes decoded actions to the record store.
//
// Dispatchers hold no state of their own and take no locks: every call is
// one action, one store operation, one reply. Callers run them one at a
// time (see pkg/runtime).
package dispatch

import (
	"github.com/joeydtaylor/steeze-dns/pkg/registry"
	"go.uber.org/zap"
)

// Surface names label which dispatcher served an action.
const (
	// SurfaceHandle is the mutating surface (Mutations).
	SurfaceHandle = "handle"
	// SurfaceState is the read-only surface (Queries).
	SurfaceState = "state"
)

// Change describes a committed mutation.
type Change struct {
	Op     string          `json:"op"` // register | update | remove
	Caller string          `json:"caller"`
	Record registry.Record `json:"record"`
}

// Hooks are optional observers. They run inline and must not block.
type Hooks struct {
	OnAction func(surface, action string, found bool)
	OnChange func(Change)
}

func (h Hooks) action(surface, action string, found bool) {
	if h.OnAction != nil {
		h.OnAction(surface, action, found)
	}
}

func (h Hooks) change(op string, caller registry.Identity, r registry.Record) {
	if h.OnChange != nil {
		h.OnChange(Change{Op: op, Caller: caller.String(), Record: r})
	}
}

func found(r Reply) bool {
	return r.IsList() && len(r.Records) > 0 || r.Record != nil
}

// Mutations serves the mutating surface.
type Mutations struct {
	store *registry.Store
	log   *zap.Logger
	hooks Hooks
}

func NewMutations(store *registry.Store, log *zap.Logger, hooks Hooks) *Mutations {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mutations{store: store, log: log, hooks: hooks}
}

// Handle runs a on behalf of caller.
func (m *Mutations) Handle(caller registry.Identity, a Action) (Reply, error) {
	name, err := a.Name()
	if err != nil {
		return Reply{}, err
	}

	var reply Reply
	switch {
	case a.Register != nil:
		r := m.store.Register(caller, *a.Register.Name, *a.Register.Link, *a.Register.Description)
		m.hooks.change("register", caller, r)
		reply = RecordReply(r, true)
	case a.Remove != nil:
		r, ok := m.store.Remove(caller, *a.Remove)
		if ok {
			m.hooks.change("remove", caller, r)
		}
		reply = RecordReply(r, ok)
	case a.Update != nil:
		r, ok := m.store.Update(caller, *a.Update.ID, a.Update.Patch)
		if ok {
			m.hooks.change("update", caller, r)
		}
		reply = RecordReply(r, ok)
	case a.GetByID != nil:
		reply = RecordReply(m.store.GetByID(*a.GetByID))
	case a.GetByName != nil:
		reply = RecordsReply(m.store.GetByName(*a.GetByName))
	case a.GetByDescription != nil:
		reply = RecordsReply(m.store.GetByDescription(*a.GetByDescription))
	}

	ok := found(reply)
	m.hooks.action(SurfaceHandle, name, ok)
	if a.Register != nil || a.Remove != nil || a.Update != nil {
		fields := []zap.Field{
			zap.String("action", name),
			zap.String("caller", caller.String()),
			zap.Bool("found", ok),
		}
		if reply.Record != nil {
			fields = append(fields, zap.Uint32("id", reply.Record.ID))
		}
		m.log.Info("dns mutation", fields...)
	}
	return reply, nil
}

// HandleRaw decodes payload and runs it. A decode failure touches nothing.
func (m *Mutations) HandleRaw(caller registry.Identity, payload []byte) (Reply, error) {
	a, err := DecodeAction(payload)
	if err != nil {
		return Reply{}, err
	}
	return m.Handle(caller, a)
}

// Queries serves the read-only surface.
type Queries struct {
	store *registry.Store
	hooks Hooks
}

func NewQueries(store *registry.Store, hooks Hooks) *Queries {
	return &Queries{store: store, hooks: hooks}
}

func (q *Queries) Handle(a QueryAction) (Reply, error) {
	name, err := a.Name()
	if err != nil {
		return Reply{}, err
	}

	var reply Reply
	switch {
	case a.GetAll != nil:
		reply = RecordsReply(q.store.All())
	case a.GetByID != nil:
		reply = RecordReply(q.store.GetByID(*a.GetByID))
	case a.GetByName != nil:
		reply = RecordsReply(q.store.GetByName(*a.GetByName))
	case a.GetByCreator != nil:
		reply = RecordsReply(q.store.GetByCreator(*a.GetByCreator))
	case a.GetByDescription != nil:
		reply = RecordsReply(q.store.GetByDescription(*a.GetByDescription))
	case a.GetByPattern != nil:
		reply = RecordsReply(q.store.GetByPattern(*a.GetByPattern))
	}
	q.hooks.action(SurfaceState, name, found(reply))
	return reply, nil
}

func (q *Queries) HandleRaw(payload []byte) (Reply, error) {
	a, err := DecodeQuery(payload)
	if err != nil {
		return Reply{}, err
	}
	return q.Handle(a)
}
