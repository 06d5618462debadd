package dispatch

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/joeydtaylor/steeze-dns/pkg/codec"
	"github.com/joeydtaylor/steeze-dns/pkg/registry"
)

// ErrDecode marks a request that does not name exactly one known action.
var ErrDecode = errors.New("unable to decode action")

// RegisterArgs are all required.
type RegisterArgs struct {
	Name        *string `json:"name"`
	Link        *string `json:"link"`
	Description *string `json:"description"`
}

func (r RegisterArgs) check() error {
	if r.Name == nil || r.Link == nil || r.Description == nil {
		return errors.Wrap(ErrDecode, "register: name, link and description required")
	}
	return nil
}

// UpdateArgs requires ID; the patch fields are optional.
type UpdateArgs struct {
	ID *uint32 `json:"id"`
	registry.Patch
}

func (u UpdateArgs) check() error {
	if u.ID == nil {
		return errors.Wrap(ErrDecode, "update: id required")
	}
	return nil
}

var (
	actionKeys   = []string{"register", "remove", "update", "getById", "getByName", "getByDescription"}
	queryKeys    = []string{"getAll", "getById", "getByName", "getByCreator", "getByDescription", "getByPattern"}
	registerKeys = []string{"name", "link", "description"}
	updateKeys   = []string{"id", "name", "link", "description"}
)

// Action is a request on the mutating surface. Exactly one field is set.
type Action struct {
	Register         *RegisterArgs `json:"register,omitempty"`
	Remove           *uint32       `json:"remove,omitempty"`
	Update           *UpdateArgs   `json:"update,omitempty"`
	GetByID          *uint32       `json:"getById,omitempty"`
	GetByName        *string       `json:"getByName,omitempty"`
	GetByDescription *string       `json:"getByDescription,omitempty"`
}

// Name returns the wire key of the action. It fails with ErrDecode unless
// exactly one field is set and that field's required arguments are present.
func (a Action) Name() (string, error) {
	name, err := only(
		tag{"register", a.Register != nil},
		tag{"remove", a.Remove != nil},
		tag{"update", a.Update != nil},
		tag{"getById", a.GetByID != nil},
		tag{"getByName", a.GetByName != nil},
		tag{"getByDescription", a.GetByDescription != nil},
	)
	if err != nil {
		return "", err
	}
	switch {
	case a.Register != nil:
		err = a.Register.check()
	case a.Update != nil:
		err = a.Update.check()
	}
	return name, err
}

// QueryAction is a request on the read-only surface. Exactly one field is set.
type QueryAction struct {
	GetAll           *struct{}          `json:"getAll,omitempty"`
	GetByID          *uint32            `json:"getById,omitempty"`
	GetByName        *string            `json:"getByName,omitempty"`
	GetByCreator     *registry.Identity `json:"getByCreator,omitempty"`
	GetByDescription *string            `json:"getByDescription,omitempty"`
	GetByPattern     *string            `json:"getByPattern,omitempty"`
}

func (q QueryAction) Name() (string, error) {
	return only(
		tag{"getAll", q.GetAll != nil},
		tag{"getById", q.GetByID != nil},
		tag{"getByName", q.GetByName != nil},
		tag{"getByCreator", q.GetByCreator != nil},
		tag{"getByDescription", q.GetByDescription != nil},
		tag{"getByPattern", q.GetByPattern != nil},
	)
}

// DecodeAction parses a mutating request.
func DecodeAction(payload []byte) (Action, error) {
	var a Action
	if err := codec.JSONStrict.Unmarshal(payload, &a); err != nil {
		return Action{}, errors.Mark(errors.Wrap(err, "action"), ErrDecode)
	}
	m, err := members(payload, actionKeys)
	if err != nil {
		return Action{}, errors.Wrap(err, "action")
	}
	switch {
	case a.Register != nil:
		_, err = members(m["register"], registerKeys)
	case a.Update != nil:
		_, err = members(m["update"], updateKeys)
	}
	if err != nil {
		return Action{}, err
	}
	if _, err := a.Name(); err != nil {
		return Action{}, err
	}
	return a, nil
}

// DecodeQuery parses a read-only request.
func DecodeQuery(payload []byte) (QueryAction, error) {
	var q QueryAction
	if err := codec.JSONStrict.Unmarshal(payload, &q); err != nil {
		return QueryAction{}, errors.Mark(errors.Wrap(err, "query"), ErrDecode)
	}
	if _, err := members(payload, queryKeys); err != nil {
		return QueryAction{}, errors.Wrap(err, "query")
	}
	if _, err := q.Name(); err != nil {
		return QueryAction{}, err
	}
	return q, nil
}

// members splits a JSON object into its raw values. Keys must match one of
// allowed exactly and appear once; encoding/json alone folds case and keeps
// the last of a repeated key.
func members(raw []byte, allowed []string) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "object"), ErrDecode)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.Wrap(ErrDecode, "expected object")
	}
	out := map[string]json.RawMessage{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "object key"), ErrDecode)
		}
		key, _ := tok.(string)
		if !slices.Contains(allowed, key) {
			return nil, errors.Wrapf(ErrDecode, "unknown key %q", key)
		}
		if _, dup := out[key]; dup {
			return nil, errors.Wrapf(ErrDecode, "repeated key %q", key)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "value of %q", key), ErrDecode)
		}
		out[key] = v
	}
	return out, nil
}

type tag struct {
	name string
	set  bool
}

func only(tags ...tag) (string, error) {
	name := ""
	for _, t := range tags {
		if !t.set {
			continue
		}
		if name != "" {
			return "", errors.Wrapf(ErrDecode, "both %q and %q set", name, t.name)
		}
		name = t.name
	}
	if name == "" {
		return "", errors.Wrap(ErrDecode, "no action set")
	}
	return name, nil
}
