package dispatch

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/joeydtaylor/steeze-dns/pkg/registry"
)

// Reply is either a single optional record or a list of records.
// Both surfaces share it.
type Reply struct {
	Record  *registry.Record
	Records []registry.Record
	list    bool
}

// RecordReply wraps an optional record. ok=false encodes as null.
func RecordReply(r registry.Record, ok bool) Reply {
	if !ok {
		return Reply{}
	}
	return Reply{Record: &r}
}

// RecordsReply wraps a list. A nil list encodes as [].
func RecordsReply(rs []registry.Record) Reply {
	if rs == nil {
		rs = []registry.Record{}
	}
	return Reply{Records: rs, list: true}
}

// IsList reports whether r is a Records reply.
func (r Reply) IsList() bool { return r.list }

func (r Reply) MarshalJSON() ([]byte, error) {
	if r.list {
		return json.Marshal(struct {
			Records []registry.Record `json:"records"`
		}{r.Records})
	}
	return json.Marshal(struct {
		Record *registry.Record `json:"record"`
	}{r.Record})
}

func (r *Reply) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return errors.Newf("reply: expected one key, got %d", len(raw))
	}
	if v, ok := raw["record"]; ok {
		*r = Reply{}
		return json.Unmarshal(v, &r.Record)
	}
	if v, ok := raw["records"]; ok {
		var rs []registry.Record
		if err := json.Unmarshal(v, &rs); err != nil {
			return err
		}
		*r = RecordsReply(rs)
		return nil
	}
	return errors.New("reply: unknown variant")
}
