package registry

// Record is a named entry owned by the identity that registered it.
type Record struct {
	ID          uint32   `json:"id"`
	Name        string   `json:"name"`
	Link        string   `json:"link"`
	Description string   `json:"description"`
	CreatedBy   Identity `json:"created_by"`
}

// Patch carries the optional fields of an update. Nil fields are left untouched.
type Patch struct {
	Name        *string `json:"name,omitempty"`
	Link        *string `json:"link,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (p Patch) apply(r *Record) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Link != nil {
		r.Link = *p.Link
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
}
