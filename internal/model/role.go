package model

type Role struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Timestamps
}

func (r Role) RecordID() string { return r.ID }

func (r Role) WithDefaults() Role {
	if r.Permissions == nil {
		r.Permissions = []string{}
	}
	return r
}

func (r Role) Option() Option {
	return Option{ID: r.ID, Name: r.Name}
}
