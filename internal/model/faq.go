package model

type FAQ struct {
	ID       string `json:"id,omitempty"`
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Category string `json:"category,omitempty"`
	Position int    `json:"position,omitempty"`
	Active   *bool  `json:"active,omitempty"`
	Timestamps
}

func (f FAQ) RecordID() string { return f.ID }

func (f FAQ) WithDefaults() FAQ {
	f.Category = orDefault(f.Category, "general")
	if f.Active == nil {
		active := true
		f.Active = &active
	}
	return f
}
