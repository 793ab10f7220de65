package model

type Certificate struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title" validate:"required"`
	Issuer      string `json:"issuer,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	IssuedOn    string `json:"issuedOn,omitempty"`
	Description string `json:"description,omitempty"`
	Timestamps
}

func (c Certificate) RecordID() string { return c.ID }

func (c Certificate) WithDefaults() Certificate {
	c.Issuer = orDefault(c.Issuer, "Unknown issuer")
	return c
}
