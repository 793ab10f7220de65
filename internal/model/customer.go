package model

const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
)

type Customer struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
	Status  string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Timestamps
}

func (c Customer) RecordID() string { return c.ID }

// WithDefaults fills the optional fields a legacy backend may leave out.
func (c Customer) WithDefaults() Customer {
	c.Status = orDefault(c.Status, CustomerStatusActive)
	return c
}
