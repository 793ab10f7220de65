package model

// Staff is a back-office user. Password and ConfirmPassword are write-only:
// the backend never returns them and ConfirmPassword is never sent.
type Staff struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone,omitempty"`
	RoleID          string `json:"roleId,omitempty"`
	SuperAdmin      bool   `json:"superAdmin,omitempty"`
	Status          string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Password        string `json:"password,omitempty" validate:"omitempty,min=6"`
	ConfirmPassword string `json:"-" validate:"eqfield=Password"`
	Timestamps
}

func (s Staff) RecordID() string { return s.ID }

func (s Staff) WithDefaults() Staff {
	s.Status = orDefault(s.Status, "active")
	return s
}

func (s Staff) Option() Option {
	return Option{ID: s.ID, Name: s.Name}
}
