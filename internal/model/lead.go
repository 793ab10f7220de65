package model

const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

// LeadStatuses lists the statuses in pipeline order.
var LeadStatuses = []string{
	LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted, LeadStatusLost,
}

type Lead struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone,omitempty"`
	Source     string `json:"source,omitempty"`
	Status     string `json:"status,omitempty" validate:"omitempty,oneof=new contacted qualified converted lost"`
	AssignedTo string `json:"assignedTo,omitempty"`
	Notes      string `json:"notes,omitempty"`
	Timestamps
}

func (l Lead) RecordID() string { return l.ID }

// Eligible reports whether the lead can be picked for bulk assignment.
func (l Lead) Eligible() bool {
	return l.WithDefaults().Status == LeadStatusNew
}

func (l Lead) WithDefaults() Lead {
	l.Status = orDefault(l.Status, LeadStatusNew)
	l.Source = orDefault(l.Source, "website")
	return l
}
