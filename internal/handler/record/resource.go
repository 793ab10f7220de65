package record

import (
	"encoding/json"
	"slices"

	"github.com/jwalitptl/admin-console/internal/handler"
	"github.com/jwalitptl/admin-console/internal/model"
	"github.com/jwalitptl/admin-console/internal/repository"
	"github.com/jwalitptl/admin-console/internal/resource"
	"github.com/jwalitptl/admin-console/internal/service/calllog"
	"github.com/jwalitptl/admin-console/internal/service/certificate"
	"github.com/jwalitptl/admin-console/internal/service/customer"
	"github.com/jwalitptl/admin-console/internal/service/faq"
	"github.com/jwalitptl/admin-console/internal/service/lead"
	"github.com/jwalitptl/admin-console/internal/service/role"
	"github.com/jwalitptl/admin-console/internal/service/staff"
	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/httputil"
	"github.com/jwalitptl/admin-console/pkg/security"
	"github.com/jwalitptl/admin-console/pkg/validator"
)

// PasswordHashField holds a staff member's bcrypt hash. It is never returned.
const PasswordHashField = "passwordHash"

// PrepareFunc validates a document and returns the normalized one to store.
// create is false for updates, where doc is the merged result.
type PrepareFunc func(doc repository.Document, create bool) (repository.Document, error)

// Resource describes one REST collection.
type Resource struct {
	// Name partitions the store and labels errors.
	Name string
	// Path is the collection URL, e.g. /api/customers.
	Path     string
	Envelope httputil.EnvelopeStyle
	// OmitTotalPages leaves totalPages out so clients derive it.
	OmitTotalPages bool
	NoGetByID      bool
	ReadOnly       bool
	// AdminWrites restricts create, update and delete to super admins.
	AdminWrites  bool
	SearchFields []string
	Filters      []string
	Sorts        []string
	// Hidden fields are stripped from responses, Protected ones from request
	// bodies.
	Hidden    []string
	Protected []string
	Prepare   PrepareFunc
}

func (r Resource) allowsFilter(key string) bool {
	return slices.Contains(r.Filters, key)
}

func (r Resource) allowsSort(key string) bool {
	return key == "" || slices.Contains(r.Sorts, key)
}

// Resources returns the collections the console talks to. Customers and leads
// still answer with the older nested envelope; leads never send totalPages.
func Resources(v validator.Validator, hasher security.PasswordHasher) []Resource {
	return []Resource{
		{
			Name:         "customers",
			Path:         customer.Path,
			Envelope:     httputil.LegacyEnvelope,
			SearchFields: []string{"name", "email", "phone", "company"},
			Filters:      filterKeys(customer.Filters),
			Sorts:        []string{"name", "email", "createdAt"},
			Prepare:      Typed(v, func(c *model.Customer, _ bool) error { *c = c.WithDefaults(); return nil }),
		},
		{
			Name:           "leads",
			Path:           lead.Path,
			Envelope:       httputil.LegacyEnvelope,
			OmitTotalPages: true,
			SearchFields:   []string{"name", "email", "phone"},
			Filters:        filterKeys(lead.Filters),
			Sorts:          []string{"name", "status", "createdAt"},
			Prepare:        Typed(v, func(l *model.Lead, _ bool) error { *l = l.WithDefaults(); return nil }),
		},
		{
			Name:         "staff",
			Path:         staff.Path,
			AdminWrites:  true,
			SearchFields: []string{"name", "email", "phone"},
			Filters:      filterKeys(staff.Filters),
			Sorts:        []string{"name", "email", "createdAt"},
			Hidden:       []string{PasswordHashField, "password"},
			Protected:    []string{PasswordHashField},
			Prepare:      prepareStaff(v, hasher),
		},
		{
			Name:         "roles",
			Path:         role.Path,
			NoGetByID:    true,
			AdminWrites:  true,
			SearchFields: []string{"name", "description"},
			Sorts:        []string{"name", "createdAt"},
			Prepare:      Typed(v, func(r *model.Role, _ bool) error { *r = r.WithDefaults(); return nil }),
		},
		{
			Name:         "faqs",
			Path:         faq.Path,
			SearchFields: []string{"question", "answer"},
			Filters:      filterKeys(faq.Filters),
			Sorts:        []string{"position", "question", "createdAt"},
			Prepare:      Typed(v, func(f *model.FAQ, _ bool) error { *f = f.WithDefaults(); return nil }),
		},
		{
			Name:         "certificates",
			Path:         certificate.Path,
			SearchFields: []string{"title", "issuer"},
			Sorts:        []string{"title", "issuedOn", "createdAt"},
			Prepare:      Typed(v, func(c *model.Certificate, _ bool) error { *c = c.WithDefaults(); return nil }),
		},
		{
			Name:         "call-logs",
			Path:         calllog.Path,
			ReadOnly:     true,
			SearchFields: []string{"caller", "receiver", "agent"},
			Filters:      filterKeys(calllog.Filters),
			Sorts:        []string{"duration", "createdAt"},
			Prepare:      Typed(v, func(c *model.CallLog, _ bool) error { *c = c.WithDefaults(); return nil }),
		},
	}
}

// Typed round-trips doc through T so unknown fields are dropped and the
// model's validate tags apply. fn may fill defaults first.
func Typed[T any](v validator.Validator, fn func(t *T, create bool) error) PrepareFunc {
	return func(doc repository.Document, create bool) (repository.Document, error) {
		var t T
		if err := Convert(doc, &t); err != nil {
			return nil, errors.NewBadRequest("malformed record", err)
		}
		if fn != nil {
			if err := fn(&t, create); err != nil {
				return nil, err
			}
		}
		if err := v.Struct(t); err != nil {
			return nil, handler.Invalid(err)
		}

		var out repository.Document
		if err := Convert(t, &out); err != nil {
			return nil, errors.NewInternal(err)
		}
		return out, nil
	}
}

// prepareStaff hashes a new password and otherwise keeps the stored hash.
func prepareStaff(v validator.Validator, hasher security.PasswordHasher) PrepareFunc {
	return func(doc repository.Document, create bool) (repository.Document, error) {
		hash, _ := doc[PasswordHashField].(string)

		var s model.Staff
		if err := Convert(doc, &s); err != nil {
			return nil, errors.NewBadRequest("malformed record", err)
		}
		s = s.WithDefaults()
		s.ConfirmPassword = s.Password
		if err := v.Struct(s); err != nil {
			return nil, handler.Invalid(err)
		}
		if create && s.Password == "" {
			return nil, errors.NewBadRequest("password is required", nil)
		}

		if s.Password != "" {
			var err error
			if hash, err = hasher.Hash(s.Password); err != nil {
				return nil, errors.NewBadRequest(err.Error(), err)
			}
		}
		s.Password = ""

		var out repository.Document
		if err := Convert(s, &out); err != nil {
			return nil, errors.NewInternal(err)
		}
		if hash != "" {
			out[PasswordHashField] = hash
		}
		return out, nil
	}
}

// Convert copies in into out through its JSON form.
func Convert(in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func filterKeys(filters []resource.Filter) []string {
	keys := make([]string, 0, len(filters))
	for _, f := range filters {
		keys = append(keys, f.Key)
	}
	return keys
}
