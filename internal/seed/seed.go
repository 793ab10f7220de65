// Package seed fills a tenant with believable demo records so the console has
// something to page through.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/jwalitptl/admin-console/internal/handler/record"
	"github.com/jwalitptl/admin-console/internal/model"
	"github.com/jwalitptl/admin-console/internal/repository"
	"github.com/jwalitptl/admin-console/pkg/logger"
)

const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "admin123"
)

type Options struct {
	Tenant string
	// Count is the number of customers and leads; the other collections are
	// sized relative to it.
	Count int
	// Random makes runs reproducible. Zero picks a random seed.
	Random        uint64
	AdminEmail    string
	AdminPassword string
}

// Summary counts what was written per collection.
type Summary map[string]int

type seeder struct {
	repo    repository.RecordRepository
	prepare map[string]record.PrepareFunc
	faker   *gofakeit.Faker
	opts    Options
	summary Summary
}

// Seed writes demo data for opts.Tenant. A tenant that already has staff is
// left alone.
func Seed(ctx context.Context, repo repository.RecordRepository, resources []record.Resource, opts Options, log *logger.Logger) (Summary, error) {
	log = logger.OrNop(log)
	if opts.Tenant == "" {
		return nil, fmt.Errorf("seed tenant is required")
	}
	if opts.AdminEmail == "" {
		opts.AdminEmail = DefaultAdminEmail
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = DefaultAdminPassword
	}

	existing, err := repo.Count(ctx, opts.Tenant, "staff")
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		log.Info("tenant already seeded", "tenant", opts.Tenant, "staff", existing)
		return Summary{}, nil
	}

	s := &seeder{
		repo:    repo,
		prepare: make(map[string]record.PrepareFunc, len(resources)),
		faker:   gofakeit.New(opts.Random),
		opts:    opts,
		summary: Summary{},
	}
	for _, res := range resources {
		s.prepare[res.Name] = res.Prepare
	}

	roleIDs, err := s.roles(ctx)
	if err != nil {
		return nil, err
	}
	staffIDs, err := s.staff(ctx, roleIDs)
	if err != nil {
		return nil, err
	}
	for _, step := range []func(context.Context, []string) error{
		s.customers, s.leads, s.faqs, s.certificates, s.callLogs,
	} {
		if err := step(ctx, staffIDs); err != nil {
			return nil, err
		}
	}

	log.Info("tenant seeded", "tenant", opts.Tenant, "records", s.summary)
	return s.summary, nil
}

func (s *seeder) create(ctx context.Context, resource string, v interface{}) (string, error) {
	doc, err := toDocument(v)
	if err != nil {
		return "", err
	}
	if prepare := s.prepare[resource]; prepare != nil {
		if doc, err = prepare(doc, true); err != nil {
			return "", fmt.Errorf("seed %s: %w", resource, err)
		}
	}

	created, err := s.repo.Create(ctx, s.opts.Tenant, resource, doc)
	if err != nil {
		return "", fmt.Errorf("seed %s: %w", resource, err)
	}
	s.summary[resource]++
	return created.ID(), nil
}

func (s *seeder) roles(ctx context.Context) ([]string, error) {
	roles := []model.Role{
		{Name: "Administrator", Description: "Full access", Permissions: []string{"*"}},
		{Name: "Sales Agent", Description: "Works the lead pipeline", Permissions: []string{"leads:read", "leads:write", "customers:read"}},
		{Name: "Support", Description: "Answers customers", Permissions: []string{"customers:read", "faqs:write"}},
	}

	ids := make([]string, 0, len(roles))
	for _, r := range roles {
		id, err := s.create(ctx, "roles", r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *seeder) staff(ctx context.Context, roleIDs []string) ([]string, error) {
	f := s.faker

	admin := model.Staff{
		Name:       "Console Admin",
		Email:      s.opts.AdminEmail,
		RoleID:     roleIDs[0],
		SuperAdmin: true,
		Password:   s.opts.AdminPassword,
	}
	adminID, err := s.create(ctx, "staff", admin)
	if err != nil {
		return nil, err
	}

	ids := []string{adminID}
	for i := 0; i < max(2, s.opts.Count/5); i++ {
		first, last := f.FirstName(), f.LastName()
		member := model.Staff{
			Name:     first + " " + last,
			Email:    fmt.Sprintf("%s.%s%d@example.com", slug(first), slug(last), i),
			Phone:    f.Phone(),
			RoleID:   roleIDs[1+i%(len(roleIDs)-1)],
			Status:   f.RandomString([]string{"active", "active", "active", "inactive"}),
			Password: f.Password(true, true, true, false, false, 12),
		}
		id, err := s.create(ctx, "staff", member)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *seeder) customers(ctx context.Context, _ []string) error {
	f := s.faker
	for i := 0; i < s.opts.Count; i++ {
		c := model.Customer{
			Name:    f.Name(),
			Email:   uniqueEmail(f, i),
			Phone:   f.Phone(),
			Company: f.Company(),
			Address: f.Address().Address,
			Status:  f.RandomString([]string{model.CustomerStatusActive, model.CustomerStatusActive, model.CustomerStatusInactive}),
		}
		if _, err := s.create(ctx, "customers", c); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) leads(ctx context.Context, staffIDs []string) error {
	f := s.faker
	for i := 0; i < s.opts.Count; i++ {
		l := model.Lead{
			Name:   f.Name(),
			Email:  uniqueEmail(f, i),
			Phone:  f.Phone(),
			Source: f.RandomString([]string{"website", "referral", "ivr", "campaign"}),
			Status: f.RandomString(model.LeadStatuses),
			Notes:  f.Sentence(8),
		}
		// Roughly half of the fresh leads stay unassigned for bulk assignment.
		if l.Status != model.LeadStatusNew || f.Bool() {
			l.AssignedTo = f.RandomString(staffIDs)
		}
		if _, err := s.create(ctx, "leads", l); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) faqs(ctx context.Context, _ []string) error {
	f := s.faker
	categories := []string{"general", "orders", "shipping", "returns", "payments"}
	for i := 0; i < max(3, s.opts.Count/2); i++ {
		q := model.FAQ{
			Question: f.Question(),
			Answer:   f.Paragraph(1, 3, 12, " "),
			Category: categories[i%len(categories)],
			Position: i + 1,
		}
		if _, err := s.create(ctx, "faqs", q); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) certificates(ctx context.Context, _ []string) error {
	f := s.faker
	for i := 0; i < max(2, s.opts.Count/4); i++ {
		c := model.Certificate{
			Title:       f.BuzzWord() + " " + f.RandomString([]string{"Certified", "Award", "Accreditation"}),
			Issuer:      f.Company(),
			ImageURL:    fmt.Sprintf("https://picsum.photos/seed/cert%d/400/300", i),
			IssuedOn:    f.Date().Format("2006-01-02"),
			Description: f.Sentence(10),
		}
		if _, err := s.create(ctx, "certificates", c); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) callLogs(ctx context.Context, staffIDs []string) error {
	f := s.faker
	for i := 0; i < s.opts.Count; i++ {
		status := f.RandomString([]string{"completed", "completed", "missed", "voicemail"})
		duration := 0
		if status == "completed" {
			duration = f.Number(15, 1800)
		}
		l := model.CallLog{
			Caller:    f.Phone(),
			Receiver:  f.Phone(),
			Agent:     f.RandomString(staffIDs),
			Direction: f.RandomString([]string{model.CallInbound, model.CallOutbound}),
			Status:    status,
			Duration:  duration,
		}
		if status == "completed" {
			l.RecordingURL = fmt.Sprintf("https://recordings.example.com/%s.mp3", f.UUID())
		}
		if _, err := s.create(ctx, "call-logs", l); err != nil {
			return err
		}
	}
	return nil
}

func slug(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, s)
}

// uniqueEmail suffixes the index so generated emails never collide.
func uniqueEmail(f *gofakeit.Faker, i int) string {
	user, domain, ok := strings.Cut(f.Email(), "@")
	if !ok {
		return fmt.Sprintf("user%d@example.com", i)
	}
	return fmt.Sprintf("%s%d@%s", user, i, domain)
}

func toDocument(v interface{}) (repository.Document, error) {
	doc := repository.Document{}
	switch val := v.(type) {
	case repository.Document:
		return val, nil
	default:
		if err := record.Convert(val, &doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
