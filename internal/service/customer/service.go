package customer

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwalitptl/admin-console/internal/httpclient"
	"github.com/jwalitptl/admin-console/internal/model"
	"github.com/jwalitptl/admin-console/internal/resource"
	"github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/logger"
	"github.com/jwalitptl/admin-console/pkg/metrics"
)

const (
	Path              = "/api/customers"
	ExportPath        = "/api/export-user-data"
	DefaultExportName = "customers-export.xlsx"
)

var filenamePattern = regexp.MustCompile(`filename="?([^";]+)"?`)

// Filters offered on the customer list.
var Filters = []resource.Filter{
	{Key: "status", Label: "Status", Options: []string{model.CustomerStatusActive, model.CustomerStatusInactive}},
}

// Client is what the customer service needs from the HTTP adapter.
type Client interface {
	httpclient.Doer
	Download(ctx context.Context, resource, path string, query url.Values) (*httpclient.Response, error)
}

// Saver stores an exported file and returns where it went.
type Saver interface {
	Save(name string, data []byte) (string, error)
}

type Service struct {
	*resource.Store[model.Customer]
	client Client
	logger *logger.Logger
}

func NewService(client Client, log *logger.Logger, m *metrics.Metrics) *Service {
	log = logger.OrNop(log)
	return &Service{
		Store: resource.NewStore[model.Customer](client, resource.Config[model.Customer]{
			Name:            "customers",
			Path:            Path,
			Normalize:       resource.Defaulted(resource.NormalizeEnvelope[model.Customer], model.Customer.WithDefaults),
			SupportsGetByID: true,
			Metrics:         m,
		}, log),
		client: client,
		logger: log,
	}
}

// Export downloads the customer spreadsheet, optionally for a single user, and
// hands it to saver under the name the backend suggests.
func (s *Service) Export(ctx context.Context, userID string, saver Saver) (string, error) {
	query := url.Values{}
	if userID != "" {
		query.Set("userId", userID)
	}

	resp, err := s.client.Download(ctx, "customers", ExportPath, query)
	if err != nil {
		return "", err
	}

	name := Filename(resp.Header.Get("Content-Disposition"))
	path, err := saver.Save(name, resp.Body)
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to save export: %w", err))
	}

	s.logger.Info("customers exported", "file", path, "bytes", len(resp.Body))
	return path, nil
}

// Filename extracts the file name from a Content-Disposition header, falling
// back to DefaultExportName.
func Filename(disposition string) string {
	m := filenamePattern.FindStringSubmatch(disposition)
	if len(m) < 2 {
		return DefaultExportName
	}
	name := filepath.Base(strings.TrimSpace(m[1]))
	if name == "." || name == "/" || name == "" {
		return DefaultExportName
	}
	return name
}

// DirSaver writes exports into Dir.
type DirSaver struct {
	Dir string
}

func (d DirSaver) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(d.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
