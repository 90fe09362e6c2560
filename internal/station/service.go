package station

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/packline/scanstation/internal/quotation"
)

// ErrNotConfigured is returned when a scan is requested before the
// quotation-database connection has been saved.
var ErrNotConfigured = errors.New("quotation database not configured")

// StoreOpener connects to the quotation database described by cfg.
type StoreOpener func(cfg quotation.StoreConfig) (quotation.ScanStore, error)

// defaultOpener connects with the real GORM store
func defaultOpener(cfg quotation.StoreConfig) (quotation.ScanStore, error) {
	return quotation.Open(cfg)
}

// Service ties together the operator directory, the saved connection
// settings, and the scan processor.
type Service struct {
	db        DB
	openStore StoreOpener
	loc       *time.Location
	clock     quotation.Clock
}

// NewService creates a new Service connecting to real quotation databases.
func NewService(db DB, loc *time.Location) *Service {
	return NewServiceWithDeps(db, loc, defaultOpener, nil)
}

// NewServiceWithDeps creates a new Service with custom dependencies for
// testing. A nil clock uses the wall clock.
func NewServiceWithDeps(db DB, loc *time.Location, opener StoreOpener, clock quotation.Clock) *Service {
	return &Service{
		db:        db,
		openStore: opener,
		loc:       loc,
		clock:     clock,
	}
}

// AddUser creates a named operator
func (s *Service) AddUser(name string) (*User, error) {
	return s.db.AddUser(name)
}

// ListUsers returns all operators sorted by name
func (s *Service) ListUsers() ([]*User, error) {
	return s.db.ListUsers()
}

// DeleteUser removes an operator, reporting whether it existed
func (s *Service) DeleteUser(id uint64) (bool, error) {
	return s.db.DeleteUser(id)
}

// SaveConnection stores the quotation-database configuration
func (s *Service) SaveConnection(cfg *ConnectionConfig) error {
	return s.db.SaveConnection(cfg)
}

// GetConnection retrieves the saved configuration, nil when unset
func (s *Service) GetConnection() (*ConnectionConfig, error) {
	return s.db.GetConnection()
}

// TestConnection opens the quotation database with the supplied
// credentials and pings it.
func (s *Service) TestConnection(cfg *ConnectionConfig) error {
	store, err := s.openStore(storeConfig(cfg))
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Ping()
}

// ProcessScan records a scan against the saved quotation database. The
// station connects per scan, the way a settings change expects: new
// credentials take effect on the next scan without a restart.
func (s *Service) ProcessScan(quotationNumber, operator string) (*quotation.ScanResult, error) {
	cfg, err := s.db.GetConnection()
	if err != nil {
		return nil, fmt.Errorf("loading connection config: %w", err)
	}
	if cfg == nil {
		return nil, ErrNotConfigured
	}

	store, err := s.openStore(storeConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("connecting to quotation database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close quotation store", "error", err)
		}
	}()

	var processor *quotation.Processor
	if s.clock != nil {
		processor = quotation.NewProcessorWithClock(store, s.loc, s.clock)
	} else {
		processor = quotation.NewProcessor(store, s.loc)
	}

	return processor.Process(strings.TrimSpace(quotationNumber), strings.TrimSpace(operator))
}

// storeConfig maps the saved settings onto the store's configuration
func storeConfig(cfg *ConnectionConfig) quotation.StoreConfig {
	return quotation.StoreConfig{
		Driver:   cfg.Driver,
		Server:   cfg.Server,
		Database: cfg.Database,
		Username: cfg.Username,
		Password: cfg.Password,
	}
}
