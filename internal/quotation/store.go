package quotation

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrRecordNotFound is returned when no record matches a quotation number.
var ErrRecordNotFound = errors.New("quotation record not found")

// RecordStore defines the operations the scan processor needs against the
// quotation table. The claim operations are conditional: they only write
// when the target slot is still empty, and report false when another scan
// won the slot first.
type RecordStore interface {
	// FindByQuotationNumber retrieves the record for a quotation number
	FindByQuotationNumber(number string) (*Record, error)

	// ClaimFirstScan sets the first-scan timestamp and the packer,
	// provided the first slot is still empty
	ClaimFirstScan(id uint, timestamp, packer string) (bool, error)

	// ClaimSecondScan sets the second-scan timestamp, provided the
	// second slot is still empty
	ClaimSecondScan(id uint, timestamp string) (bool, error)
}

// ScanStore is a RecordStore with a managed connection.
type ScanStore interface {
	RecordStore

	// Ping verifies the underlying connection is usable
	Ping() error

	// Close releases the underlying connection
	Close() error
}

// StoreConfig holds the connection parameters for the quotation database.
type StoreConfig struct {
	Driver   string // sqlserver, postgres, mysql or sqlite
	Server   string // host or host:port; ignored for sqlite
	Database string // database name; file path for sqlite
	Username string
	Password string
}

// SQLStore implements ScanStore on top of GORM.
type SQLStore struct {
	db *gorm.DB
}

// Open connects to the quotation database described by cfg.
func Open(cfg StoreConfig) (*SQLStore, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "", "sqlserver", "mssql":
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(cfg.Username, cfg.Password),
			Host:     cfg.Server,
			RawQuery: url.Values{"database": {cfg.Database}}.Encode(),
		}
		dialector = sqlserver.Open(u.String())
	case "postgres", "postgresql":
		host, port := splitHostPort(cfg.Server, "5432")
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, cfg.Username, cfg.Password, cfg.Database)
		dialector = postgres.Open(dsn)
	case "mysql":
		host, port := splitHostPort(cfg.Server, "3306")
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&timeout=10s",
			cfg.Username, cfg.Password, host, port, cfg.Database)
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(cfg.Database)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to quotation database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting connection pool: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &SQLStore{db: db}, nil
}

// splitHostPort splits "host:port", falling back to the default port
func splitHostPort(server, defaultPort string) (string, string) {
	host, port, err := net.SplitHostPort(server)
	if err != nil {
		return server, defaultPort
	}
	return host, port
}

// FindByQuotationNumber retrieves the record for a quotation number
func (s *SQLStore) FindByQuotationNumber(number string) (*Record, error) {
	var record Record
	err := s.db.
		Where(clause.Eq{Column: clause.Column{Name: "QuotationNumber"}, Value: number}).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up quotation %s: %w", number, err)
	}
	return &record, nil
}

// ClaimFirstScan writes the first-scan timestamp and packer in a single
// conditional update. The slot-empty predicate and the write travel in
// one statement, so two concurrent scans cannot both claim the slot.
func (s *SQLStore) ClaimFirstScan(id uint, timestamp, packer string) (bool, error) {
	result := s.db.Model(&Record{}).
		Where("id = ?", id).
		Where(slotEmpty("Dop2")).
		Updates(map[string]interface{}{"Dop2": timestamp, "Packer": packer})
	if result.Error != nil {
		return false, fmt.Errorf("claiming first scan: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ClaimSecondScan writes the second-scan timestamp in a single
// conditional update.
func (s *SQLStore) ClaimSecondScan(id uint, timestamp string) (bool, error) {
	result := s.db.Model(&Record{}).
		Where("id = ?", id).
		Where(slotEmpty("Dop3")).
		Updates(map[string]interface{}{"Dop3": timestamp})
	if result.Error != nil {
		return false, fmt.Errorf("claiming second scan: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// slotEmpty matches a slot column that has never been written
func slotEmpty(column string) clause.Expression {
	col := clause.Column{Name: column}
	return clause.Or(
		clause.Eq{Column: col, Value: nil},
		clause.Eq{Column: col, Value: ""},
	)
}

// Ping verifies the underlying connection is usable
func (s *SQLStore) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close releases the underlying connection
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate creates the quotation table. The production table is owned
// by an upstream system; this exists for sqlite targets and tests.
func (s *SQLStore) AutoMigrate() error {
	return s.db.AutoMigrate(&Record{})
}
