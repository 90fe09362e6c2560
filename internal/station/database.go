package station

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const (
	userBucketName     = "users"
	settingsBucketName = "settings"

	connectionKey = "connection"
)

// ErrUserExists is returned when adding a user whose name is taken.
var ErrUserExists = errors.New("user already exists")

// DB defines the interface for the station's local database: the operator
// directory and the saved quotation-database connection.
type DB interface {
	// AddUser creates a named operator; names are unique
	AddUser(name string) (*User, error)

	// ListUsers returns all operators sorted by name
	ListUsers() ([]*User, error)

	// DeleteUser removes an operator, reporting whether it existed
	DeleteUser(id uint64) (bool, error)

	// SaveConnection stores the quotation-database configuration
	SaveConnection(cfg *ConnectionConfig) error

	// GetConnection retrieves the saved configuration, nil when unset
	GetConnection() (*ConnectionConfig, error)

	// Close closes the database
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(userBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(settingsBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// AddUser creates a named operator; names are unique
func (b *BoltDB) AddUser(name string) (*User, error) {
	var user *User
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(userBucketName))

		var taken bool
		err := bucket.ForEach(func(k, v []byte) error {
			var existing User
			if err := json.Unmarshal(v, &existing); err != nil {
				return fmt.Errorf("unmarshaling user: %w", err)
			}
			if strings.EqualFold(existing.Name, name) {
				taken = true
			}
			return nil
		})
		if err != nil {
			return err
		}
		if taken {
			return ErrUserExists
		}

		id, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("allocating user id: %w", err)
		}

		user = &User{
			ID:        id,
			Name:      name,
			CreatedAt: time.Now(),
		}
		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("marshaling user: %w", err)
		}
		return bucket.Put(userKey(id), data)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns all operators sorted by name
func (b *BoltDB) ListUsers() ([]*User, error) {
	users := make([]*User, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(userBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var user User
			if err := json.Unmarshal(v, &user); err != nil {
				return fmt.Errorf("unmarshaling user: %w", err)
			}
			users = append(users, &user)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool {
		return strings.ToLower(users[i].Name) < strings.ToLower(users[j].Name)
	})
	return users, nil
}

// DeleteUser removes an operator, reporting whether it existed
func (b *BoltDB) DeleteUser(id uint64) (bool, error) {
	var existed bool
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(userBucketName))
		key := userKey(id)
		if bucket.Get(key) == nil {
			return nil
		}
		existed = true
		return bucket.Delete(key)
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

// SaveConnection stores the quotation-database configuration
func (b *BoltDB) SaveConnection(cfg *ConnectionConfig) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(settingsBucketName))
		data, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshaling connection config: %w", err)
		}
		return bucket.Put([]byte(connectionKey), data)
	})
}

// GetConnection retrieves the saved configuration, nil when unset
func (b *BoltDB) GetConnection() (*ConnectionConfig, error) {
	var cfg *ConnectionConfig
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(settingsBucketName))
		data := bucket.Get([]byte(connectionKey))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &cfg)
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Close closes the database
func (b *BoltDB) Close() error {
	return b.db.Close()
}

// userKey encodes a user ID as a big-endian bucket key
func userKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}
