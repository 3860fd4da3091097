// cinechat/sources/localstore/store.go
package localstore

import (
	"cinechat/cinechat/utils/types"
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	keyToken    = "token"
	keyUsername = "username"
	keyEmail    = "email"
)

// Entry is one key-value row. The localstore is the client's only
// durable state: the identity written at login and cleared at logout.
type Entry struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

func (Entry) TableName() string {
	return "kv_entries"
}

type Store struct {
	db *gorm.DB
}

// NewStore opens (or creates) the sqlite file at path. Use ":memory:"
// in tests.
func NewStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(key string) (string, error) {
	var entry Entry
	err := s.db.First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

func (s *Store) Set(key, value string) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&Entry{Key: key, Value: value}).Error
}

func (s *Store) Delete(key string) error {
	return s.db.Delete(&Entry{}, "key = ?", key).Error
}

// Identity reads the persisted identity; a zero Identity means no one is
// logged in.
func (s *Store) Identity() (types.Identity, error) {
	token, err := s.Get(keyToken)
	if err != nil {
		return types.Identity{}, err
	}
	username, err := s.Get(keyUsername)
	if err != nil {
		return types.Identity{}, err
	}
	email, err := s.Get(keyEmail)
	if err != nil {
		return types.Identity{}, err
	}
	return types.Identity{Token: token, Username: username, Email: email}, nil
}

func (s *Store) SaveIdentity(id types.Identity) error {
	if err := s.Set(keyToken, id.Token); err != nil {
		return err
	}
	if err := s.Set(keyUsername, id.Username); err != nil {
		return err
	}
	return s.Set(keyEmail, id.Email)
}

func (s *Store) ClearIdentity() error {
	for _, key := range []string{keyToken, keyUsername, keyEmail} {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
