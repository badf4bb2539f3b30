package repository

import (
	"sync"

	"github.com/ManuelReschke/SlotSync/internal/pkg/security"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db     *gorm.DB
	cipher *security.TokenCipher
	rdb    *redis.Client
	repos  *Repositories
	once   sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB, cipher *security.TokenCipher, rdb *redis.Client) *Factory {
	return &Factory{
		db:     db,
		cipher: cipher,
		rdb:    rdb,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db, f.cipher, f.rdb)
	})
	return f.repos
}
