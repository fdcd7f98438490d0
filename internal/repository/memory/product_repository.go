package memory

import (
	"errors"
	"strconv"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateName indicates another record already uses the name.
	ErrDuplicateName = errors.New("record name already registered")
	// ErrUserExists indicates the login is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrBadCredentials indicates an unknown login or a wrong password.
	ErrBadCredentials = errors.New("bad credentials")
)

// ProductRepository keeps records in insertion order and assigns numeric ids.
type ProductRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  []models.Record
}

// NewProductRepository creates a repository seeded with records; their ids are reassigned.
func NewProductRepository(seed ...models.RecordFields) *ProductRepository {
	repo := &ProductRepository{}
	for _, f := range seed {
		_, _ = repo.Create(f)
	}
	return repo
}

// List returns every record.
func (r *ProductRepository) List() []models.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Record, len(r.items))
	copy(out, r.items)
	return out
}

// Create stores a new record, rejecting duplicate names.
func (r *ProductRepository) Create(fields models.RecordFields) (models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.Name == fields.Name {
			return models.Record{}, ErrDuplicateName
		}
	}

	r.nextID++
	record := models.Record{
		ID:        strconv.FormatInt(r.nextID, 10),
		Name:      fields.Name,
		UnitPrice: fields.UnitPrice,
		Category:  fields.Category,
		Quantity:  fields.Quantity,
	}
	r.items = append(r.items, record)
	return record, nil
}

// Update overwrites every field of an existing record.
func (r *ProductRepository) Update(id string, fields models.RecordFields) (models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, item := range r.items {
		if item.ID != id {
			continue
		}
		r.items[i] = models.Record{
			ID:        id,
			Name:      fields.Name,
			UnitPrice: fields.UnitPrice,
			Category:  fields.Category,
			Quantity:  fields.Quantity,
		}
		return r.items[i], nil
	}
	return models.Record{}, ErrNotFound
}

// Delete removes a record.
func (r *ProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, item := range r.items {
		if item.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// UserRepository stores bcrypt password hashes by login.
type UserRepository struct {
	mu     sync.RWMutex
	hashes map[string][]byte
	roles  map[string]string
}

// NewUserRepository creates a repository seeded with login/password pairs.
func NewUserRepository(users map[string]string) (*UserRepository, error) {
	repo := &UserRepository{hashes: make(map[string][]byte), roles: make(map[string]string)}
	for login, password := range users {
		if err := repo.Register(login, password, "ADMIN"); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// Register adds a user.
func (r *UserRepository) Register(login, password, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.hashes[login]; exists {
		return ErrUserExists
	}
	r.hashes[login] = hash
	r.roles[login] = role
	return nil
}

// Authenticate checks a login/password pair.
func (r *UserRepository) Authenticate(login, password string) error {
	r.mu.RLock()
	hash, ok := r.hashes[login]
	r.mu.RUnlock()
	if !ok {
		return ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrBadCredentials
	}
	return nil
}

// Exists reports whether login is registered.
func (r *UserRepository) Exists(login string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.hashes[login]
	return ok
}
