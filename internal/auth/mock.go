// Package auth holds the local, replaceable credential check used by the
// session service. It is a stand-in for a real identity provider.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"clearTask/internal/logger"
	"clearTask/internal/models/user"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrEmailTaken         = errors.New("email уже зарегистрирован")
	ErrUnknownUser        = errors.New("пользователь не найден")
	ErrInvalidInput       = errors.New("email и пароль обязательны")
)

// Seed is one account of the users file. Either Password (plain text fixture)
// or PasswordHash (bcrypt) must be set.
type Seed struct {
	ID           int64  `yaml:"id"`
	Email        string `yaml:"email"`
	Name         string `yaml:"name"`
	Password     string `yaml:"password,omitempty"`
	PasswordHash string `yaml:"password_hash,omitempty"`
}

type usersFile struct {
	Users []Seed `yaml:"users"`
}

// DemoUsers are the accounts available when no users file is configured.
func DemoUsers() []Seed {
	return []Seed{
		{ID: 1, Email: "user1@gmail.com", Name: "Meet", Password: "user"},
		{ID: 2, Email: "user2@gmail.com", Name: "User Two", Password: "user"},
	}
}

// LoadSeeds reads a YAML users file. An empty path yields DemoUsers.
func LoadSeeds(path string) ([]Seed, error) {
	if path == "" {
		return DemoUsers(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение файла пользователей: %w", err)
	}

	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("разбор файла пользователей: %w", err)
	}
	return f.Users, nil
}

type account struct {
	id    int64
	email string
	name  string
	hash  []byte
}

func (a account) user() *user.User {
	return &user.User{ID: a.id, Email: a.email, Name: a.name}
}

type MockProvider struct {
	mtx      sync.RWMutex
	accounts map[string]*account
	nextID   int64
	cost     int
}

type Option func(*MockProvider)

// WithCost sets the bcrypt cost for newly hashed passwords.
func WithCost(cost int) Option {
	return func(p *MockProvider) {
		p.cost = cost
	}
}

func NewMockProvider(seeds []Seed, opts ...Option) (*MockProvider, error) {
	p := &MockProvider{
		accounts: make(map[string]*account),
		cost:     bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(p)
	}

	// explicit ids are reserved first so generated ids never collide with them
	ids := make(map[int64]struct{}, len(seeds))
	for _, s := range seeds {
		if s.ID <= 0 {
			continue
		}
		if _, dup := ids[s.ID]; dup {
			return nil, fmt.Errorf("повторный id %d: %w", s.ID, ErrInvalidInput)
		}
		ids[s.ID] = struct{}{}
		if s.ID > p.nextID {
			p.nextID = s.ID
		}
	}

	for _, s := range seeds {
		key := user.NormalizeEmail(s.Email)
		if key == "" {
			return nil, fmt.Errorf("пользователь %d: %w", s.ID, ErrInvalidInput)
		}
		if _, ok := p.accounts[key]; ok {
			return nil, fmt.Errorf("%s: %w", s.Email, ErrEmailTaken)
		}

		hash := []byte(s.PasswordHash)
		if len(hash) == 0 {
			if s.Password == "" {
				return nil, fmt.Errorf("%s: %w", s.Email, ErrInvalidInput)
			}
			var err error
			if hash, err = bcrypt.GenerateFromPassword([]byte(s.Password), p.cost); err != nil {
				return nil, fmt.Errorf("хеширование пароля: %w", err)
			}
		}

		id := s.ID
		if id <= 0 {
			p.nextID++
			id = p.nextID
		}
		p.accounts[key] = &account{id: id, email: strings.TrimSpace(s.Email), name: s.Name, hash: hash}
	}

	logger.Info("Auth: Загружены пользователи", zap.Int("count", len(p.accounts)))
	return p, nil
}

func (p *MockProvider) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	p.mtx.RLock()
	acc, ok := p.accounts[user.NormalizeEmail(email)]
	p.mtx.RUnlock()

	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return acc.user(), nil
}

// Register adds an account. Emails are unique regardless of case.
func (p *MockProvider) Register(ctx context.Context, email, password, name string) (*user.User, error) {
	key := user.NormalizeEmail(email)
	if key == "" || password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("хеширование пароля: %w", err)
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	if _, ok := p.accounts[key]; ok {
		return nil, ErrEmailTaken
	}
	p.nextID++
	acc := &account{id: p.nextID, email: strings.TrimSpace(email), name: strings.TrimSpace(name), hash: hash}
	p.accounts[key] = acc

	logger.Info("Auth: Зарегистрирован пользователь", zap.Int64("user_id", acc.id))
	return acc.user(), nil
}

func (p *MockProvider) ChangePassword(ctx context.Context, id int64, password string) error {
	if password == "" {
		return ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return fmt.Errorf("хеширование пароля: %w", err)
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	_, acc := p.byID(id)
	if acc == nil {
		return ErrUnknownUser
	}
	acc.hash = hash
	return nil
}

// UpdateProfile changes the name and email of an account. An empty value
// keeps the current one.
func (p *MockProvider) UpdateProfile(ctx context.Context, id int64, email, name string) (*user.User, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	key, acc := p.byID(id)
	if acc == nil {
		return nil, ErrUnknownUser
	}

	if newKey := user.NormalizeEmail(email); newKey != "" && newKey != key {
		if _, ok := p.accounts[newKey]; ok {
			return nil, ErrEmailTaken
		}
		delete(p.accounts, key)
		p.accounts[newKey] = acc
		acc.email = strings.TrimSpace(email)
	}
	if name = strings.TrimSpace(name); name != "" {
		acc.name = name
	}
	return acc.user(), nil
}

// Users lists the accounts ordered by id.
func (p *MockProvider) Users() []user.User {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	res := make([]user.User, 0, len(p.accounts))
	for _, acc := range p.accounts {
		res = append(res, *acc.user())
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (p *MockProvider) byID(id int64) (string, *account) {
	for key, acc := range p.accounts {
		if acc.id == id {
			return key, acc
		}
	}
	return "", nil
}
