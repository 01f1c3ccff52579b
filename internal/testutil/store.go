// Package testutil repositorios en memoria y helpers para pruebas de casos de uso y handlers.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/beanstock-api/internal/domain"
	"github.com/jhoicas/beanstock-api/internal/domain/entity"
	"github.com/jhoicas/beanstock-api/internal/domain/repository"
)

// Store base en memoria con las mismas reglas que el esquema postgres:
// email único, cascada de user_roles/stock_conditions/access_tokens al borrar usuario.
type Store struct {
	mu        sync.Mutex
	users     map[int64]entity.User
	roles     map[int64]entity.Role
	userRoles map[int64]map[int64]bool
	stocks    map[int64]entity.StockCondition
	tokens    map[string]entity.AccessToken
	nextUser  int64
	nextStock int64

	// FailAssign si no es nil, RoleRepository.Assign devuelve este error (para probar rollback).
	FailAssign error
}

// NewStore base vacía con los roles Admin (1) y Farmer (2).
func NewStore() *Store {
	s := &Store{
		users:     map[int64]entity.User{},
		roles:     map[int64]entity.Role{},
		userRoles: map[int64]map[int64]bool{},
		stocks:    map[int64]entity.StockCondition{},
		tokens:    map[string]entity.AccessToken{},
		nextUser:  1,
		nextStock: 1,
	}
	s.roles[entity.RoleAdminID] = entity.Role{ID: entity.RoleAdminID, Name: entity.RoleAdmin}
	s.roles[entity.RoleFarmerID] = entity.Role{ID: entity.RoleFarmerID, Name: entity.RoleFarmer}
	return s
}

func (s *Store) Users() repository.UserRepository            { return userRepo{s} }
func (s *Store) Roles() repository.RoleRepository            { return roleRepo{s} }
func (s *Store) Stocks() repository.StockConditionRepository { return stockRepo{s} }
func (s *Store) Tokens() repository.TokenRepository          { return tokenRepo{s} }

// TxRunner ejecuta fn y restaura el estado anterior si devuelve error.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// TxRunner implementa auth.TxRunner sobre el Store.
type TxRunner struct{ s *Store }

func (t *TxRunner) Run(ctx context.Context, fn func(users repository.UserRepository, roles repository.RoleRepository) error) error {
	snap := t.s.snapshot()
	if err := fn(userRepo{t.s}, roleRepo{t.s}); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	users     map[int64]entity.User
	userRoles map[int64]map[int64]bool
	nextUser  int64
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{users: map[int64]entity.User{}, userRoles: map[int64]map[int64]bool{}, nextUser: s.nextUser}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.userRoles {
		m := map[int64]bool{}
		for r := range v {
			m[r] = true
		}
		snap.userRoles[k] = m
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.userRoles = snap.userRoles
	s.nextUser = snap.nextUser
}

// roleNames nombres de roles del usuario ordenados por id de rol. Requiere s.mu tomado.
func (s *Store) roleNames(userID int64) []string {
	ids := make([]int64, 0, len(s.userRoles[userID]))
	for id := range s.userRoles[userID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, s.roles[id].Name)
	}
	return names
}

func (s *Store) loadUser(u entity.User) *entity.User {
	u.Roles = s.roleNames(u.ID)
	return &u
}

// ── users ────────────────────────────────────────────────────────────────────

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.users {
		if other.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	if u.ID == 0 {
		u.ID = r.s.nextUser
	}
	if u.ID >= r.s.nextUser {
		r.s.nextUser = u.ID + 1
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
		u.UpdatedAt = u.CreatedAt
	}
	stored := *u
	stored.Roles = nil
	r.s.users[u.ID] = stored
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return r.s.loadUser(u), nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return r.s.loadUser(u), nil
		}
	}
	return nil, nil
}

func (r userRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for _, other := range r.s.users {
		if other.ID != u.ID && other.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	cur.Name, cur.Email, cur.PasswordHash, cur.UpdatedAt = u.Name, u.Email, u.PasswordHash, u.UpdatedAt
	r.s.users[u.ID] = cur
	return nil
}

func (r userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	delete(r.s.userRoles, id)
	for sid, st := range r.s.stocks {
		if st.UserID == id {
			delete(r.s.stocks, sid)
		}
	}
	for tid, tok := range r.s.tokens {
		if tok.UserID == id {
			delete(r.s.tokens, tid)
		}
	}
	return nil
}

func (r userRepo) ListByRole(_ context.Context, roleName string) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.User
	for _, u := range r.s.users {
		for _, name := range r.s.roleNames(u.ID) {
			if name == roleName {
				out = append(out, r.s.loadUser(u))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ── roles ────────────────────────────────────────────────────────────────────

type roleRepo struct{ s *Store }

func (r roleRepo) GetByName(_ context.Context, name string) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, role := range r.s.roles {
		if role.Name == name {
			out := role
			return &out, nil
		}
	}
	return nil, nil
}

func (r roleRepo) GetByID(_ context.Context, id int64) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, nil
	}
	return &role, nil
}

func (r roleRepo) List(_ context.Context) ([]*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		role := role
		out = append(out, &role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r roleRepo) Assign(_ context.Context, userID, roleID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailAssign != nil {
		return r.s.FailAssign
	}
	if err := r.s.checkUserRole(userID, roleID); err != nil {
		return err
	}
	if r.s.userRoles[userID] == nil {
		r.s.userRoles[userID] = map[int64]bool{}
	}
	r.s.userRoles[userID][roleID] = true
	u := r.s.users[userID]
	u.RoleID = roleID
	r.s.users[userID] = u
	return nil
}

func (r roleRepo) Sync(_ context.Context, userID, roleID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkUserRole(userID, roleID); err != nil {
		return err
	}
	r.s.userRoles[userID] = map[int64]bool{roleID: true}
	u := r.s.users[userID]
	u.RoleID = roleID
	r.s.users[userID] = u
	return nil
}

func (r roleRepo) NamesForUser(_ context.Context, userID int64) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.roleNames(userID), nil
}

func (s *Store) checkUserRole(userID, roleID int64) error {
	if _, ok := s.users[userID]; !ok {
		return fmt.Errorf("user_roles: usuario %d: %w", userID, domain.ErrUserNotFound)
	}
	if _, ok := s.roles[roleID]; !ok {
		return fmt.Errorf("user_roles: rol %d: %w", roleID, domain.ErrNotFound)
	}
	return nil
}

// ── stock_conditions ─────────────────────────────────────────────────────────

type stockRepo struct{ s *Store }

func (r stockRepo) Create(_ context.Context, st *entity.StockCondition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[st.UserID]; !ok {
		return errors.New("stock_conditions: user_id no existe")
	}
	st.ID = r.s.nextStock
	r.s.nextStock++
	stored := *st
	stored.Owner = nil
	r.s.stocks[st.ID] = stored
	return nil
}

func (r stockRepo) GetByID(_ context.Context, id int64) (*entity.StockCondition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stocks[id]
	if !ok {
		return nil, nil
	}
	return r.s.withOwner(st), nil
}

func (r stockRepo) Update(_ context.Context, st *entity.StockCondition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.stocks[st.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored := *st
	stored.UserID = cur.UserID
	stored.CreatedAt = cur.CreatedAt
	stored.Owner = nil
	r.s.stocks[st.ID] = stored
	return nil
}

func (r stockRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stocks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.stocks, id)
	return nil
}

func (r stockRepo) List(_ context.Context, f repository.StockFilter) ([]*entity.StockCondition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if f.Offset < 0 || f.Limit < 0 {
		return nil, fmt.Errorf("LIMIT/OFFSET must not be negative: limit=%d offset=%d", f.Limit, f.Offset)
	}
	all := r.s.filtered(f)
	if f.Offset > 0 {
		if f.Offset >= len(all) {
			return []*entity.StockCondition{}, nil
		}
		all = all[f.Offset:]
	}
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, nil
}

func (r stockRepo) Count(_ context.Context, f repository.StockFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.filtered(f)), nil
}

func (r stockRepo) Summary(_ context.Context) (*repository.StockSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := &repository.StockSummary{AvgTemperature: decimal.Zero, AvgHumidity: decimal.Zero}
	if len(r.s.stocks) == 0 {
		return out, nil
	}
	owners := map[int64]bool{}
	temp, hum := decimal.Zero, decimal.Zero
	for _, st := range r.s.stocks {
		owners[st.UserID] = true
		temp = temp.Add(decimal.NewFromFloat(st.Temperature))
		hum = hum.Add(decimal.NewFromFloat(st.Humidity))
	}
	n := decimal.NewFromInt(int64(len(r.s.stocks)))
	out.DistinctOwners = len(owners)
	out.AvgTemperature = temp.Div(n)
	out.AvgHumidity = hum.Div(n)
	return out, nil
}

func (r stockRepo) Latest(_ context.Context) (*entity.StockCondition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.s.filtered(repository.StockFilter{})
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

// filtered registros del filtro, más recientes primero. Requiere s.mu tomado.
func (s *Store) filtered(f repository.StockFilter) []*entity.StockCondition {
	out := []*entity.StockCondition{}
	for _, st := range s.stocks {
		if f.UserID != nil && st.UserID != *f.UserID {
			continue
		}
		out = append(out, s.withOwner(st))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) withOwner(st entity.StockCondition) *entity.StockCondition {
	if u, ok := s.users[st.UserID]; ok {
		st.Owner = u.Summary()
	}
	return &st
}

// ── access_tokens ────────────────────────────────────────────────────────────

type tokenRepo struct{ s *Store }

func (r tokenRepo) Create(_ context.Context, t *entity.AccessToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tokens[t.ID] = *t
	return nil
}

func (r tokenRepo) IsActive(_ context.Context, id string, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[id]
	if !ok || t.RevokedAt != nil {
		return false, nil
	}
	return now.Before(t.ExpiresAt), nil
}

func (r tokenRepo) Revoke(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[id]
	if !ok {
		return nil
	}
	t.RevokedAt = &at
	r.s.tokens[id] = t
	return nil
}
