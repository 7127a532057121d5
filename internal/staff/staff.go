// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package staff manages platform users from the console: employees with an
// operational role and customers registered through the Telegram bot.
package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"zakazadmin/internal/catalog"
	"zakazadmin/internal/models"
)

// ErrInvalidRole is returned when an employee is given a role outside
// models.StaffRoles.
var ErrInvalidRole = errors.New("invalid employee role")

// UserAPI is the part of the backend client this package uses.
type UserAPI interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, in models.UserInput) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, in models.UserInput) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) (string, error)
}

// Service lists and edits users.
type Service struct {
	api     UserAPI
	journal catalog.Journal
}

// New creates a Service. journal may be nil.
func New(c UserAPI, journal catalog.Journal) *Service {
	if journal == nil {
		journal = catalog.Journals(nil)
	}
	return &Service{api: c, journal: journal}
}

// Employees returns every user whose role is not CLIENT.
func (s *Service) Employees(ctx context.Context) ([]models.User, error) {
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var out []models.User
	for _, u := range users {
		if u.Role.IsStaff() {
			out = append(out, u)
		}
	}
	return out, nil
}

// Customers returns CLIENT users matching term (case-insensitive, over
// name, phone and Telegram id) and the total number of customers.
func (s *Service) Customers(ctx context.Context, term string) ([]models.User, int, error) {
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	var (
		out   []models.User
		total int
	)
	for _, u := range users {
		if u.Role != models.RoleClient {
			continue
		}
		total++
		if u.Matches(term) {
			out = append(out, u)
		}
	}
	return out, total, nil
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.api.GetUser(ctx, id)
}

// Result reports how a SaveEmployee call was carried out.
type Result struct {
	User *models.User
	// Existing is true when a user with the same phone already existed and
	// was promoted instead of a new one being created.
	Existing bool
}

// SaveEmployee creates an employee. When a user with the same phone
// already exists (for instance a customer who started the bot) that user
// is updated to the given name and role instead. New employees without a
// Telegram id get a placeholder derived from the phone.
func (s *Service) SaveEmployee(ctx context.Context, in models.UserInput) (*Result, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if !models.SamePhone(u.Phone, in.Phone) {
			continue
		}
		upd := models.UserInput{Name: in.Name, Role: in.Role, TelegramID: in.TelegramID}
		updated, err := s.api.UpdateUser(ctx, u.ID, upd)
		if err != nil {
			return nil, fmt.Errorf("update user %d: %w", u.ID, err)
		}
		s.journal.Mutated(ctx, "user", "update", u.ID)
		return &Result{User: updated, Existing: true}, nil
	}

	if in.TelegramID == "" {
		in.TelegramID = models.PlaceholderTelegramID(in.Phone)
	}
	created, err := s.api.CreateUser(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.journal.Mutated(ctx, "user", "create", created.ID)
	return &Result{User: created}, nil
}

// UpdateEmployee edits an existing employee. An empty Telegram id leaves
// the stored one unchanged.
func (s *Service) UpdateEmployee(ctx context.Context, id int64, in models.UserInput) (*models.User, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	u, err := s.api.UpdateUser(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	s.journal.Mutated(ctx, "user", "update", id)
	return u, nil
}

// Delete removes a user and returns the backend's confirmation message.
func (s *Service) Delete(ctx context.Context, id int64) (string, error) {
	msg, err := s.api.DeleteUser(ctx, id)
	if err != nil {
		return "", fmt.Errorf("delete user %d: %w", id, err)
	}
	s.journal.Mutated(ctx, "user", "delete", id)
	return msg, nil
}

func normalize(in models.UserInput) (models.UserInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.TelegramID = strings.TrimSpace(in.TelegramID)
	in.Phone = models.NormalizePhone(in.Phone)
	if in.Role == "" {
		in.Role = models.RoleOrderReceiver
	}
	if !in.Role.ValidStaff() {
		return in, fmt.Errorf("%w: %s", ErrInvalidRole, in.Role)
	}
	return in, nil
}
