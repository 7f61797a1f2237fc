// Package models contains the request/response structures of the HTTP API,
// the sentinel errors shared between the storage and service layers, and the
// structured payload returned for unexpected database failures.
package models

import (
	"errors"
	"time"
)

// AuthRequest is the body of both the registration and login endpoints.
type AuthRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=1"`
}

// ShortenRequest is the body of the link-creation endpoint.
type ShortenRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required"`
}

// RenameRequest is the body of the username-change endpoint.
type RenameRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
}

// LinkOwner is the owner projection embedded in full link responses.
// Both privilege flags are always serialized; the credential never is.
type LinkOwner struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsPro    bool   `json:"isPro"`
	IsAdmin  bool   `json:"isAdmin"`
}

// LinkOwnerPublic is the owner projection embedded in reduced link responses.
// It carries the admin flag but not the pro flag.
type LinkOwnerPublic struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// LinkFull is the full link projection returned to the owner or an admin.
type LinkFull struct {
	LinkID         string    `json:"linkId"`
	OriginalURL    string    `json:"originalUrl"`
	NumHits        int64     `json:"numHits"`
	LastAccessedOn time.Time `json:"lastAccessedOn"`
	User           LinkOwner `json:"user"`
}

// LinkPublic is the reduced, privacy-preserving projection returned to other
// viewers. It omits the hit counter and the last-access timestamp.
type LinkPublic struct {
	LinkID      string          `json:"linkId"`
	OriginalURL string          `json:"originalUrl"`
	User        LinkOwnerPublic `json:"user"`
}

// DatabaseError is the best-effort structured message derived from an
// unexpected persistence-layer error. The raw error never leaves the server.
type DatabaseError struct {
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
}

// Sentinel errors of the storage and service layers. Handlers map these to the
// HTTP statuses described in the API contract.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrLinkNotFound  = errors.New("link not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrLinkExists    = errors.New("link identifier already exists")
)
