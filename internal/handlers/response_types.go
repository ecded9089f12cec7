package handlers

import (
	"github.com/cryptocast/cryptocast/internal/domains/broadcast"
	"github.com/cryptocast/cryptocast/internal/domains/user"
)

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RegisterResponse represents the response for user registration
type RegisterResponse struct {
	Message string            `json:"message"`
	User    user.UserResponse `json:"user"`
}

// LoginResponse represents the response for user login
type LoginResponse struct {
	Message string            `json:"message"`
	User    user.UserResponse `json:"user"`
	Tokens  user.AuthTokens   `json:"tokens"`
}

// ProfileResponse represents the response for getting user profile
type ProfileResponse struct {
	User user.UserResponse `json:"user"`
}

// PaginationInfo represents pagination information
type PaginationInfo struct {
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
	Total  int64 `json:"total"`
}

// NewsListResponse represents a page of news items
type NewsListResponse struct {
	Items      []broadcast.NewsItem `json:"items"`
	Pagination PaginationInfo       `json:"pagination"`
}

// NewsCreateResponse represents the response for news ingestion
type NewsCreateResponse struct {
	Message string             `json:"message"`
	Item    broadcast.NewsItem `json:"item"`
}

// StreamStartResponse represents the response for starting a broadcast
type StreamStartResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// CreditsResponse represents the remaining generation credit
type CreditsResponse struct {
	Balance int64 `json:"balance"`
}
