package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Roles understood by the navigation guard. Any other value is a plain user.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ID is a user identifier. The product API serialises 64-bit ids either as a
// JSON number or as a string, so both decode to the same value.
type ID string

// UnmarshalJSON accepts a JSON string, number, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(strings.TrimSpace(raw))
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	if _, err := strconv.ParseInt(number.String(), 10, 64); err != nil {
		return fmt.Errorf("decode id %s: not an integer", number)
	}
	*id = ID(number.String())
	return nil
}

// String returns the id text.
func (id ID) String() string {
	return string(id)
}

// Session is the signed-in user as reported by the product API.
type Session struct {
	ID          ID     `json:"id"`
	UserAccount string `json:"userAccount,omitempty"`
	UserName    string `json:"userName,omitempty"`
	UserAvatar  string `json:"userAvatar,omitempty"`
	UserProfile string `json:"userProfile,omitempty"`
	UserRole    string `json:"userRole"`
	CreateTime  string `json:"createTime,omitempty"`
	UpdateTime  string `json:"updateTime,omitempty"`
}

// IsAuthenticated reports whether s is present and carries an identity.
func IsAuthenticated(s *Session) bool {
	return s != nil && strings.TrimSpace(string(s.ID)) != ""
}

// IsAdmin reports whether s is present with the admin role.
func IsAdmin(s *Session) bool {
	return s != nil && s.UserRole == RoleAdmin
}

// DisplayName prefers the user name and falls back to the account.
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	if name := strings.TrimSpace(s.UserName); name != "" {
		return name
	}
	return strings.TrimSpace(s.UserAccount)
}

// Clone returns an independent copy, or nil for nil.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
