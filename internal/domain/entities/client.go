package entities

import (
	"strings"
	"time"
)

// Client is a registered customer a sale can be attributed to. CPF is optional but unique
// when present and never changes after registration.
type Client struct {
	ID        string
	Name      string
	CPF       string
	Email     string
	Phone     string
	City      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientDetails carries a partial update. Nil fields are left untouched.
type ClientDetails struct {
	Name  *string
	Email *string
	Phone *string
	City  *string
}

func (d ClientDetails) IsEmpty() bool {
	return d.Name == nil && d.Email == nil && d.Phone == nil && d.City == nil
}

func (d ClientDetails) Apply(c *Client) {
	if d.Name != nil {
		c.Name = *d.Name
	}
	if d.Email != nil {
		c.Email = *d.Email
	}
	if d.Phone != nil {
		c.Phone = *d.Phone
	}
	if d.City != nil {
		c.City = *d.City
	}
}

// NormalizeCPF strips punctuation from a CPF. ok is false unless exactly eleven digits remain.
func NormalizeCPF(raw string) (cpf string, ok bool) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == ' ':
		default:
			return "", false
		}
	}
	cpf = b.String()
	return cpf, len(cpf) == 11
}

// ClientFilter narrows client listings. Search is a case-insensitive substring matched against
// name, CPF, email and city.
type ClientFilter struct {
	Search string
}

func (f ClientFilter) Matches(c Client) bool {
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	for _, field := range []string{c.Name, c.CPF, c.Email, c.City} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
