package domain

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

type StoreStatus int

const (
	StoreInactive StoreStatus = 0
	StoreActive   StoreStatus = 1
)

type Store struct {
	ID           int64
	Name         string
	Address      string
	CityID       int64
	Phone1       string
	Phone2       string
	Email        string
	Site         string
	Logo         string
	Description  string
	LocationLink string
	CNPJ         string
	WebhookURL   string
	Status       StoreStatus
	CategoryIDs  []int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s *Store) IsActive() bool {
	return s.Status == StoreActive
}

// WhatsAppLink builds the chat link the app opens from the coupon screen.
func (s *Store) WhatsAppLink() string {
	digits := onlyDigits(s.Phone1)
	if digits == "" {
		return ""
	}
	return "https://wa.me/55" + digits + "?text="
}

type Category struct {
	ID    int64
	Name  string
	Color string
	Icon  string
}

type StoreFilter struct {
	CityID     *int64
	CategoryID *int64
}

type StoreRepository interface {
	// CreateStore inserts the store and its first team member atomically.
	CreateStore(ctx context.Context, store *Store, ownerID int64) error
	UpdateStore(ctx context.Context, store *Store) error
	GetStoreByID(ctx context.Context, id int64) (*Store, error)
	GetStoresByIDs(ctx context.Context, ids []int64) ([]*Store, error)
	ListCategories(ctx context.Context) ([]*Category, error)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate applies the store form rules.
func (s *Store) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return invalid("nome", "required")
	}
	if strings.TrimSpace(s.Address) == "" {
		return invalid("endereco", "required")
	}
	if s.CityID <= 0 {
		return invalid("cidade_id", "required")
	}
	if strings.TrimSpace(s.Phone1) == "" {
		return invalid("telefone1", "required")
	}
	if s.Email != "" {
		if !emailPattern.MatchString(s.Email) {
			return invalid("email", "malformed")
		}
		if _, err := mail.ParseAddress(s.Email); err != nil {
			return invalid("email", "malformed")
		}
	}
	if s.CNPJ != "" && !ValidCNPJ(s.CNPJ) {
		return invalid("cnpj", "invalid check digits")
	}
	if len(s.CategoryIDs) == 0 {
		return invalid("categorias", "at least one category is required")
	}
	return nil
}

// ValidCNPJ checks length and both check digits of a Brazilian company tax id.
// Punctuation is ignored.
func ValidCNPJ(raw string) bool {
	d := onlyDigits(raw)
	if len(d) != 14 {
		return false
	}
	if strings.Count(d, string(d[0])) == 14 {
		return false
	}
	digit := func(n int) byte {
		weights := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
		w := weights[13-n:]
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(d[i]-'0') * w[i]
		}
		r := sum % 11
		if r < 2 {
			return '0'
		}
		return byte('0' + 11 - r)
	}
	return digit(12) == d[12] && digit(13) == d[13]
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
