package setup

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/memory"
)

// Seed is the YAML layout of the file that fills the memory driver with the
// records this service only reads: users and store categories.
type Seed struct {
	Users []struct {
		ID    int64  `yaml:"id"`
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
		Phone string `yaml:"phone"`
		Role  string `yaml:"role"`
	} `yaml:"users"`
	Categories []struct {
		Name  string `yaml:"name"`
		Color string `yaml:"color"`
		Icon  string `yaml:"icon"`
	} `yaml:"categories"`
}

func LoadSeed(path string, mem *memory.Repository) error {
	var seed Seed
	if err := cleanenv.ReadConfig(path, &seed); err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	for _, u := range seed.Users {
		role := domain.Role(u.Role)
		if role == "" {
			role = domain.RoleUser
		}
		if role != domain.RoleUser && role != domain.RoleLojista {
			return fmt.Errorf("user %q: unknown role %q", u.Email, u.Role)
		}
		mem.PutUser(&domain.User{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: role})
	}
	for _, c := range seed.Categories {
		mem.PutCategory(&domain.Category{Name: c.Name, Color: c.Color, Icon: c.Icon})
	}
	return nil
}
