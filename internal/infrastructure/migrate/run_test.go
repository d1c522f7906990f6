package migrate

import (
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joesantos1/querodesconto-parceiros/migrations"
)

func TestEmbeddedMigrationsAreReadable(t *testing.T) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		t.Fatalf("iofs.New: %v", err)
	}
	defer src.Close()

	first, err := src.First()
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if first != 1 {
		t.Fatalf("first version = %d, want 1", first)
	}
	up, name, err := src.ReadUp(first)
	if err != nil {
		t.Fatalf("ReadUp: %v", err)
	}
	defer up.Close()
	if name == "" {
		t.Fatal("empty migration identifier")
	}
}
