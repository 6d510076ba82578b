package cliparse

import (
	"os"
	"testing"
)

func TestParseFlags_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := ParseFlags([]string{"-d", "file:test.db", "-session-salt", "s1"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 4316 {
		t.Errorf("expected default port 4316, got %d", cfg.Port)
	}
	if cfg.StoreType != StoreSQLite {
		t.Errorf("expected default store sqlite, got %q", cfg.StoreType)
	}
	if cfg.NotifyExchange != "notifications" {
		t.Errorf("expected default exchange, got %q", cfg.NotifyExchange)
	}
}

func TestParseFlags_MemoryStoreNeedsNoURL(t *testing.T) {
	os.Clearenv()

	cfg, err := ParseFlags([]string{"-s", "memory", "-session-salt", "s1"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoreType != StoreMemory {
		t.Errorf("expected memory store, got %q", cfg.StoreType)
	}
}

func TestParseFlags_RequiresDatabaseURL(t *testing.T) {
	os.Clearenv()

	if _, err := ParseFlags([]string{"-session-salt", "s1"}); err == nil {
		t.Error("expected error without a database URL")
	}
}

func TestParseFlags_RequiresSessionSalt(t *testing.T) {
	os.Clearenv()

	if _, err := ParseFlags([]string{"-d", "file:test.db"}); err == nil {
		t.Error("expected error without SESSION_TOKEN_SALT")
	}
}

func TestParseFlags_RejectsUnknownStore(t *testing.T) {
	os.Clearenv()

	if _, err := ParseFlags([]string{"-s", "cassandra", "-d", "x", "-session-salt", "s1"}); err == nil {
		t.Error("expected error for unknown store type")
	}
}

func TestParseFlags_EnvFallback(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "postgres://localhost/reps")
	os.Setenv("STORE_TYPE", "postgres")
	os.Setenv("SESSION_TOKEN_SALT", "env-salt")
	defer os.Clearenv()

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.StoreType != StorePostgres {
		t.Errorf("expected postgres store, got %q", cfg.StoreType)
	}
	if cfg.SessionTokenSalt != "env-salt" {
		t.Errorf("expected env salt, got %q", cfg.SessionTokenSalt)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-session-salt", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
}
