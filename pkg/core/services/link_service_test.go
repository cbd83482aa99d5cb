package services

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/rs/zerolog"

	"github.com/teerapatch/linklytics/pkg/adapters/repository/sqlite"
	"github.com/teerapatch/linklytics/pkg/core/domain"
)

func newTestRepo(t *testing.T) *sqlite.SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := sqlite.NewSQLiteRepository("file:"+dbPath, sqlite.DefaultPoolOptions())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testLogger() zerolog.Logger { return zerolog.Nop() }

var generatedCodePattern = regexp.MustCompile(`^[23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ]{8}$`)

func TestCreateWithoutAlias(t *testing.T) {
	svc := NewLinkService(newTestRepo(t))
	ctx := context.Background()

	link, err := svc.Create(ctx, "https://example.com/page", "user-1", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !generatedCodePattern.MatchString(link.ShortCode) {
		t.Errorf("generated code %q does not match the alphabet pattern", link.ShortCode)
	}
	if link.IsCustomAlias {
		t.Error("generated link should not be marked custom")
	}

	got, err := svc.GetByCode(ctx, link.ShortCode)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.OriginalURL != "https://example.com/page" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestCreateWithCustomAlias(t *testing.T) {
	svc := NewLinkService(newTestRepo(t))
	ctx := context.Background()

	link, err := svc.Create(ctx, "https://example.com", "user-1", "my-launch")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if link.ShortCode != "my-launch" {
		t.Errorf("short code = %q, want my-launch", link.ShortCode)
	}

	got, err := svc.GetByCode(ctx, "my-launch")
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsCustomAlias {
		t.Error("expected is_custom_alias = true")
	}
}

func TestCreateAliasValidation(t *testing.T) {
	svc := NewLinkService(newTestRepo(t))
	ctx := context.Background()

	tests := []struct {
		name  string
		alias string
		want  error
	}{
		{"too short", "ab", domain.ErrAliasInvalid},
		{"bad charset", "bad alias!", domain.ErrAliasInvalid},
		{"reserved", "Admin", domain.ErrAliasReserved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "https://example.com", "user-1", tt.alias)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	// Nothing was written
	links, err := svc.ListByOwner(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 0 {
		t.Errorf("validation failures must not write, got %d links", len(links))
	}
}

func TestCreateAliasTaken(t *testing.T) {
	svc := NewLinkService(newTestRepo(t))
	ctx := context.Background()

	first, err := svc.Create(ctx, "https://first.example", "user-1", "launch42")
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Create(ctx, "https://second.example", "user-2", "launch42")
	if !errors.Is(err, domain.ErrAliasTaken) {
		t.Errorf("expected ErrAliasTaken, got %v", err)
	}

	// The first link is untouched
	got, err := svc.GetByCode(ctx, "launch42")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != first.ID || got.OriginalURL != "https://first.example" {
		t.Errorf("first link changed: %+v", got)
	}
}

func TestCreateRetriesOnCollisionThenFails(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewLinkService(repo)
	ctx := context.Background()

	// Occupy one code, then pin the generator to it so every attempt collides.
	if _, err := svc.Create(ctx, "https://example.com", "user-1", "stuckcode"); err != nil {
		t.Fatal(err)
	}
	attempts := 0
	svc.generate = func() (string, error) {
		attempts++
		return "stuckcode", nil
	}

	_, err := svc.Create(ctx, "https://example.com", "user-1", "")
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if attempts != maxCollisionRetries {
		t.Errorf("generator called %d times, want %d", attempts, maxCollisionRetries)
	}
}

func TestCreateRetryRecoversFromSingleCollision(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewLinkService(repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "https://example.com", "user-1", "takencode"); err != nil {
		t.Fatal(err)
	}

	codes := []string{"takencode", "freshcode"}
	svc.generate = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}

	link, err := svc.Create(ctx, "https://example.com", "user-1", "")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if link.ShortCode != "freshcode" {
		t.Errorf("short code = %q, want freshcode", link.ShortCode)
	}
}

func TestGetByCodeNotFound(t *testing.T) {
	svc := NewLinkService(newTestRepo(t))

	_, err := svc.GetByCode(context.Background(), "missing1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewLinkService(repo)
	clicks := NewClickService(repo, testLogger())
	ctx := context.Background()

	link, err := svc.Create(ctx, "https://example.com", "owner", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := clicks.Record(ctx, link.ID, "", ""); err != nil {
		t.Fatal(err)
	}

	// Unknown code: false, no error
	deleted, err := svc.Delete(ctx, "unknown1", "owner")
	if err != nil {
		t.Errorf("unknown code should not error: %v", err)
	}
	if deleted {
		t.Error("unknown code should report false")
	}

	// Wrong owner: forbidden
	_, err = svc.Delete(ctx, link.ShortCode, "intruder")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	// Owner: deleted, clicks gone with it
	deleted, err = svc.Delete(ctx, link.ShortCode, "owner")
	if err != nil || !deleted {
		t.Fatalf("delete = (%v, %v), want (true, nil)", deleted, err)
	}
	if _, err := svc.GetByCode(ctx, link.ShortCode); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("link still retrievable after delete: %v", err)
	}
	stats, err := repo.GetLinkStats(ctx, link.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalClicks != 0 {
		t.Errorf("expected cascade to remove clicks, got %d", stats.TotalClicks)
	}
}
