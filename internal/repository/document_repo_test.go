package repository

import (
	"context"
	"errors"
	"testing"

	"cozy_nook/internal/models"
)

// failingKV returns err from every call.
type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingKV) Set(context.Context, string, string) error         { return f.err }
func (f failingKV) Delete(context.Context, string) error              { return f.err }

func TestJSONStore_ReadMissingKeepsDefault(t *testing.T) {
	js := NewJSONStore(NewKVMemory())

	dst := []string{"default"}
	found, err := js.Read(context.Background(), "nothing", &dst)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if found {
		t.Fatalf("expected found=false")
	}
	if len(dst) != 1 || dst[0] != "default" {
		t.Fatalf("default overwritten: %v", dst)
	}
}

func TestJSONStore_CorruptValueIsStorageUnavailable(t *testing.T) {
	kv := NewKVMemory()
	_ = kv.Set(context.Background(), KeyCart, "{not json")
	js := NewJSONStore(kv)

	var lines []models.CartLine
	_, err := js.Read(context.Background(), KeyCart, &lines)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestJSONStore_BackendErrorsWrapped(t *testing.T) {
	js := NewJSONStore(failingKV{err: errors.New("quota exceeded")})
	ctx := context.Background()

	var v any
	cases := map[string]error{
		"read":   func() error { _, err := js.Read(ctx, "k", &v); return err }(),
		"write":  js.Write(ctx, "k", 1),
		"remove": js.Remove(ctx, "k"),
	}
	for op, err := range cases {
		if !errors.Is(err, ErrStorageUnavailable) {
			t.Errorf("%s: expected ErrStorageUnavailable, got %v", op, err)
		}
	}
}

func TestUserStore_EmptyThenRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(NewJSONStore(NewKVMemory()))

	users, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", users)
	}

	want := []models.User{
		{ID: "1", Username: "admin", Password: "admin", IsAdmin: true},
		{ID: "2", Username: "alice", Password: "pw"},
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestProductStore_FoundFlag(t *testing.T) {
	ctx := context.Background()
	kv := NewKVMemory()
	store := NewProductStore(NewJSONStore(kv))

	if _, found, err := store.Load(ctx); err != nil || found {
		t.Fatalf("fresh store: found=%v err=%v", found, err)
	}

	_ = kv.Set(ctx, KeyProducts, "null")
	if _, found, err := store.Load(ctx); err != nil || found {
		t.Fatalf("null document: found=%v err=%v", found, err)
	}

	// an emptied catalog is still a catalog and must not be reseeded
	if err := store.Save(ctx, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	products, found, err := store.Load(ctx)
	if err != nil || !found || len(products) != 0 {
		t.Fatalf("empty catalog: products=%v found=%v err=%v", products, found, err)
	}
}

func TestSessionStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	kv := NewKVMemory()
	store := NewSessionStore(NewJSONStore(kv))

	s, err := store.Load(ctx)
	if err != nil || s != nil {
		t.Fatalf("expected anonymous, got %+v, %v", s, err)
	}

	if err := store.Save(ctx, models.Session{Username: "alice"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, _, _ := kv.Get(ctx, KeyCurrentUser)
	if raw != `{"username":"alice","isAdmin":false}` {
		t.Fatalf("unexpected persisted shape: %s", raw)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s, _ := store.Load(ctx); s != nil {
		t.Fatalf("expected nil after clear, got %+v", s)
	}
}

func TestCartStore_ClearRemovesKey(t *testing.T) {
	ctx := context.Background()
	kv := NewKVMemory()
	store := NewCartStore(NewJSONStore(kv))

	if err := store.Save(ctx, []models.CartLine{{ProductID: "a", Quantity: 1}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, found, _ := kv.Get(ctx, KeyCart); found {
		t.Fatalf("cart key still present")
	}
	lines, err := store.Load(ctx)
	if err != nil || len(lines) != 0 {
		t.Fatalf("expected empty cart, got %v %v", lines, err)
	}
}
