package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// Interface compliance (compile-time assertions)
var (
	_ KV = (*InMemoryKV)(nil)
	_ KV = (*RedisKV)(nil)
)

func TestInMemoryKV_GetSetIsolation(t *testing.T) {
	ctx := context.Background()
	kv := NewInMemoryKV()
	data := []byte("hello")
	if err := kv.Set(ctx, "thread-1", "/memories/research/x.json", data); err != nil {
		t.Fatalf("set: %v", err)
	}
	// mutate original slice
	data[0] = 'H'
	out, err := kv.Get(ctx, "thread-1", "/memories/research/x.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(out) != "hello" { // should not reflect mutation
		t.Fatalf("expected 'hello', got %q", string(out))
	}
	// mutate returned slice
	out[0] = 'x'
	out2, _ := kv.Get(ctx, "thread-1", "/memories/research/x.json")
	if string(out2) != "hello" {
		t.Fatalf("expected isolation, got %q", string(out2))
	}
}

func TestInMemoryKV_NamespaceSeparation(t *testing.T) {
	ctx := context.Background()
	kv := NewInMemoryKV()
	if err := kv.Set(ctx, "thread-1", "k", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if _, err := kv.Get(ctx, "thread-2", "k"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for other namespace, got %v", err)
	}
}

func TestInMemoryKV_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	kv := NewInMemoryKV()
	for _, k := range []string{"/memories/research/a.json", "/memories/research/b.json", "/notes.md"} {
		if err := kv.Set(ctx, "t", k, []byte("v")); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := kv.List(ctx, "t", "/memories/")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d: %v", len(keys), keys)
	}
	if keys[0] != "/memories/research/a.json" || keys[1] != "/memories/research/b.json" {
		t.Fatalf("expected sorted keys, got %v", keys)
	}
	if err := kv.Delete(ctx, "t", "/notes.md"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := kv.Delete(ctx, "t", "/notes.md"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestInMemoryKV_Concurrency(t *testing.T) {
	ctx := context.Background()
	kv := NewInMemoryKV()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("/k%d", i%10)
			if err := kv.Set(ctx, "t", key, []byte("data")); err != nil {
				t.Errorf("set err: %v", err)
			}
			_, _ = kv.List(ctx, "t", "/")
		}()
	}
	wg.Wait()
	keys, err := kv.List(ctx, "t", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 10 {
		t.Fatalf("expected 10 keys, got %d", len(keys))
	}
}
