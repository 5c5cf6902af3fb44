package backend

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestState_WriteReadIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewState()
	data := []byte("hello")
	if err := s.Write(ctx, "/f.txt", data); err != nil {
		t.Fatalf("write: %v", err)
	}
	data[0] = 'H'
	out, err := s.Read(ctx, "/f.txt")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(out) != "hello" { // should not reflect mutation
		t.Fatalf("expected 'hello', got %q", string(out))
	}
	out[0] = 'x'
	out2, _ := s.Read(ctx, "/f.txt")
	if string(out2) != "hello" {
		t.Fatalf("expected isolation, got %q", string(out2))
	}
}

func TestState_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewState()
	for _, p := range []string{"/b.txt", "/a.txt", "/dir/c.txt"} {
		if err := s.Write(ctx, p, []byte("1")); err != nil {
			t.Fatal(err)
		}
	}
	paths, err := s.List(ctx, "/")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 || paths[0] != "/a.txt" {
		t.Fatalf("expected 3 sorted paths, got %v", paths)
	}
	if err := s.Delete(ctx, "/a.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Read(ctx, "/a.txt"); err == nil {
		t.Fatalf("expected error for deleted file")
	}
}

func TestState_Concurrency(t *testing.T) {
	ctx := context.Background()
	s := NewState()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			path := fmt.Sprintf("/f%d", i%10)
			if err := s.Write(ctx, path, []byte("data")); err != nil {
				t.Errorf("write err: %v", err)
			}
			_, _ = s.List(ctx, "/")
		}()
	}
	wg.Wait()
	paths, err := s.List(ctx, "/")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatalf("expected some files, got 0")
	}
}
