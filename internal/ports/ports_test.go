package ports

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/dsmmcken/lsc/internal/platform"
)

func TestList_ParsesStrategyOutput(t *testing.T) {
	e := New(platform.ForOS("linux", ""))
	e.run = func(ctx context.Context, timeout time.Duration, argv []string) (string, error) {
		if timeout != 3*time.Second {
			t.Errorf("timeout = %v, want 3s", timeout)
		}
		return `LISTEN 0 4096 127.0.0.1:51000 0.0.0.0:* users:(("langd",pid=4321,fd=23))
LISTEN 0 4096 127.0.0.1:51001 0.0.0.0:* users:(("langd",pid=4321,fd=24))
`, nil
	}

	got := e.List(context.Background(), 4321)
	want := []int{51000, 51001}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestList_EmptyOnCommandError(t *testing.T) {
	e := New(platform.ForOS("linux", ""))
	e.run = func(ctx context.Context, timeout time.Duration, argv []string) (string, error) {
		return "", fmt.Errorf("ss: exit status 1")
	}
	if got := e.List(context.Background(), 4321); len(got) != 0 {
		t.Errorf("List() = %v, want empty", got)
	}
}

func TestList_EmptyOnUnparseableOutput(t *testing.T) {
	e := New(platform.ForOS("linux", ""))
	e.run = func(ctx context.Context, timeout time.Duration, argv []string) (string, error) {
		return "not socket output at all\n", nil
	}
	if got := e.List(context.Background(), 4321); len(got) != 0 {
		t.Errorf("List() = %v, want empty", got)
	}
}
