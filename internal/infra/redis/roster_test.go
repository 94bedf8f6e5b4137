package redis

import (
	"context"
	"sort"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestRosterAtomicInsert(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	roster := NewRoster(newClient(mr))

	added, err := roster.Add(ctx, "sam")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added {
		t.Fatalf("expected sam added")
	}
	added, err = roster.Add(ctx, "sam")
	if err != nil {
		t.Fatalf("add dup: %v", err)
	}
	if added {
		t.Fatalf("expected duplicate rejected")
	}
	if _, err := roster.Add(ctx, "pat"); err != nil {
		t.Fatalf("add pat: %v", err)
	}

	members, err := roster.Members(ctx)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	sort.Strings(members)
	if len(members) != 2 || members[0] != "pat" || members[1] != "sam" {
		t.Fatalf("expected pat and sam, got %v", members)
	}

	if err := roster.Remove(ctx, "sam"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := roster.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists("game:players") {
		t.Fatalf("expected players key removed")
	}
}
