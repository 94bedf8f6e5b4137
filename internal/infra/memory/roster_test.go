package memory

import (
	"context"
	"testing"
)

func TestRosterUniqueNamesInJoinOrder(t *testing.T) {
	ctx := context.Background()
	roster := NewRoster()

	for _, name := range []string{"sam", "pat", "kim"} {
		added, err := roster.Add(ctx, name)
		if err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
		if !added {
			t.Fatalf("expected %s to be added", name)
		}
	}

	added, err := roster.Add(ctx, "sam")
	if err != nil {
		t.Fatalf("add dup: %v", err)
	}
	if added {
		t.Fatalf("expected duplicate sam to be rejected")
	}

	members, err := roster.Members(ctx)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %v", members)
	}
	if members[0] != "sam" || members[1] != "pat" || members[2] != "kim" {
		t.Fatalf("expected join order, got %v", members)
	}
}

func TestRosterRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	roster := NewRoster()

	_, _ = roster.Add(ctx, "sam")
	_, _ = roster.Add(ctx, "pat")

	if err := roster.Remove(ctx, "sam"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := roster.Remove(ctx, "ghost"); err != nil {
		t.Fatalf("remove absent should be a no-op: %v", err)
	}
	members, _ := roster.Members(ctx)
	if len(members) != 1 || members[0] != "pat" {
		t.Fatalf("expected [pat], got %v", members)
	}

	if err := roster.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	members, _ = roster.Members(ctx)
	if len(members) != 0 {
		t.Fatalf("expected empty roster, got %v", members)
	}
}
