// Package storetest is a behaviour suite every task.Store driver must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/fluxorio/todolist/internal/task"
)

// Run exercises s through the task.Store contract. newStore must return an
// empty store; it is called once per subtest.
func Run(t *testing.T, newStore func(t *testing.T) task.Store) {
	t.Helper()

	t.Run("EmptyListIsNotNil", func(t *testing.T) {
		s := newStore(t)
		tasks, err := s.List(context.Background())
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if tasks == nil || len(tasks) != 0 {
			t.Errorf("List = %#v, want empty non-nil slice", tasks)
		}
	})

	t.Run("CreateListUpdateDelete", func(t *testing.T) {
		testLifecycle(t, newStore(t))
	})

	t.Run("CreateAbsentFields", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Create(context.Background(), task.Draft{})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if created.ID == "" || created.CreatedAt.IsZero() {
			t.Errorf("created = %+v, want id and createdAt", created)
		}
		if created.Title != "" || created.Description != "" {
			t.Errorf("created = %+v, want empty fields", created)
		}
	})

	t.Run("UpdateUnknownID", func(t *testing.T) {
		s := newStore(t)
		title := "x"
		for _, id := range []string{"00000000-0000-0000-0000-000000000000", "not a valid id", "a.b.*"} {
			got, err := s.Update(context.Background(), id, task.Patch{Title: &title})
			if err != nil {
				t.Fatalf("Update(%q): %v", id, err)
			}
			if got != nil {
				t.Errorf("Update(%q) = %+v, want nil", id, got)
			}
		}
	})

	t.Run("DeleteUnknownID", func(t *testing.T) {
		s := newStore(t)
		for _, id := range []string{"00000000-0000-0000-0000-000000000000", "not a valid id"} {
			if err := s.Delete(context.Background(), id); err != nil {
				t.Errorf("Delete(%q): %v", id, err)
			}
		}
	})

	t.Run("ManyTasks", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		want := make(map[string]bool)
		for i := 0; i < 25; i++ {
			created, err := s.Create(ctx, task.Draft{Title: fmt.Sprintf("task %d", i), Description: "<p>x</p>"})
			if err != nil {
				t.Fatalf("Create %d: %v", i, err)
			}
			want[created.ID] = true
		}

		tasks, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(tasks) != len(want) {
			t.Fatalf("List returned %d tasks, want %d", len(tasks), len(want))
		}
		for _, tk := range tasks {
			if !want[tk.ID] {
				t.Errorf("unexpected id %s", tk.ID)
			}
		}
	})

	t.Run("ConcurrentFullUpdates", func(t *testing.T) {
		testConcurrentUpdates(t, newStore(t))
	})
}

func testLifecycle(t *testing.T, s task.Store) {
	ctx := context.Background()

	created, err := s.Create(ctx, task.Draft{Title: "Buy milk", Description: "<p>2%</p>"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("created = %+v", created)
	}

	listed := mustFind(t, s, created.ID)
	if listed.Title != "Buy milk" || listed.Description != "<p>2%</p>" || !listed.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("listed = %+v, created = %+v", listed, created)
	}

	title := "Buy bread"
	updated, err := s.Update(ctx, created.ID, task.Patch{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated == nil || updated.Title != "Buy bread" || updated.Description != "<p>2%</p>" {
		t.Fatalf("updated = %+v", updated)
	}
	if updated.ID != created.ID || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("update changed identity: %+v vs %+v", updated, created)
	}

	refetched := mustFind(t, s, created.ID)
	if refetched.Title != "Buy bread" || !refetched.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("refetched = %+v", refetched)
	}

	for i := 0; i < 2; i++ {
		if err := s.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete #%d: %v", i+1, err)
		}
	}

	tasks, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, tk := range tasks {
		if tk.ID == created.ID {
			t.Errorf("deleted task %s still listed", created.ID)
		}
	}
}

func testConcurrentUpdates(t *testing.T, s task.Store) {
	ctx := context.Background()
	created, err := s.Create(ctx, task.Draft{Title: "orig", Description: "orig"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	payloads := [][2]string{{"A", "<p>A</p>"}, {"B", "<p>B</p>"}}
	var wg sync.WaitGroup
	errs := make(chan error, len(payloads))
	for _, p := range payloads {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, created.ID, task.Patch{Title: &p[0], Description: &p[1]})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	got := mustFind(t, s, created.ID)
	ok := false
	for _, p := range payloads {
		if got.Title == p[0] && got.Description == p[1] {
			ok = true
		}
	}
	if !ok {
		t.Errorf("stored %q/%q is not one writer's payload", got.Title, got.Description)
	}
}

func mustFind(t *testing.T, s task.Store, id string) task.Task {
	t.Helper()
	tasks, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, tk := range tasks {
		if tk.ID == id {
			return tk
		}
	}
	t.Fatalf("task %s not listed", id)
	return task.Task{}
}
