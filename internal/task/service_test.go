package task

import (
	"context"
	"errors"
	"testing"

	"github.com/cpadesk/cpadesk/internal/notification"
)

type captureNotifier struct {
	sent []notification.Message
}

func (n *captureNotifier) Send(_ context.Context, msg notification.Message) error {
	n.sent = append(n.sent, msg)
	return nil
}

func TestCreateNotifiesAssignee(t *testing.T) {
	notifier := &captureNotifier{}
	svc := NewService(NewMemoryRepository(), notifier)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Title: "Reconcile March statements", Assignee: "ana"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != StatusOpen {
		t.Fatalf("expected open status, got %s", created.Status)
	}
	if created.Priority != PriorityNormal {
		t.Fatalf("expected normal priority default, got %s", created.Priority)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Kind != notification.KindTaskAssigned {
		t.Fatalf("expected assignment notification, got %+v", notifier.sent)
	}
	if notifier.sent[0].Destination != "ana" {
		t.Fatalf("expected destination ana, got %q", notifier.sent[0].Destination)
	}
}

func TestCreateUnassignedStaysQuiet(t *testing.T) {
	notifier := &captureNotifier{}
	svc := NewService(NewMemoryRepository(), notifier)

	if _, err := svc.Create(context.Background(), CreateInput{Title: "Backlog item"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notification for unassigned task, got %+v", notifier.sent)
	}

	if _, err := svc.Create(context.Background(), CreateInput{Title: "  "}); err == nil {
		t.Fatalf("expected blank title rejection")
	}
}

func TestAssignNotifies(t *testing.T) {
	notifier := &captureNotifier{}
	svc := NewService(NewMemoryRepository(), notifier)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Title: "Chase missing KYC docs"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	assigned, err := svc.Assign(ctx, created.ID, "bruno")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Assignee != "bruno" {
		t.Fatalf("expected assignee bruno, got %q", assigned.Assignee)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.sent))
	}

	if _, err := svc.Assign(ctx, "missing", "bruno"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Title: "Prepare weekly report"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.SetStatus(ctx, created.ID, StatusInProgress)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != StatusInProgress {
		t.Fatalf("expected in_progress, got %s", updated.Status)
	}

	if _, err := svc.SetStatus(ctx, created.ID, Status("paused")); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestListFiltersAndRemove(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateInput{Title: "First", Assignee: "ana"})
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	b, err := svc.Create(ctx, CreateInput{Title: "Second", Assignee: "bruno"})
	if err != nil {
		t.Fatalf("create b: %v", err)
	}
	if _, err := svc.SetStatus(ctx, b.ID, StatusDone); err != nil {
		t.Fatalf("set status: %v", err)
	}

	open, err := svc.List(ctx, Filter{Status: StatusOpen})
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 1 || open[0].ID != a.ID {
		t.Fatalf("unexpected open list: %+v", open)
	}

	mine, err := svc.List(ctx, Filter{Assignee: "bruno"})
	if err != nil {
		t.Fatalf("list by assignee: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != b.ID {
		t.Fatalf("unexpected assignee list: %+v", mine)
	}

	if _, err := svc.List(ctx, Filter{Status: Status("bogus")}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	if err := svc.Remove(ctx, a.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.Get(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}
