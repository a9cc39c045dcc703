package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestFollowService_Follow_Self(t *testing.T) {
	id := uuid.New()
	if err := NewFollowService(&fakeDB{}).Follow(context.Background(), id, id); !errors.Is(err, ErrCannotFollowSelf) {
		t.Fatalf("expected ErrCannotFollowSelf, got %v", err)
	}
}

func TestFollowService_Follow_Checks(t *testing.T) {
	tests := []struct {
		name    string
		exists  bool
		blocked bool
		want    error
	}{
		{"missing target", false, false, ErrUserNotFound},
		{"blocked pair", true, true, ErrUserBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{
				QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
					return rowFromValues(tt.exists, tt.blocked)
				},
				ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
					t.Fatal("insert should not run")
					return nil, nil
				},
			}
			if err := NewFollowService(db).Follow(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFollowService_Follow_Duplicate(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(true, false)
		},
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			if !strings.Contains(sql, "ON CONFLICT DO NOTHING") {
				t.Fatalf("expected idempotent insert, got %q", sql)
			}
			return fakeCommandTag{rowsAffected: 0}, nil
		},
	}
	if err := NewFollowService(db).Follow(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, ErrAlreadyFollowing) {
		t.Fatalf("expected ErrAlreadyFollowing, got %v", err)
	}
}

func TestFollowService_Follow_Success(t *testing.T) {
	follower, following := uuid.New(), uuid.New()
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(true, false)
		},
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			if args[0] != follower || args[1] != following {
				t.Fatalf("edge inserted in wrong order: %v", args)
			}
			return fakeCommandTag{rowsAffected: 1}, nil
		},
	}
	if err := NewFollowService(db).Follow(context.Background(), follower, following); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFollowService_Unfollow_RemovesShare(t *testing.T) {
	follower, following := uuid.New(), uuid.New()
	var sqls []string
	var committed bool
	tx := &fakeTx{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			sqls = append(sqls, sql)
			if strings.Contains(sql, "location_shares") {
				if args[0] != following || args[1] != follower {
					t.Fatalf("expected share owned by followed user, got %v", args)
				}
			}
			return fakeCommandTag{rowsAffected: 1}, nil
		},
		CommitFunc: func(ctx context.Context) error {
			committed = true
			return nil
		},
	}
	db := &fakeDB{BeginFunc: func(ctx context.Context) (Tx, error) { return tx, nil }}

	if err := NewFollowService(db).Unfollow(context.Background(), follower, following); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sqls) != 2 || !strings.Contains(sqls[0], "DELETE FROM follows") || !strings.Contains(sqls[1], "DELETE FROM location_shares") {
		t.Fatalf("unexpected statements: %v", sqls)
	}
	if !committed {
		t.Fatal("expected commit")
	}
}

func TestFollowService_Unfollow_NotFollowing(t *testing.T) {
	var rolledBack bool
	tx := &fakeTx{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			return fakeCommandTag{rowsAffected: 0}, nil
		},
		RollbackFunc: func(ctx context.Context) error {
			rolledBack = true
			return nil
		},
	}
	db := &fakeDB{BeginFunc: func(ctx context.Context) (Tx, error) { return tx, nil }}

	if err := NewFollowService(db).Unfollow(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, ErrNotFollowing) {
		t.Fatalf("expected ErrNotFollowing, got %v", err)
	}
	if !rolledBack {
		t.Fatal("expected rollback")
	}
}

func TestFollowService_IsFollowing(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(true)
		},
	}
	ok, err := NewFollowService(db).IsFollowing(context.Background(), uuid.New(), uuid.New())
	if err != nil || !ok {
		t.Fatalf("expected following, got %v %v", ok, err)
	}
}

func TestFollowService_ListFollowers(t *testing.T) {
	userID := uuid.New()
	followerID := uuid.New()
	since := time.Now()
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			if !strings.Contains(sql, "u.id = f.follower_id") || !strings.Contains(sql, "f.following_id = $1") {
				t.Fatalf("unexpected sql: %q", sql)
			}
			return &fakeRows{rows: [][]any{{followerID, "binu", "Binu", nil, since}}}, nil
		},
	}

	conns, err := NewFollowService(db).ListFollowers(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conns) != 1 || conns[0].ID != followerID || conns[0].Username != "binu" || !conns[0].Since.Equal(since) {
		t.Fatalf("unexpected connections: %+v", conns)
	}
}

func TestFollowService_ListFollowing_EmptyIsNotNil(t *testing.T) {
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			return &fakeRows{}, nil
		},
	}
	conns, err := NewFollowService(db).ListFollowing(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conns == nil || len(conns) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", conns)
	}
}

func TestFollowService_ListFollowing_RowsError(t *testing.T) {
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			return &fakeRows{err: errors.New("connection reset")}, nil
		},
	}
	if _, err := NewFollowService(db).ListFollowing(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error")
	}
}

func TestFollowService_SearchUsers(t *testing.T) {
	current := uuid.New()
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			if args[0] != current || args[1] != "%ama%" {
				t.Fatalf("unexpected args: %v", args)
			}
			return &fakeRows{rows: [][]any{{uuid.New(), "amaya", "Amaya", nil}}}, nil
		},
	}

	results, err := NewFollowService(db).SearchUsers(context.Background(), current, "  AMA ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Username != "amaya" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestFollowService_SearchUsers_ShortQuery(t *testing.T) {
	results, err := NewFollowService(&fakeDB{}).SearchUsers(context.Background(), uuid.New(), "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
