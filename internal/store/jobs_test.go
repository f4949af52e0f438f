// ABOUTME: Tests for job record persistence
// ABOUTME: Covers CRUD round trips and the owner-scoping of list/update/delete

package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testJob(id, userID string) *Job {
	now := time.Now().UTC().Truncate(time.Second)
	return &Job{
		ID:        id,
		Company:   "Acme",
		Position:  "Engineer",
		Status:    JobStatusPending,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func seedUser(t *testing.T, s *SQLiteStore, id string) {
	t.Helper()
	if err := s.CreateUser(context.Background(), testUser(id, id+"@example.com")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
}

func TestCreateAndGetJob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")

	job := testJob("job-1", "user-1")
	job.Notes = "Phone screen went **well**."
	if err := s.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	got, err := s.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.Company != "Acme" {
		t.Errorf("Company mismatch: got %q", got.Company)
	}
	if got.Status != JobStatusPending {
		t.Errorf("Status mismatch: got %q", got.Status)
	}
	if got.Notes != job.Notes {
		t.Errorf("Notes mismatch: got %q", got.Notes)
	}
	if got.UserID != "user-1" {
		t.Errorf("UserID mismatch: got %q", got.UserID)
	}
}

func TestGetJob_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetJob(context.Background(), "nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListJobsByUser_OwnerScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")
	seedUser(t, s, "user-2")

	if err := s.CreateJob(ctx, testJob("job-1", "user-1")); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	if err := s.CreateJob(ctx, testJob("job-2", "user-2")); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	jobs, err := s.ListJobsByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListJobsByUser failed: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected exactly 1 job for user-1, got %d", len(jobs))
	}
	if jobs[0].ID != "job-1" {
		t.Errorf("wrong job returned: got %q", jobs[0].ID)
	}

	empty, err := s.ListJobsByUser(ctx, "user-3")
	if err != nil {
		t.Fatalf("ListJobsByUser failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no jobs for unknown user, got %d", len(empty))
	}
}

func TestUpdateJob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")

	if err := s.CreateJob(ctx, testJob("job-1", "user-1")); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	updated := testJob("job-1", "user-1")
	updated.Status = JobStatusInterview
	updated.Position = "Staff Engineer"
	if err := s.UpdateJob(ctx, updated); err != nil {
		t.Fatalf("UpdateJob failed: %v", err)
	}

	got, err := s.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.Status != JobStatusInterview {
		t.Errorf("Status mismatch: got %q", got.Status)
	}
	if got.Position != "Staff Engineer" {
		t.Errorf("Position mismatch: got %q", got.Position)
	}
}

func TestUpdateJob_WrongOwnerDoesNotMutate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")
	seedUser(t, s, "user-2")

	if err := s.CreateJob(ctx, testJob("job-1", "user-1")); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	attack := testJob("job-1", "user-2")
	attack.Company = "Evil Corp"
	if err := s.UpdateJob(ctx, attack); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong owner, got %v", err)
	}

	got, err := s.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.Company != "Acme" {
		t.Errorf("record was mutated by non-owner: got %q", got.Company)
	}
}

func TestDeleteJob_WrongOwnerDoesNotDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")
	seedUser(t, s, "user-2")

	if err := s.CreateJob(ctx, testJob("job-1", "user-1")); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	if err := s.DeleteJob(ctx, "job-1", "user-2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong owner, got %v", err)
	}
	if _, err := s.GetJob(ctx, "job-1"); err != nil {
		t.Errorf("record should still exist, got %v", err)
	}

	if err := s.DeleteJob(ctx, "job-1", "user-1"); err != nil {
		t.Fatalf("DeleteJob failed: %v", err)
	}
	if _, err := s.GetJob(ctx, "job-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
