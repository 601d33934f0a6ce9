package store

import (
	"testing"

	"synapse/pkg/models"
)

func openTemp(t *testing.T) {
	t.Helper()
	if err := Open(t.TempDir()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = Close() })
}

func TestSaveGetRoundTrip(t *testing.T) {
	openTemp(t)
	topic := &models.Topic{
		ID:   "t1",
		Name: "Synapse design notes",
		Branches: []*models.BranchNode{
			{ID: "b1", Name: "Main Discussion", Messages: []models.Message{
				{ID: "m1", Author: models.AuthorUser, Content: "hi"},
			}},
		},
		CurrentBranchID: "b1",
	}
	if err := SaveTopic(topic); err != nil {
		t.Fatalf("SaveTopic: %v", err)
	}
	got, err := GetTopic("t1")
	if err != nil {
		t.Fatalf("GetTopic: %v", err)
	}
	if got.Name != topic.Name || got.CurrentBranchID != "b1" {
		t.Fatalf("got %+v", got)
	}
	if len(got.Branches) != 1 || len(got.Branches[0].Messages) != 1 {
		t.Fatalf("branches not restored: %+v", got.Branches)
	}
}

func TestGetMissing(t *testing.T) {
	openTemp(t)
	_, err := GetTopic("nope")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound = false for %v", err)
	}
}

func TestListTopics(t *testing.T) {
	openTemp(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := SaveTopic(&models.Topic{ID: id, Name: "topic " + id}); err != nil {
			t.Fatalf("SaveTopic(%s): %v", id, err)
		}
	}
	got, err := ListTopics()
	if err != nil {
		t.Fatalf("ListTopics: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("listed %d topics, want 3", len(got))
	}
}

func TestDeleteTopic(t *testing.T) {
	openTemp(t)
	if err := SaveTopic(&models.Topic{ID: "t1", Name: "n"}); err != nil {
		t.Fatalf("SaveTopic: %v", err)
	}
	if err := DeleteTopic("t1"); err != nil {
		t.Fatalf("DeleteTopic: %v", err)
	}
	if _, err := GetTopic("t1"); !IsNotFound(err) {
		t.Fatalf("topic still present: %v", err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	openTemp(t)
	if err := SaveTopic(&models.Topic{ID: "t1", Name: "old"}); err != nil {
		t.Fatalf("SaveTopic: %v", err)
	}
	if err := SaveTopic(&models.Topic{ID: "t1", Name: "new"}); err != nil {
		t.Fatalf("SaveTopic: %v", err)
	}
	got, err := GetTopic("t1")
	if err != nil {
		t.Fatalf("GetTopic: %v", err)
	}
	if got.Name != "new" {
		t.Fatalf("name = %q", got.Name)
	}
}

func TestReady(t *testing.T) {
	if Ready() {
		t.Fatalf("Ready before Open")
	}
	openTemp(t)
	if !Ready() {
		t.Fatalf("not ready after Open")
	}
}
