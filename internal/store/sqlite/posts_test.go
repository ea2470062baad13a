package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/inkpost/inkpost-server/internal/domain"
	"github.com/inkpost/inkpost-server/internal/store"
)

func postIDs(posts []*domain.Post) []int64 {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCreateAndGetPost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := makeTestUser(t, s, "ann@example.com")

	detail := "long text"
	p := &domain.Post{OwnerID: owner.ID, Title: "Sample", Detail: &detail, Featured: true, Visible: true, VisitCount: 99}
	if err := s.CreatePost(ctx, p); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if p.VisitCount != 0 {
		t.Errorf("VisitCount should be server-assigned, got %d", p.VisitCount)
	}

	got, err := s.GetPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.Title != "Sample" || got.Detail == nil || *got.Detail != "long text" || !got.Featured || !got.Visible {
		t.Errorf("GetPost = %+v", got)
	}
	if got.CreatedAt.UnixNano() != p.CreatedAt.UnixNano() {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, p.CreatedAt)
	}
}

func TestCreatePost_UnknownOwner(t *testing.T) {
	s := newTestStore(t)
	err := s.CreatePost(context.Background(), &domain.Post{OwnerID: 42, Title: "x"})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestUpdatePost_KeepsServerFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := makeTestUser(t, s, "ann@example.com")
	other := makeTestUser(t, s, "bob@example.com")
	p := makeTestPost(t, s, owner.ID, "Before")

	if _, err := s.IncrementPostVisits(ctx, p.ID); err != nil {
		t.Fatalf("IncrementPostVisits: %v", err)
	}

	p.Title = "After"
	p.OwnerID = other.ID
	p.VisitCount = 500
	if err := s.UpdatePost(ctx, p); err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}

	got, err := s.GetPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.Title != "After" {
		t.Errorf("Title = %q, want After", got.Title)
	}
	if got.OwnerID != owner.ID {
		t.Errorf("OwnerID changed to %d", got.OwnerID)
	}
	if got.VisitCount != 1 {
		t.Errorf("VisitCount = %d, want 1", got.VisitCount)
	}
}

func TestIncrementPostVisits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := makeTestUser(t, s, "ann@example.com")
	p := makeTestPost(t, s, owner.ID, "Counted")

	for want := int64(1); want <= 3; want++ {
		got, err := s.IncrementPostVisits(ctx, p.ID)
		if err != nil {
			t.Fatalf("IncrementPostVisits: %v", err)
		}
		if got != want {
			t.Errorf("visit count = %d, want %d", got, want)
		}
	}

	if _, err := s.IncrementPostVisits(ctx, 999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing post: got %v, want ErrNotFound", err)
	}
}

func TestListPosts_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ann := makeTestUser(t, s, "ann@example.com")
	bob := makeTestUser(t, s, "bob@example.com")

	p1 := makeTestPost(t, s, ann.ID, "one")
	p2 := makeTestPost(t, s, ann.ID, "two")
	p3 := makeTestPost(t, s, bob.ID, "three")
	hidden := &domain.Post{OwnerID: ann.ID, Title: "hidden", Visible: false}
	if err := s.CreatePost(ctx, hidden); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	goTag, _, _ := s.FindOrCreateTag(ctx, ann.ID, "go")
	dbTag, _, _ := s.FindOrCreateTag(ctx, ann.ID, "db")
	sec, _, _ := s.FindOrCreateSection(ctx, ann.ID, "Intro", nil)

	if err := s.SetPostTags(ctx, p1.ID, []int64{goTag.ID, dbTag.ID}); err != nil {
		t.Fatalf("SetPostTags: %v", err)
	}
	if err := s.SetPostTags(ctx, p2.ID, []int64{dbTag.ID}); err != nil {
		t.Fatalf("SetPostTags: %v", err)
	}
	if err := s.SetPostSections(ctx, p2.ID, []int64{sec.ID}); err != nil {
		t.Fatalf("SetPostSections: %v", err)
	}

	tests := []struct {
		name   string
		filter store.PostFilter
		want   []int64
	}{
		{"all newest first", store.PostFilter{}, []int64{hidden.ID, p3.ID, p2.ID, p1.ID}},
		{"visible only", store.PostFilter{VisibleOnly: true}, []int64{p3.ID, p2.ID, p1.ID}},
		{"owner", store.PostFilter{OwnerID: bob.ID}, []int64{p3.ID}},
		{"any of tags, no duplicates", store.PostFilter{TagIDs: []int64{goTag.ID, dbTag.ID}}, []int64{p2.ID, p1.ID}},
		{"single tag", store.PostFilter{TagIDs: []int64{goTag.ID}}, []int64{p1.ID}},
		{"section", store.PostFilter{SectionIDs: []int64{sec.ID}}, []int64{p2.ID}},
		{"tags and sections", store.PostFilter{TagIDs: []int64{goTag.ID}, SectionIDs: []int64{sec.ID}}, []int64{}},
		{"ids", store.PostFilter{IDs: []int64{p1.ID, p3.ID}}, []int64{p3.ID, p1.ID}},
		{"empty ids", store.PostFilter{IDs: []int64{}}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := s.ListPosts(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListPosts: %v", err)
			}
			if got := postIDs(posts); !equalIDs(got, tt.want) {
				t.Errorf("ListPosts = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeletePost_Cascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ann := makeTestUser(t, s, "ann@example.com")
	bob := makeTestUser(t, s, "bob@example.com")
	p := makeTestPost(t, s, ann.ID, "doomed")

	tag, _, _ := s.FindOrCreateTag(ctx, ann.ID, "kept")
	if err := s.SetPostTags(ctx, p.ID, []int64{tag.ID}); err != nil {
		t.Fatalf("SetPostTags: %v", err)
	}
	if err := s.AddLike(ctx, p.ID, bob.ID); err != nil {
		t.Fatalf("AddLike: %v", err)
	}

	c1 := &domain.Comment{OwnerID: bob.ID, PostID: p.ID, Body: "first"}
	c2 := &domain.Comment{OwnerID: bob.ID, PostID: p.ID, Body: "second"}
	for _, c := range []*domain.Comment{c1, c2} {
		if err := s.CreateComment(ctx, c); err != nil {
			t.Fatalf("CreateComment: %v", err)
		}
	}
	r := &domain.Reply{OwnerID: ann.ID, CommentID: c1.ID, Body: "thanks"}
	if err := s.CreateReply(ctx, r); err != nil {
		t.Fatalf("CreateReply: %v", err)
	}

	if err := s.DeletePost(ctx, p.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}

	if _, err := s.GetComment(ctx, c1.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("comment 1 survived: %v", err)
	}
	if _, err := s.GetComment(ctx, c2.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("comment 2 survived: %v", err)
	}
	if _, err := s.GetReply(ctx, r.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("reply survived: %v", err)
	}
	if _, err := s.GetTag(ctx, tag.ID); err != nil {
		t.Errorf("tag should survive post deletion: %v", err)
	}

	var likeRows int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM post_likes`).Scan(&likeRows); err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if likeRows != 0 {
		t.Errorf("post_likes rows = %d, want 0", likeRows)
	}

	if err := s.DeletePost(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestLikes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ann := makeTestUser(t, s, "ann@example.com")
	bob := makeTestUser(t, s, "bob@example.com")
	p := makeTestPost(t, s, ann.ID, "likeable")
	q := makeTestPost(t, s, ann.ID, "ignored")

	liked, err := s.HasLiked(ctx, p.ID, bob.ID)
	if err != nil || liked {
		t.Fatalf("HasLiked before = %v, %v", liked, err)
	}

	if err := s.AddLike(ctx, p.ID, bob.ID); err != nil {
		t.Fatalf("AddLike: %v", err)
	}
	if err := s.AddLike(ctx, p.ID, bob.ID); err != nil {
		t.Fatalf("AddLike twice: %v", err)
	}
	if err := s.AddLike(ctx, p.ID, ann.ID); err != nil {
		t.Fatalf("AddLike ann: %v", err)
	}

	likes, err := s.GetPostLikes(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPostLikes: %v", err)
	}
	if len(likes) != 2 {
		t.Errorf("likes = %v, want 2 entries", likes)
	}

	counts, err := s.CountLikesForPosts(ctx, []int64{p.ID, q.ID})
	if err != nil {
		t.Fatalf("CountLikesForPosts: %v", err)
	}
	if counts[p.ID] != 2 || counts[q.ID] != 0 {
		t.Errorf("counts = %v", counts)
	}

	if err := s.RemoveLike(ctx, p.ID, bob.ID); err != nil {
		t.Fatalf("RemoveLike: %v", err)
	}
	liked, err = s.HasLiked(ctx, p.ID, bob.ID)
	if err != nil || liked {
		t.Errorf("HasLiked after remove = %v, %v", liked, err)
	}

	if err := s.AddLike(ctx, 999, bob.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("like on missing post: got %v, want ErrNotFound", err)
	}
}
