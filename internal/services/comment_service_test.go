package services

import (
	"testing"

	"github.com/portuna85/kraft/internal/apperr"
	"github.com/portuna85/kraft/internal/models"
)

func TestCreateTopLevelComment(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	author := createUser(t, gdb, "alice")
	post := createPost(t, gdb, author, "first post")

	id, err := svc.Create(post.ID, "hello", asPrincipal(author))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var comment models.Comment
	if err := gdb.First(&comment, id).Error; err != nil {
		t.Fatalf("created comment not found: %v", err)
	}
	if comment.ParentID != nil {
		t.Error("top-level comment should have nil parent")
	}
	if comment.PostID != post.ID || comment.AuthorID != author.ID {
		t.Errorf("comment attached wrong: postId=%d authorId=%d", comment.PostID, comment.AuthorID)
	}
}

func TestCreateCommentPostNotFound(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	author := createUser(t, gdb, "alice")

	_, err := svc.Create(999, "hello", asPrincipal(author))
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestCreateReply(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	post := createPost(t, gdb, alice, "first post")

	parentID, err := svc.Create(post.ID, "parent", asPrincipal(alice))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	replyID, err := svc.CreateReply(post.ID, parentID, "reply", asPrincipal(bob))
	if err != nil {
		t.Fatalf("CreateReply failed: %v", err)
	}

	var reply models.Comment
	if err := gdb.First(&reply, replyID).Error; err != nil {
		t.Fatalf("reply not found: %v", err)
	}
	if reply.ParentID == nil || *reply.ParentID != parentID {
		t.Error("reply should reference its parent")
	}
	if reply.PostID != post.ID {
		t.Error("reply should belong to the parent's post")
	}
	if !reply.IsReply() {
		t.Error("IsReply should be true for a reply")
	}
}

func TestCreateReplyPostMismatch(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	postA := createPost(t, gdb, alice, "post a")
	postB := createPost(t, gdb, alice, "post b")

	parentID, err := svc.Create(postA.ID, "parent on a", asPrincipal(alice))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.CreateReply(postB.ID, parentID, "mismatched", asPrincipal(alice))
	if apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}

	// The mismatched reply must not have persisted.
	var count int64
	gdb.Model(&models.Comment{}).Where("parent_id = ?", parentID).Count(&count)
	if count != 0 {
		t.Errorf("mismatched reply persisted: %d replies", count)
	}
}

func TestCreateReplyParentNotFound(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	post := createPost(t, gdb, alice, "post")

	_, err := svc.CreateReply(post.ID, 999, "orphan", asPrincipal(alice))
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	post := createPost(t, gdb, alice, "post")

	id, err := svc.Create(post.ID, "original", asPrincipal(alice))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.Update(id, "hijacked", asPrincipal(bob))
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected Unauthorized, got %v", err)
	}

	var comment models.Comment
	gdb.First(&comment, id)
	if comment.Content != "original" {
		t.Errorf("content mutated by non-author: %q", comment.Content)
	}

	if _, err := svc.Update(id, "edited", asPrincipal(alice)); err != nil {
		t.Fatalf("author update failed: %v", err)
	}
	gdb.First(&comment, id)
	if comment.Content != "edited" {
		t.Errorf("content = %q, want %q", comment.Content, "edited")
	}
}

func TestDeleteCommentAuthorOnly(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	post := createPost(t, gdb, alice, "post")

	id, _ := svc.Create(post.ID, "keep me", asPrincipal(alice))

	if err := svc.Delete(id, asPrincipal(bob)); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected Unauthorized, got %v", err)
	}

	var count int64
	gdb.Model(&models.Comment{}).Where("id = ?", id).Count(&count)
	if count != 1 {
		t.Error("comment removed by non-author")
	}
}

func TestDeleteCommentCascadesReplies(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	post := createPost(t, gdb, alice, "post")

	parentID, _ := svc.Create(post.ID, "parent", asPrincipal(alice))
	svc.CreateReply(post.ID, parentID, "reply one", asPrincipal(bob))
	svc.CreateReply(post.ID, parentID, "reply two", asPrincipal(bob))

	if err := svc.Delete(parentID, asPrincipal(alice)); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var count int64
	gdb.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count)
	if count != 0 {
		t.Errorf("orphaned rows after cascade delete: %d", count)
	}
}

func TestIsAuthor(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	post := createPost(t, gdb, alice, "post")

	id, _ := svc.Create(post.ID, "mine", asPrincipal(alice))

	if ok, err := svc.IsAuthor(id, alice.ID); err != nil || !ok {
		t.Errorf("IsAuthor(alice) = %v, %v; want true", ok, err)
	}
	if ok, _ := svc.IsAuthor(id, bob.ID); ok {
		t.Error("IsAuthor(bob) = true, want false")
	}
	if _, err := svc.IsAuthor(999, alice.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected NotFound for missing comment, got %v", err)
	}
}

func TestListParentsExcludesReplies(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	post := createPost(t, gdb, alice, "post")

	parentID, _ := svc.Create(post.ID, "parent", asPrincipal(alice))
	svc.CreateReply(post.ID, parentID, "reply one", asPrincipal(bob))
	svc.CreateReply(post.ID, parentID, "reply two", asPrincipal(bob))

	parents, err := svc.ListParents(post.ID)
	if err != nil {
		t.Fatalf("ListParents failed: %v", err)
	}
	if len(parents) != 1 {
		t.Fatalf("len(parents) = %d, want 1", len(parents))
	}
	if parents[0].ReplyCount != 2 {
		t.Errorf("ReplyCount = %d, want 2", parents[0].ReplyCount)
	}

	all, err := svc.ListByPost(post.ID)
	if err != nil {
		t.Fatalf("ListByPost failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}

	count, err := svc.CountByPost(post.ID)
	if err != nil || count != 3 {
		t.Errorf("CountByPost = %d, %v; want 3", count, err)
	}
}

func TestListByPostIdempotent(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	post := createPost(t, gdb, alice, "post")

	for _, content := range []string{"one", "two", "three"} {
		if _, err := svc.Create(post.ID, content, asPrincipal(alice)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	first, err := svc.ListByPost(post.ID)
	if err != nil {
		t.Fatalf("first ListByPost failed: %v", err)
	}
	second, err := svc.ListByPost(post.ID)
	if err != nil {
		t.Fatalf("second ListByPost failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Content != second[i].Content {
			t.Errorf("position %d differs between reads", i)
		}
	}
	// Oldest first.
	for i := 1; i < len(first); i++ {
		if first[i].ID < first[i-1].ID {
			t.Error("comments not ordered by id ascending")
		}
	}
}

func TestListParentsPage(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	post := createPost(t, gdb, alice, "post")

	for i := 0; i < 21; i++ {
		if _, err := svc.Create(post.ID, "comment", asPrincipal(alice)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	page, err := svc.ListParentsPage(post.ID, 1, 10)
	if err != nil {
		t.Fatalf("ListParentsPage failed: %v", err)
	}
	if page.TotalElements != 21 || page.TotalPages != 3 {
		t.Errorf("totals = %d/%d, want 21/3", page.TotalElements, page.TotalPages)
	}
	if page.First || page.Last || !page.HasNext || !page.HasPrevious {
		t.Errorf("descriptor wrong: first=%v last=%v next=%v prev=%v",
			page.First, page.Last, page.HasNext, page.HasPrevious)
	}
	if len(page.Content) != 10 {
		t.Errorf("len(content) = %d, want 10", len(page.Content))
	}
}

func TestListParentsPageEmpty(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	post := createPost(t, gdb, alice, "post")

	page, err := svc.ListParentsPage(post.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListParentsPage failed: %v", err)
	}
	if !page.First || !page.Last || page.HasNext || page.HasPrevious {
		t.Errorf("empty descriptor wrong: first=%v last=%v next=%v prev=%v",
			page.First, page.Last, page.HasNext, page.HasPrevious)
	}
}

func TestListThreadNestsOneLevel(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	post := createPost(t, gdb, alice, "post")

	p1, _ := svc.Create(post.ID, "thread one", asPrincipal(alice))
	svc.Create(post.ID, "thread two", asPrincipal(bob))
	svc.CreateReply(post.ID, p1, "reply a", asPrincipal(bob))
	svc.CreateReply(post.ID, p1, "reply b", asPrincipal(alice))

	thread, err := svc.ListThread(post.ID)
	if err != nil {
		t.Fatalf("ListThread failed: %v", err)
	}
	if len(thread) != 2 {
		t.Fatalf("len(thread) = %d, want 2", len(thread))
	}
	if thread[0].ReplyCount != 2 || len(thread[0].Replies) != 2 {
		t.Errorf("first thread: replyCount=%d replies=%d, want 2/2",
			thread[0].ReplyCount, len(thread[0].Replies))
	}
	for _, reply := range thread[0].Replies {
		if len(reply.Replies) != 0 {
			t.Error("replies must not nest further replies")
		}
	}
	if len(thread[1].Replies) != 0 {
		t.Error("second thread should have no replies")
	}
}

func TestListThreadNestedReplyCounts(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	post := createPost(t, gdb, alice, "post")

	a, _ := svc.Create(post.ID, "top", asPrincipal(alice))
	b, _ := svc.CreateReply(post.ID, a, "mid", asPrincipal(alice))
	svc.CreateReply(post.ID, b, "leaf", asPrincipal(alice))

	thread, err := svc.ListThread(post.ID)
	if err != nil {
		t.Fatalf("ListThread failed: %v", err)
	}
	if len(thread) != 1 {
		t.Fatalf("len(thread) = %d, want 1", len(thread))
	}
	// Only direct children nest under the top-level comment, but the
	// nested reply still reports its own live child count.
	if len(thread[0].Replies) != 1 {
		t.Fatalf("len(replies) = %d, want 1", len(thread[0].Replies))
	}
	if thread[0].Replies[0].ReplyCount != 1 {
		t.Errorf("nested ReplyCount = %d, want 1", thread[0].Replies[0].ReplyCount)
	}
}

func TestListReplies(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	post := createPost(t, gdb, alice, "post")

	parentID, _ := svc.Create(post.ID, "parent", asPrincipal(alice))
	svc.CreateReply(post.ID, parentID, "first", asPrincipal(alice))
	svc.CreateReply(post.ID, parentID, "second", asPrincipal(alice))

	replies, err := svc.ListReplies(parentID)
	if err != nil {
		t.Fatalf("ListReplies failed: %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("len(replies) = %d, want 2", len(replies))
	}
	if replies[0].Content != "first" || replies[1].Content != "second" {
		t.Error("replies not ordered oldest first")
	}

	if _, err := svc.ListReplies(999); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected NotFound for missing parent, got %v", err)
	}
}

func TestListRepliesCountsNestedChildren(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	post := createPost(t, gdb, alice, "post")

	a, _ := svc.Create(post.ID, "top", asPrincipal(alice))
	b, _ := svc.CreateReply(post.ID, a, "mid", asPrincipal(alice))
	svc.CreateReply(post.ID, b, "leaf", asPrincipal(alice))

	replies, err := svc.ListReplies(a)
	if err != nil {
		t.Fatalf("ListReplies failed: %v", err)
	}
	if len(replies) != 1 {
		t.Fatalf("len = %d, want 1", len(replies))
	}
	if replies[0].ReplyCount != 1 {
		t.Errorf("ReplyCount = %d, want 1 (live child count)", replies[0].ReplyCount)
	}

	leaves, err := svc.ListReplies(b)
	if err != nil {
		t.Fatalf("ListReplies failed: %v", err)
	}
	if len(leaves) != 1 || leaves[0].ReplyCount != 0 {
		t.Errorf("leaf: len=%d count=%d, want 1/0", len(leaves), leaves[0].ReplyCount)
	}
}

func TestListByAuthor(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	postA := createPost(t, gdb, alice, "post a")
	postB := createPost(t, gdb, alice, "post b")

	svc.Create(postA.ID, "alice on a", asPrincipal(alice))
	svc.Create(postB.ID, "alice on b", asPrincipal(alice))
	svc.Create(postA.ID, "bob on a", asPrincipal(bob))

	mine, err := svc.ListByAuthor(alice.ID)
	if err != nil {
		t.Fatalf("ListByAuthor failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("len = %d, want 2", len(mine))
	}
	// Newest first.
	if mine[0].Content != "alice on b" || mine[1].Content != "alice on a" {
		t.Errorf("order wrong: %q, %q", mine[0].Content, mine[1].Content)
	}
	for _, c := range mine {
		if c.AuthorID != alice.ID {
			t.Error("foreign comment in author listing")
		}
	}
}

// Full lifecycle: reply mismatch rejected, non-author delete rejected,
// author delete cascades.
func TestCommentLifecycleScenario(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCommentService(gdb)
	u1 := createUser(t, gdb, "u1")
	u2 := createUser(t, gdb, "u2")
	p := createPost(t, gdb, u1, "T")
	p2 := createPost(t, gdb, u1, "T2")

	a, err := svc.Create(p.ID, "comment A", asPrincipal(u1))
	if err != nil {
		t.Fatalf("create A failed: %v", err)
	}
	if _, err := svc.CreateReply(p.ID, a, "reply B", asPrincipal(u2)); err != nil {
		t.Fatalf("create B failed: %v", err)
	}

	if _, err := svc.CreateReply(p2.ID, a, "wrong post", asPrincipal(u2)); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("mismatched reply: expected InvalidArgument, got %v", err)
	}

	if err := svc.Delete(a, asPrincipal(u2)); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("non-author delete: expected Unauthorized, got %v", err)
	}

	if err := svc.Delete(a, asPrincipal(u1)); err != nil {
		t.Fatalf("author delete failed: %v", err)
	}

	remaining, err := svc.ListByPost(p.ID)
	if err != nil {
		t.Fatalf("ListByPost failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("comments remain after cascade: %d", len(remaining))
	}
}
