package memdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MinhQuan1102/news-website/pkg/storage"
)

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV4()
	if err != nil {
		t.Fatalf("failed to generate uuid: %v", err)
	}
	return id
}

func TestStore_AddComment(t *testing.T) {
	db := New()
	ctx := context.Background()
	author := mustUUID(t)

	news, err := db.AddNews(ctx, storage.News{Title: "a", Content: "b", Thumbnail: "u", Category: "tech", Author: author})
	if err != nil {
		t.Fatalf("unexpected error adding news: %v", err)
	}

	t.Run("missing news", func(t *testing.T) {
		_, err := db.AddComment(ctx, storage.Comment{Content: "hi", Author: author, News: mustUUID(t)})
		if !errors.Is(err, storage.ErrNewsNotFound) {
			t.Errorf("want ErrNewsNotFound, got %v", err)
		}
	})

	t.Run("missing parent", func(t *testing.T) {
		_, err := db.AddComment(ctx, storage.Comment{
			Content: "hi", Author: author, News: news.ID, ReplyTo: mustUUID(t),
		})
		if !errors.Is(err, storage.ErrParentCommentNotFound) {
			t.Errorf("want ErrParentCommentNotFound, got %v", err)
		}
	})

	t.Run("appended to the article's list", func(t *testing.T) {
		c, err := db.AddComment(ctx, storage.Comment{Content: "hi", Author: author, News: news.ID})
		if err != nil {
			t.Fatalf("unexpected error adding comment: %v", err)
		}

		got, err := db.News(ctx, news.ID)
		if err != nil {
			t.Fatalf("unexpected error retrieving news: %v", err)
		}
		if len(got.Comments) != 1 || got.Comments[0] != c.ID {
			t.Errorf("want comment list [%v], got %v", c.ID, got.Comments)
		}
	})
}

func TestStore_DeleteNewsCascades(t *testing.T) {
	db := New()
	ctx := context.Background()
	author := mustUUID(t)

	news, err := db.AddNews(ctx, storage.News{Title: "a", Content: "b", Thumbnail: "u", Category: "tech", Author: author})
	if err != nil {
		t.Fatalf("unexpected error adding news: %v", err)
	}
	c, err := db.AddComment(ctx, storage.Comment{Content: "hi", Author: author, News: news.ID})
	if err != nil {
		t.Fatalf("unexpected error adding comment: %v", err)
	}

	if err := db.DeleteNews(ctx, news.ID); err != nil {
		t.Fatalf("unexpected error deleting news: %v", err)
	}

	if _, err := db.News(ctx, news.ID); !errors.Is(err, storage.ErrNewsNotFound) {
		t.Errorf("want ErrNewsNotFound after deletion, got %v", err)
	}
	if _, err := db.Comment(ctx, c.ID); !errors.Is(err, storage.ErrCommentNotFound) {
		t.Errorf("want comments cascade-deleted with the article, got %v", err)
	}
}

func TestStore_DeleteCommentDetaches(t *testing.T) {
	db := New()
	ctx := context.Background()
	author := mustUUID(t)

	news, err := db.AddNews(ctx, storage.News{Title: "a", Content: "b", Thumbnail: "u", Category: "tech", Author: author})
	if err != nil {
		t.Fatalf("unexpected error adding news: %v", err)
	}
	keep, err := db.AddComment(ctx, storage.Comment{Content: "keep", Author: author, News: news.ID})
	if err != nil {
		t.Fatalf("unexpected error adding comment: %v", err)
	}
	drop, err := db.AddComment(ctx, storage.Comment{Content: "drop", Author: author, News: news.ID})
	if err != nil {
		t.Fatalf("unexpected error adding comment: %v", err)
	}

	if err := db.DeleteComment(ctx, drop.ID); err != nil {
		t.Fatalf("unexpected error deleting comment: %v", err)
	}

	got, err := db.News(ctx, news.ID)
	if err != nil {
		t.Fatalf("unexpected error retrieving news: %v", err)
	}
	if len(got.Comments) != 1 || got.Comments[0] != keep.ID {
		t.Errorf("want comment list [%v] after detach, got %v", keep.ID, got.Comments)
	}
}

func TestStore_NewsListPagination(t *testing.T) {
	db := New()
	ctx := context.Background()
	author := mustUUID(t)

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		_, err := db.AddNews(ctx, storage.News{
			Title: "n", Content: "c", Thumbnail: "u", Category: "tech",
			Author: author, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("unexpected error adding news: %v", err)
		}
	}

	tests := []struct {
		name      string
		page      int
		limit     int
		wantLen   int
		wantTotal int
	}{
		{name: "first page", page: 1, limit: 3, wantLen: 3, wantTotal: 7},
		{name: "last partial page", page: 3, limit: 3, wantLen: 1, wantTotal: 7},
		{name: "page out of range", page: 9, limit: 3, wantLen: 0, wantTotal: 7},
		{name: "defaults applied", page: 0, limit: 0, wantLen: 7, wantTotal: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := db.NewsList(ctx, storage.NewsFilter{}, tt.page, tt.limit)
			if err != nil {
				t.Fatalf("unexpected error listing news: %v", err)
			}
			if len(items) != tt.wantLen {
				t.Errorf("want %d items, got %d", tt.wantLen, len(items))
			}
			if total != tt.wantTotal {
				t.Errorf("want total %d, got %d", tt.wantTotal, total)
			}
		})
	}
}

func TestStore_IncreaseViews(t *testing.T) {
	db := New()
	ctx := context.Background()

	news, err := db.AddNews(ctx, storage.News{Title: "a", Content: "b", Thumbnail: "u", Category: "tech", Author: mustUUID(t)})
	if err != nil {
		t.Fatalf("unexpected error adding news: %v", err)
	}

	for want := int64(1); want <= 5; want++ {
		got, err := db.IncreaseViews(ctx, news.ID)
		if err != nil {
			t.Fatalf("unexpected error increasing views: %v", err)
		}
		if got != want {
			t.Errorf("want %d views, got %d", want, got)
		}
	}

	if _, err := db.IncreaseViews(ctx, mustUUID(t)); !errors.Is(err, storage.ErrNewsNotFound) {
		t.Errorf("want ErrNewsNotFound, got %v", err)
	}
}

func TestStore_Categories(t *testing.T) {
	db := New()
	ctx := context.Background()
	author := mustUUID(t)

	for _, cat := range []string{"tech", "sport", "tech", "culture"} {
		_, err := db.AddNews(ctx, storage.News{Title: "a", Content: "b", Thumbnail: "u", Category: cat, Author: author})
		if err != nil {
			t.Fatalf("unexpected error adding news: %v", err)
		}
	}

	got, err := db.Categories(ctx)
	if err != nil {
		t.Fatalf("unexpected error listing categories: %v", err)
	}

	want := []string{"culture", "sport", "tech"}
	if len(got) != len(want) {
		t.Fatalf("want categories %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("want categories %v, got %v", want, got)
			break
		}
	}
}

func TestStore_UpdateUserHashesPassword(t *testing.T) {
	db := New()
	ctx := context.Background()

	user, err := db.AddUser(ctx, storage.User{Username: "alice"})
	if err != nil {
		t.Fatalf("unexpected error adding user: %v", err)
	}

	newPass := "s3cret"
	updated, err := db.UpdateUser(ctx, user.ID, storage.UserUpdate{Password: &newPass})
	if err != nil {
		t.Fatalf("unexpected error updating user: %v", err)
	}

	if updated.Password == newPass {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte(newPass)); err != nil {
		t.Errorf("stored hash does not match the new password: %v", err)
	}
}
