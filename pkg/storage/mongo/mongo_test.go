package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/MinhQuan1102/news-website/pkg/storage"
)

func TestMain(m *testing.M) {
	log.SetLevel(log.PanicLevel)
	exitCode := m.Run()
	os.Exit(exitCode)
}

// testStorage connects to the test Mongo instance and registers cleanup.
// Tests are skipped when no instance is reachable on the test port.
func testStorage(t *testing.T) *Storage {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := StorageConnect(ctx)
	if err != nil {
		t.Skipf("mongo test instance unavailable: %v", err)
	}

	t.Cleanup(func() {
		err := RestoreDB(db)
		if err != nil {
			t.Logf("WARNING: unable to restore DB state after the test: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db.Close(ctx)
	})

	return db
}

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV4()
	if err != nil {
		t.Fatalf("failed to generate uuid: %v", err)
	}
	return id
}

func TestStorage_AddNews(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()

	author, err := db.AddUser(ctx, storage.User{Username: "john", Email: "john@example.com"})
	if err != nil {
		t.Fatalf("unexpected error adding user: %v", err)
	}

	added, err := db.AddNews(ctx, storage.News{
		Title:     "Go 1.23 released",
		Content:   "The latest Go release ships iterators.",
		Thumbnail: "https://img.example.com/go.png",
		Category:  "tech",
		Author:    author.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error adding news: %v", err)
	}
	if added.ID == uuid.Nil {
		t.Error("want generated id, got uuid.Nil")
	}
	if added.CreatedAt.IsZero() {
		t.Error("want generated creation time, got zero value")
	}

	got, err := db.News(ctx, added.ID)
	if err != nil {
		t.Fatalf("unexpected error retrieving news: %v", err)
	}
	if got.Title != added.Title || got.Author != author.ID {
		t.Errorf("want news\n%+v\n\ngot news\n%+v\n", added, got)
	}
}

func TestStorage_NewsList(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()

	author, err := db.AddUser(ctx, storage.User{Username: "john"})
	if err != nil {
		t.Fatalf("unexpected error adding user: %v", err)
	}

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	categories := []string{"tech", "tech", "sport", "tech", "culture"}
	for i, cat := range categories {
		_, err := db.AddNews(ctx, storage.News{
			Title:     "article",
			Content:   "content",
			Thumbnail: "https://img.example.com/t.png",
			Category:  cat,
			Author:    author.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("unexpected error adding news: %v", err)
		}
	}

	t.Run("category filter with pagination", func(t *testing.T) {
		items, total, err := db.NewsList(ctx, storage.NewsFilter{Category: "tech"}, 1, 2)
		if err != nil {
			t.Fatalf("unexpected error listing news: %v", err)
		}
		if total != 3 {
			t.Errorf("want total 3, got %d", total)
		}
		if len(items) != 2 {
			t.Fatalf("want 2 items on the first page, got %d", len(items))
		}
		if items[0].CreatedAt.Before(items[1].CreatedAt) {
			t.Error("want newest-first ordering")
		}
	})

	t.Run("no matches", func(t *testing.T) {
		items, total, err := db.NewsList(ctx, storage.NewsFilter{Category: "politics"}, 1, 10)
		if err != nil {
			t.Fatalf("unexpected error listing news: %v", err)
		}
		if total != 0 || len(items) != 0 {
			t.Errorf("want empty result, got %d items, total %d", len(items), total)
		}
	})
}

func TestStorage_NewsDetailed(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()

	author, err := db.AddUser(ctx, storage.User{Username: "john", Email: "john@example.com"})
	if err != nil {
		t.Fatalf("unexpected error adding user: %v", err)
	}
	news, err := db.AddNews(ctx, storage.News{
		Title:     "article",
		Content:   "content",
		Thumbnail: "https://img.example.com/t.png",
		Category:  "tech",
		Author:    author.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error adding news: %v", err)
	}

	parent, err := db.AddComment(ctx, storage.Comment{Content: "first", Author: author.ID, News: news.ID})
	if err != nil {
		t.Fatalf("unexpected error adding comment: %v", err)
	}
	reply, err := db.AddComment(ctx, storage.Comment{Content: "reply", Author: author.ID, News: news.ID, ReplyTo: parent.ID})
	if err != nil {
		t.Fatalf("unexpected error adding reply: %v", err)
	}

	got, err := db.NewsDetailed(ctx, news.ID)
	if err != nil {
		t.Fatalf("unexpected error retrieving detailed news: %v", err)
	}

	if got.Author.Username != "john" {
		t.Errorf("want populated author john, got %q", got.Author.Username)
	}
	if len(got.Comments) != 1 {
		t.Fatalf("want 1 top-level comment, got %d", len(got.Comments))
	}
	if got.Comments[0].ID != parent.ID {
		t.Errorf("want top-level comment %v, got %v", parent.ID, got.Comments[0].ID)
	}
	if len(got.Comments[0].Replies) != 1 || got.Comments[0].Replies[0].ID != reply.ID {
		t.Errorf("want reply %v nested under its parent, got %+v", reply.ID, got.Comments[0].Replies)
	}

	if _, err := db.NewsDetailed(ctx, mustUUID(t)); !errors.Is(err, storage.ErrNewsNotFound) {
		t.Errorf("want ErrNewsNotFound, got %v", err)
	}
}

func TestStorage_IncreaseViews(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()

	news, err := db.AddNews(ctx, storage.News{
		Title:     "article",
		Content:   "content",
		Thumbnail: "https://img.example.com/t.png",
		Category:  "tech",
		Author:    mustUUID(t),
	})
	if err != nil {
		t.Fatalf("unexpected error adding news: %v", err)
	}

	for want := int64(1); want <= 3; want++ {
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

func TestStorage_UpdateNews(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()

	news, err := db.AddNews(ctx, storage.News{
		Title:     "old title",
		Content:   "content",
		Thumbnail: "https://img.example.com/t.png",
		Category:  "tech",
		Author:    mustUUID(t),
	})
	if err != nil {
		t.Fatalf("unexpected error adding news: %v", err)
	}

	newTitle := "new title"
	got, err := db.UpdateNews(ctx, news.ID, storage.NewsUpdate{Title: &newTitle})
	if err != nil {
		t.Fatalf("unexpected error updating news: %v", err)
	}
	if got.Title != newTitle {
		t.Errorf("want title %q in the returned document, got %q", newTitle, got.Title)
	}
	if got.Content != news.Content {
		t.Errorf("want untouched content %q, got %q", news.Content, got.Content)
	}

	if _, err := db.UpdateNews(ctx, mustUUID(t), storage.NewsUpdate{Title: &newTitle}); !errors.Is(err, storage.ErrNewsNotFound) {
		t.Errorf("want ErrNewsNotFound, got %v", err)
	}
}

func TestStorage_DeleteNews(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()

	news, err := db.AddNews(ctx, storage.News{
		Title:     "article",
		Content:   "content",
		Thumbnail: "https://img.example.com/t.png",
		Category:  "tech",
		Author:    mustUUID(t),
	})
	if err != nil {
		t.Fatalf("unexpected error adding news: %v", err)
	}
	c, err := db.AddComment(ctx, storage.Comment{Content: "hi", Author: mustUUID(t), News: news.ID})
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

func TestStorage_Comments(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()

	author, err := db.AddUser(ctx, storage.User{Username: "john"})
	if err != nil {
		t.Fatalf("unexpected error adding user: %v", err)
	}
	news, err := db.AddNews(ctx, storage.News{
		Title:     "article",
		Content:   "content",
		Thumbnail: "https://img.example.com/t.png",
		Category:  "tech",
		Author:    author.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error adding news: %v", err)
	}

	t.Run("missing news", func(t *testing.T) {
		_, err := db.AddComment(ctx, storage.Comment{Content: "hi", Author: author.ID, News: mustUUID(t)})
		if !errors.Is(err, storage.ErrNewsNotFound) {
			t.Errorf("want ErrNewsNotFound, got %v", err)
		}
	})

	t.Run("missing parent", func(t *testing.T) {
		_, err := db.AddComment(ctx, storage.Comment{
			Content: "hi", Author: author.ID, News: news.ID, ReplyTo: mustUUID(t),
		})
		if !errors.Is(err, storage.ErrParentCommentNotFound) {
			t.Errorf("want ErrParentCommentNotFound, got %v", err)
		}
	})

	t.Run("comment lifecycle", func(t *testing.T) {
		c, err := db.AddComment(ctx, storage.Comment{Content: "hi", Author: author.ID, News: news.ID})
		if err != nil {
			t.Fatalf("unexpected error adding comment: %v", err)
		}

		gotNews, err := db.News(ctx, news.ID)
		if err != nil {
			t.Fatalf("unexpected error retrieving news: %v", err)
		}
		if len(gotNews.Comments) != 1 || gotNews.Comments[0] != c.ID {
			t.Errorf("want comment list [%v], got %v", c.ID, gotNews.Comments)
		}

		populated, err := db.PopulatedComment(ctx, c.ID)
		if err != nil {
			t.Fatalf("unexpected error populating comment: %v", err)
		}
		if populated.Author.Username != "john" {
			t.Errorf("want populated author john, got %q", populated.Author.Username)
		}

		updated, err := db.UpdateComment(ctx, c.ID, "edited")
		if err != nil {
			t.Fatalf("unexpected error updating comment: %v", err)
		}
		if updated.Content != "edited" {
			t.Errorf("want content %q in the returned document, got %q", "edited", updated.Content)
		}

		if err := db.DeleteComment(ctx, c.ID); err != nil {
			t.Fatalf("unexpected error deleting comment: %v", err)
		}
		if _, err := db.Comment(ctx, c.ID); !errors.Is(err, storage.ErrCommentNotFound) {
			t.Errorf("want ErrCommentNotFound after deletion, got %v", err)
		}

		gotNews, err = db.News(ctx, news.ID)
		if err != nil {
			t.Fatalf("unexpected error retrieving news: %v", err)
		}
		if len(gotNews.Comments) != 0 {
			t.Errorf("want comment detached from the article's list, got %v", gotNews.Comments)
		}
	})
}

func TestStorage_Users(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()

	added, err := db.AddUser(ctx, storage.User{Username: "alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("unexpected error adding user: %v", err)
	}

	got, err := db.User(ctx, added.ID)
	if err != nil {
		t.Fatalf("unexpected error retrieving user: %v", err)
	}
	if got.Username != "alice" || got.Email != "alice@example.com" {
		t.Errorf("want user\n%+v\n\ngot user\n%+v\n", added, got)
	}

	avatar := "https://img.example.com/alice.png"
	updated, err := db.UpdateUser(ctx, added.ID, storage.UserUpdate{Avatar: &avatar})
	if err != nil {
		t.Fatalf("unexpected error updating user: %v", err)
	}
	if updated.Avatar != avatar {
		t.Errorf("want avatar %q, got %q", avatar, updated.Avatar)
	}
	if updated.Username != "alice" {
		t.Errorf("want untouched username alice, got %q", updated.Username)
	}

	if _, err := db.User(ctx, mustUUID(t)); !errors.Is(err, storage.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}
