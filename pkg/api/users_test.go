package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gofrs/uuid"

	"github.com/MinhQuan1102/news-website/pkg/storage"
)

func TestAPI_userProfileHandler(t *testing.T) {
	api, db := newTestAPI()
	alice := addTestUser(t, db, "alice")

	t.Run("profile excludes password", func(t *testing.T) {
		rr := doJSON(t, api, http.MethodGet, "/users/profile/"+alice.ID.String(), "", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("want status code %v, got %v", http.StatusOK, rr.Code)
		}

		if strings.Contains(rr.Body.String(), "password") {
			t.Error("profile response leaks the password field")
		}

		var resp struct {
			Data storage.User `json:"data"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unexpected error unmarshaling response: %v", err)
		}
		if resp.Data.Username != "alice" {
			t.Errorf("want username alice, got %q", resp.Data.Username)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		id, _ := uuid.NewV4()
		rr := doJSON(t, api, http.MethodGet, "/users/profile/"+id.String(), "", nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("want status code %v, got %v", http.StatusNotFound, rr.Code)
		}
	})
}

func TestAPI_updateUserHandler(t *testing.T) {
	api, db := newTestAPI()
	alice := addTestUser(t, db, "alice")
	bob := addTestUser(t, db, "bob")

	t.Run("no token", func(t *testing.T) {
		rr := doJSON(t, api, http.MethodPut, "/users/"+alice.ID.String(), "",
			map[string]string{"username": "mallory"})
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("want status code %v, got %v", http.StatusUnauthorized, rr.Code)
		}
	})

	t.Run("not self", func(t *testing.T) {
		rr := doJSON(t, api, http.MethodPut, "/users/"+alice.ID.String(),
			bearerToken(t, bob.ID), map[string]string{"username": "mallory"})
		if rr.Code != http.StatusForbidden {
			t.Errorf("want status code %v, got %v", http.StatusForbidden, rr.Code)
		}
	})

	t.Run("self", func(t *testing.T) {
		rr := doJSON(t, api, http.MethodPut, "/users/"+alice.ID.String(),
			bearerToken(t, alice.ID), map[string]string{"username": "alice2", "avatar": "https://img/a.png"})
		if rr.Code != http.StatusOK {
			t.Fatalf("want status code %v, got %v", http.StatusOK, rr.Code)
		}

		got, err := db.User(context.Background(), alice.ID)
		if err != nil {
			t.Fatalf("unexpected error retrieving user: %v", err)
		}
		if got.Username != "alice2" {
			t.Errorf("want username alice2, got %q", got.Username)
		}
		if got.Avatar != "https://img/a.png" {
			t.Errorf("want updated avatar, got %q", got.Avatar)
		}
	})

	t.Run("empty update", func(t *testing.T) {
		rr := doJSON(t, api, http.MethodPut, "/users/"+alice.ID.String(),
			bearerToken(t, alice.ID), map[string]string{})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("want status code %v, got %v", http.StatusBadRequest, rr.Code)
		}
	})
}
