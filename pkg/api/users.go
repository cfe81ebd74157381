package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/MinhQuan1102/news-website/pkg/storage"
)

func (api *API) userProfileHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid UUID parameter", nil)
		return
	}

	user, err := api.DB.User(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found.", nil)
			return
		}
		log.Errorf("[userProfileHandler][%s] User() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	// The password hash is excluded by the model's json tag.
	writeJSON(w, http.StatusOK, dataResponse{Message: "Get profile successfully", Data: user})
	log.Debugf("[userProfileHandler][%s] response sent to: %v", sID, r.RemoteAddr)
}

func (api *API) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	user, ok := identity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized. Please log in.", nil)
		return
	}

	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid UUID parameter", nil)
		return
	}

	// Profiles are self-service only.
	if user.ID != id {
		log.Debugf("[updateUserHandler][%s] user %v may not update profile %v", sID, user.ID, id)
		writeError(w, http.StatusForbidden, "You are not allowed to update this profile.", nil)
		return
	}

	var upd storage.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		log.Debugf("[updateUserHandler][%s] failed to decode request body: %v", sID, err)
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	defer r.Body.Close()

	if upd.Empty() {
		writeError(w, http.StatusBadRequest, "No updatable fields provided.", nil)
		return
	}

	updated, err := api.DB.UpdateUser(r.Context(), id, upd)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found.", nil)
			return
		}
		log.Errorf("[updateUserHandler][%s] UpdateUser() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Message: "Updated profile successfully", Data: updated})
	log.Debugf("[updateUserHandler][%s] profile %v updated", sID, id)
}
