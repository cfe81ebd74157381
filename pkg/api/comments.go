package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/MinhQuan1102/news-website/pkg/storage"
)

func (api *API) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	user, ok := identity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized. Please log in.", nil)
		return
	}

	newsID, err := uuid.FromString(mux.Vars(r)["newsId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid UUID parameter", nil)
		return
	}

	var body struct {
		Content string    `json:"content"`
		ReplyTo uuid.UUID `json:"replyTo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Debugf("[createCommentHandler][%s] failed to decode request body: %v", sID, err)
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(body.Content) == "" {
		writeError(w, http.StatusBadRequest, "Comment content is required.", nil)
		return
	}

	comment, err := api.DB.AddComment(r.Context(), storage.Comment{
		Content: body.Content,
		Author:  user.ID,
		News:    newsID,
		ReplyTo: body.ReplyTo,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNewsNotFound):
			writeError(w, http.StatusNotFound, "News not found.", nil)
		case errors.Is(err, storage.ErrParentCommentNotFound):
			writeError(w, http.StatusBadRequest, "Parent comment not found.", nil)
		default:
			log.Errorf("[createCommentHandler][%s] AddComment() returned error: %v", sID, err)
			writeError(w, http.StatusInternalServerError, "Internal server error", err)
		}
		return
	}

	populated, err := api.DB.PopulatedComment(r.Context(), comment.ID)
	if err != nil {
		log.Errorf("[createCommentHandler][%s] PopulatedComment() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	writeJSON(w, http.StatusCreated, commentResponse{Message: "Create comment successfully", Comment: populated})
	log.Debugf("[createCommentHandler][%s] comment %v created on news %v by %v", sID, comment.ID, newsID, user.ID)
}

func (api *API) updateCommentHandler(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Debugf("[updateCommentHandler][%s] failed to decode request body: %v", sID, err)
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(body.Content) == "" {
		writeError(w, http.StatusBadRequest, "Comment content is required.", nil)
		return
	}

	comment, err := api.DB.Comment(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrCommentNotFound) {
			writeError(w, http.StatusNotFound, "Comment not found.", nil)
			return
		}
		log.Errorf("[updateCommentHandler][%s] Comment() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	if comment.Author != user.ID {
		log.Debugf("[updateCommentHandler][%s] user %v is not the author of comment %v", sID, user.ID, id)
		writeError(w, http.StatusForbidden, "You are not allowed to update this comment.", nil)
		return
	}

	updated, err := api.DB.UpdateComment(r.Context(), id, body.Content)
	if err != nil {
		log.Errorf("[updateCommentHandler][%s] UpdateComment() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Message: "Updated comment successfully", Data: updated})
	log.Debugf("[updateCommentHandler][%s] comment %v updated by %v", sID, id, user.ID)
}

func (api *API) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
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

	comment, err := api.DB.Comment(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrCommentNotFound) {
			writeError(w, http.StatusNotFound, "Comment not found.", nil)
			return
		}
		log.Errorf("[deleteCommentHandler][%s] Comment() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	if comment.Author != user.ID {
		log.Debugf("[deleteCommentHandler][%s] user %v is not the author of comment %v", sID, user.ID, id)
		writeError(w, http.StatusForbidden, "You are not allowed to delete this comment.", nil)
		return
	}

	if err := api.DB.DeleteComment(r.Context(), id); err != nil {
		log.Errorf("[deleteCommentHandler][%s] DeleteComment() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Message: "Comment deleted successfully."})
	log.Debugf("[deleteCommentHandler][%s] comment %v deleted by %v", sID, id, user.ID)
}
