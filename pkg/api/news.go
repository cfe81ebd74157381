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

func (api *API) newsByCategoryHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))
	page, limit := pageParams(r)

	filter := storage.NewsFilter{Category: r.URL.Query().Get("category")}

	items, total, err := api.DB.NewsList(r.Context(), filter, page, limit)
	if err != nil {
		log.Errorf("[newsByCategoryHandler][%s] NewsList() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Message:     "Get news by category successfully",
		CurrentPage: page,
		TotalPages:  numPages(total, limit),
		TotalItems:  total,
		Data:        items,
	})
	log.Debugf("[newsByCategoryHandler][%s] response sent to: %v", sID, r.RemoteAddr)
}

func (api *API) featuredNewsHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	news, err := api.DB.FeaturedNews(r.Context(), featuredCount)
	if err != nil {
		log.Errorf("[featuredNewsHandler][%s] FeaturedNews() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Message: "Get featured news successfully", Data: news})
	log.Debugf("[featuredNewsHandler][%s] response sent to: %v", sID, r.RemoteAddr)
}

func (api *API) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	categories, err := api.DB.Categories(r.Context())
	if err != nil {
		log.Errorf("[categoriesHandler][%s] Categories() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Message: "Get all categories successfully", Data: categories})
	log.Debugf("[categoriesHandler][%s] response sent to: %v", sID, r.RemoteAddr)
}

func (api *API) newsOfUserHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))
	page, limit := pageParams(r)

	userID, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		log.Debugf("[newsOfUserHandler][%s] failed to parse user ID: %v", sID, err)
		writeError(w, http.StatusBadRequest, "Invalid UUID parameter", nil)
		return
	}

	items, total, err := api.DB.NewsList(r.Context(), storage.NewsFilter{Author: userID}, page, limit)
	if err != nil {
		log.Errorf("[newsOfUserHandler][%s] NewsList() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Message:     "Get news by user successfully",
		CurrentPage: page,
		TotalPages:  numPages(total, limit),
		TotalItems:  total,
		Data:        items,
	})
	log.Debugf("[newsOfUserHandler][%s] response sent to: %v", sID, r.RemoteAddr)
}

func (api *API) searchNewsHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))
	page, limit := pageParams(r)

	// An empty keyword matches everything.
	keyword := r.URL.Query().Get("keyword")

	items, total, err := api.DB.NewsList(r.Context(), storage.NewsFilter{TitleContains: keyword}, page, limit)
	if err != nil {
		log.Errorf("[searchNewsHandler][%s] NewsList() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Message:     "Search news successfully",
		CurrentPage: page,
		TotalPages:  numPages(total, limit),
		TotalItems:  total,
		Data:        items,
	})
	log.Debugf("[searchNewsHandler][%s] response sent to: %v", sID, r.RemoteAddr)
}

func (api *API) newsDetailedHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		log.Debugf("[newsDetailedHandler][%s] failed to parse news ID: %v", sID, err)
		writeError(w, http.StatusBadRequest, "Invalid UUID parameter", nil)
		return
	}

	detail, err := api.DB.NewsDetailed(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNewsNotFound) {
			log.Debugf("[newsDetailedHandler][%s] news %v not found", sID, id)
			writeError(w, http.StatusNotFound, "News not found.", nil)
			return
		}
		log.Errorf("[newsDetailedHandler][%s] news ID:%v: %v", sID, id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Message: "Get news successfully", Data: detail})
	log.Debugf("[newsDetailedHandler][%s] response sent to: %v", sID, r.RemoteAddr)
}

func (api *API) createNewsHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	user, ok := identity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized. Please log in.", nil)
		return
	}

	var body struct {
		Title     string `json:"title"`
		Content   string `json:"content"`
		Thumbnail string `json:"thumbnail"`
		Category  string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Debugf("[createNewsHandler][%s] failed to decode request body: %v", sID, err)
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	defer r.Body.Close()

	news := storage.News{
		Title:     body.Title,
		Content:   body.Content,
		Thumbnail: body.Thumbnail,
		Category:  body.Category,
		Author:    user.ID,
	}
	if err := storage.ValidateNews(news); err != nil {
		log.Debugf("[createNewsHandler][%s] invalid news: %v", sID, err)
		writeError(w, http.StatusBadRequest, "Missing required fields.", nil)
		return
	}

	created, err := api.DB.AddNews(r.Context(), news)
	if err != nil {
		log.Errorf("[createNewsHandler][%s] AddNews() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	writeJSON(w, http.StatusCreated, newsResponse{Message: "News created successfully.", News: created})
	log.Debugf("[createNewsHandler][%s] news %v created by %v", sID, created.ID, user.ID)
}

func (api *API) updateNewsHandler(w http.ResponseWriter, r *http.Request) {
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

	var upd storage.NewsUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		log.Debugf("[updateNewsHandler][%s] failed to decode request body: %v", sID, err)
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	defer r.Body.Close()

	if upd.Empty() {
		writeError(w, http.StatusBadRequest, "No updatable fields provided.", nil)
		return
	}

	news, err := api.DB.News(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNewsNotFound) {
			writeError(w, http.StatusNotFound, "News not found.", nil)
			return
		}
		log.Errorf("[updateNewsHandler][%s] News() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	if news.Author != user.ID {
		log.Debugf("[updateNewsHandler][%s] user %v is not the author of news %v", sID, user.ID, id)
		writeError(w, http.StatusForbidden, "You are not allowed to update this news.", nil)
		return
	}

	updated, err := api.DB.UpdateNews(r.Context(), id, upd)
	if err != nil {
		log.Errorf("[updateNewsHandler][%s] UpdateNews() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Message: "Updated news successfully", Data: updated})
	log.Debugf("[updateNewsHandler][%s] news %v updated by %v", sID, id, user.ID)
}

func (api *API) increaseViewHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid UUID parameter", nil)
		return
	}

	views, err := api.DB.IncreaseViews(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNewsNotFound) {
			writeError(w, http.StatusNotFound, "News not found", nil)
			return
		}
		log.Errorf("[increaseViewHandler][%s] IncreaseViews() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	writeJSON(w, http.StatusOK, viewsResponse{Message: "View count increased", Views: views})
	log.Debugf("[increaseViewHandler][%s] news %v views now %d", sID, id, views)
}

func (api *API) deleteNewsHandler(w http.ResponseWriter, r *http.Request) {
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

	news, err := api.DB.News(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNewsNotFound) {
			writeError(w, http.StatusNotFound, "News not found.", nil)
			return
		}
		log.Errorf("[deleteNewsHandler][%s] News() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	if news.Author != user.ID {
		log.Debugf("[deleteNewsHandler][%s] user %v is not the author of news %v", sID, user.ID, id)
		writeError(w, http.StatusForbidden, "You are not allowed to delete this news.", nil)
		return
	}

	if err := api.DB.DeleteNews(r.Context(), id); err != nil {
		log.Errorf("[deleteNewsHandler][%s] DeleteNews() returned error: %v", sID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Message: "News deleted successfully."})
	log.Debugf("[deleteNewsHandler][%s] news %v deleted by %v", sID, id, user.ID)
}
