package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-directory/internal/application"
	"github.com/oksasatya/user-directory/internal/domain/entity"
	repo "github.com/oksasatya/user-directory/internal/domain/repository"
	"github.com/oksasatya/user-directory/pkg/response"
	"github.com/oksasatya/user-directory/pkg/validation"
)

type UserHandler struct {
	Store  repo.UserRepository
	Views  *application.Service
	Logger *logrus.Logger
}

func NewUserHandler(store repo.UserRepository, views *application.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Store: store, Views: views, Logger: logger}
}

type createUserRequest struct {
	Name         string  `json:"name" binding:"required"`
	Email        string  `json:"email" binding:"required"`
	Phone        string  `json:"phone" binding:"required"`
	DateOfBirth  string  `json:"date_of_birth" binding:"required"`
	ProfileImage *string `json:"profile_image"`
}

type updateUserRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	DateOfBirth  *string `json:"date_of_birth"`
	ProfileImage *string `json:"profile_image"`
	// Accepted for wire compatibility with the UI; edges change only
	// through the follow/unfollow endpoints.
	Following []string `json:"following"`
}

func (h *UserHandler) Index(c *gin.Context) {
	response.Message(c, http.StatusOK, "User Directory API")
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, validation.Message(err))
		return
	}

	u := &entity.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		DateOfBirth:  req.DateOfBirth,
		ProfileImage: req.ProfileImage,
	}
	if err := h.Store.Create(c.Request.Context(), u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			response.Detail(c, http.StatusBadRequest, "Email already exists")
			return
		}
		h.Logger.WithError(err).Error("create user failed")
		response.Detail(c, http.StatusInternalServerError, "Error creating user")
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Store.List(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list users failed")
		response.Detail(c, http.StatusInternalServerError, "Error fetching users")
		return
	}

	views, err := h.Views.ProfileViews(c.Request.Context(), users)
	if err != nil {
		h.Logger.WithError(err).Error("compose profile views failed")
		response.Detail(c, http.StatusInternalServerError, "Error processing users data")
		return
	}
	if views == nil {
		views = []*application.ProfileView{}
	}
	c.JSON(http.StatusOK, views)
}

func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			response.Detail(c, http.StatusNotFound, "User not found")
			return
		}
		h.Logger.WithError(err).Error("get user failed")
		response.Detail(c, http.StatusInternalServerError, "Error fetching user")
		return
	}

	view, err := h.Views.ProfileView(c.Request.Context(), u)
	if err != nil {
		h.Logger.WithError(err).Error("compose profile view failed")
		response.Detail(c, http.StatusInternalServerError, "Error processing user data")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, validation.Message(err))
		return
	}

	upd := repo.UserUpdate{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		DateOfBirth:  req.DateOfBirth,
		ProfileImage: req.ProfileImage,
	}
	u, err := h.Store.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			response.Detail(c, http.StatusNotFound, "User not found")
		case errors.Is(err, repo.ErrDuplicateEmail):
			response.Detail(c, http.StatusBadRequest, "Email already exists")
		default:
			h.Logger.WithError(err).Error("update user failed")
			response.Detail(c, http.StatusInternalServerError, "Error updating user")
		}
		return
	}

	view, err := h.Views.ProfileView(c.Request.Context(), u)
	if err != nil {
		h.Logger.WithError(err).Error("compose profile view failed")
		response.Detail(c, http.StatusInternalServerError, "Error processing user data")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			response.Detail(c, http.StatusNotFound, "User not found")
			return
		}
		h.Logger.WithError(err).Error("delete user failed")
		response.Detail(c, http.StatusInternalServerError, "Error deleting user")
		return
	}
	response.Message(c, http.StatusOK, "User deleted successfully")
}

func (h *UserHandler) Follow(c *gin.Context) {
	err := h.Store.Follow(c.Request.Context(), c.Param("id"), c.Param("target_id"))
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrSelfFollow):
			response.Detail(c, http.StatusBadRequest, "Cannot follow yourself")
		case errors.Is(err, repo.ErrNotFound):
			response.Detail(c, http.StatusNotFound, "User not found")
		case errors.Is(err, repo.ErrAlreadyFollowing):
			response.Detail(c, http.StatusBadRequest, "Already following this user")
		default:
			h.Logger.WithError(err).Error("follow failed")
			response.Detail(c, http.StatusInternalServerError, "Error following user")
		}
		return
	}
	response.Message(c, http.StatusOK, "Successfully followed user")
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	if err := h.Store.Unfollow(c.Request.Context(), c.Param("id"), c.Param("target_id")); err != nil {
		h.Logger.WithError(err).Error("unfollow failed")
		response.Detail(c, http.StatusInternalServerError, "Error unfollowing user")
		return
	}
	response.Message(c, http.StatusOK, "Successfully unfollowed user")
}
