package server

import (
	"github.com/austinzumbro/nosql-social-api/internal/models"
	"github.com/austinzumbro/nosql-social-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Username string `json:"username" example:"ana"`
	Email    string `json:"email" example:"ana@example.com"`
}

// UpdateUserRequest is the body of PUT /api/users/{userId}. Omitted fields are left alone.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// DeleteUserResponse reports the removed user and every thought removed with it.
type DeleteUserResponse struct {
	DeletedUser         *models.User      `json:"deletedUser"`
	DeletedThoughts     []*models.Thought `json:"deletedThoughts"`
	DeletedThoughtCount int               `json:"deletedThoughtCount"`
}

// GetUsers handles GET /api/users
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200 {array} models.User
// @Failure      500 {object} models.ErrorResponse
// @Router       /users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListUsers(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return c.JSON(users)
}

// GetUser handles GET /api/users/{userId}
// @Summary      Get a user
// @Description  With expand=true the thoughts and friends sets are resolved into documents.
// @Tags         users
// @Produce      json
// @Param        userId path int true "User ID"
// @Param        expand query bool false "Resolve thoughts and friends"
// @Success      200 {object} models.User
// @Failure      400 {object} models.ErrorResponse
// @Failure      404 {object} models.ErrorResponse
// @Router       /users/{userId} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	expand, err := parseOptionalBool(c, "expand")
	if err != nil {
		return nil
	}

	if s.userService.ShouldExpand(id, expand) {
		expanded, err := s.userService.GetExpandedUser(c.UserContext(), id)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		return c.JSON(expanded)
	}

	user, err := s.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// CreateUser handles POST /api/users
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "New user"
// @Success      200 {object} models.User
// @Failure      400 {object} models.ErrorResponse
// @Router       /users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.CreateUser(c.UserContext(), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// UpdateUser handles PUT /api/users/{userId}
// @Summary      Update a user
// @Description  A new username is copied onto every thought the user owns.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        userId path int true "User ID"
// @Param        request body UpdateUserRequest true "Fields to change"
// @Success      200 {object} models.User
// @Failure      400 {object} models.ErrorResponse
// @Failure      404 {object} models.ErrorResponse
// @Router       /users/{userId} [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	var req UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateUser(c.UserContext(), id, service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/{userId}
// @Summary      Delete a user and every thought it owns
// @Tags         users
// @Produce      json
// @Param        userId path int true "User ID"
// @Success      200 {object} DeleteUserResponse
// @Failure      404 {object} models.ErrorResponse
// @Router       /users/{userId} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	res, err := s.userService.DeleteUser(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(DeleteUserResponse{
		DeletedUser:         res.User,
		DeletedThoughts:     res.Thoughts,
		DeletedThoughtCount: len(res.Thoughts),
	})
}

// AddFriend handles POST /api/users/{userId}/friends/{friendId}
// @Summary      Add a friend
// @Description  Friendship is directed: only the user's friends set changes.
// @Tags         friends
// @Produce      json
// @Param        userId path int true "User ID"
// @Param        friendId path int true "Friend user ID"
// @Success      200 {object} models.User
// @Failure      404 {object} models.ErrorResponse
// @Router       /users/{userId}/friends/{friendId} [post]
func (s *Server) AddFriend(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	friendID, err := parseID(c, "friendId")
	if err != nil {
		return nil
	}

	user, err := s.userService.AddFriend(c.UserContext(), userID, friendID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// RemoveFriend handles DELETE /api/users/{userId}/friends/{friendId}
// @Summary      Remove a friend
// @Tags         friends
// @Produce      json
// @Param        userId path int true "User ID"
// @Param        friendId path int true "Friend user ID"
// @Success      200 {object} models.User
// @Failure      404 {object} models.ErrorResponse
// @Router       /users/{userId}/friends/{friendId} [delete]
func (s *Server) RemoveFriend(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	friendID, err := parseID(c, "friendId")
	if err != nil {
		return nil
	}

	user, err := s.userService.RemoveFriend(c.UserContext(), userID, friendID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}
