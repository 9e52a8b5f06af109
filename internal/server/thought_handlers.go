package server

import (
	"strings"

	"github.com/austinzumbro/nosql-social-api/internal/models"
	"github.com/austinzumbro/nosql-social-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateThoughtRequest is the body of POST /api/thoughts. The owner is userId
// when given, else the user named username.
type CreateThoughtRequest struct {
	ThoughtText string `json:"thoughtText" example:"hello"`
	Username    string `json:"username" example:"ana"`
	UserID      *uint  `json:"userId,omitempty"`
}

// UpdateThoughtRequest is the body of PUT /api/thoughts/{thoughtId}.
type UpdateThoughtRequest struct {
	ThoughtText *string `json:"thoughtText,omitempty"`
	Username    *string `json:"username,omitempty"`
	UserID      *uint   `json:"userId,omitempty"`
}

// AddReactionRequest is the body of POST /api/thoughts/{thoughtId}/reactions.
type AddReactionRequest struct {
	ReactionBody string `json:"reactionBody" example:"lol"`
	Username     string `json:"username" example:"bea"`
}

// CreateThoughtResponse carries the new thought and its owner (null for orphans).
type CreateThoughtResponse struct {
	Thought *models.Thought `json:"thought"`
	User    *models.User    `json:"user"`
}

// DeleteThoughtResponse carries the removed thought and its owner after the unlink.
type DeleteThoughtResponse struct {
	DeletedThought *models.Thought `json:"deletedThought"`
	User           *models.User    `json:"user"`
}

// GetThoughts handles GET /api/thoughts
// @Summary      List thoughts
// @Tags         thoughts
// @Produce      json
// @Success      200 {array} models.Thought
// @Failure      500 {object} models.ErrorResponse
// @Router       /thoughts [get]
func (s *Server) GetThoughts(c *fiber.Ctx) error {
	thoughts, err := s.thoughtService.ListThoughts(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if thoughts == nil {
		thoughts = []*models.Thought{}
	}
	return c.JSON(thoughts)
}

// GetThought handles GET /api/thoughts/{thoughtId}
// @Summary      Get a thought
// @Tags         thoughts
// @Produce      json
// @Param        thoughtId path int true "Thought ID"
// @Success      200 {object} models.Thought
// @Failure      404 {object} models.ErrorResponse
// @Router       /thoughts/{thoughtId} [get]
func (s *Server) GetThought(c *fiber.Ctx) error {
	id, err := parseID(c, "thoughtId")
	if err != nil {
		return nil
	}

	thought, err := s.thoughtService.GetThought(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(thought)
}

// CreateThought handles POST /api/thoughts
// @Summary      Create a thought
// @Description  The thought is linked to its owner in the same unit of work. Unresolvable owners leave it orphaned.
// @Tags         thoughts
// @Accept       json
// @Produce      json
// @Param        request body CreateThoughtRequest true "New thought"
// @Success      200 {object} CreateThoughtResponse
// @Failure      400 {object} models.ErrorResponse
// @Router       /thoughts [post]
func (s *Server) CreateThought(c *fiber.Ctx) error {
	var req CreateThoughtRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.thoughtService.CreateThought(c.UserContext(), service.CreateThoughtInput{
		ThoughtText: req.ThoughtText,
		Username:    req.Username,
		UserID:      req.UserID,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(CreateThoughtResponse{Thought: res.Thought, User: res.User})
}

// UpdateThought handles PUT /api/thoughts/{thoughtId}
// @Summary      Update a thought
// @Tags         thoughts
// @Accept       json
// @Produce      json
// @Param        thoughtId path int true "Thought ID"
// @Param        request body UpdateThoughtRequest true "Fields to change"
// @Success      200 {object} models.Thought
// @Failure      400 {object} models.ErrorResponse
// @Failure      404 {object} models.ErrorResponse
// @Router       /thoughts/{thoughtId} [put]
func (s *Server) UpdateThought(c *fiber.Ctx) error {
	id, err := parseID(c, "thoughtId")
	if err != nil {
		return nil
	}
	var req UpdateThoughtRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	thought, err := s.thoughtService.UpdateThought(c.UserContext(), id, service.UpdateThoughtInput{
		ThoughtText: req.ThoughtText,
		Username:    req.Username,
		UserID:      req.UserID,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(thought)
}

// DeleteThought handles DELETE /api/thoughts/{thoughtId}
// @Summary      Delete a thought
// @Tags         thoughts
// @Produce      json
// @Param        thoughtId path int true "Thought ID"
// @Success      200 {object} DeleteThoughtResponse
// @Failure      404 {object} models.ErrorResponse
// @Router       /thoughts/{thoughtId} [delete]
func (s *Server) DeleteThought(c *fiber.Ctx) error {
	id, err := parseID(c, "thoughtId")
	if err != nil {
		return nil
	}

	res, err := s.thoughtService.DeleteThought(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(DeleteThoughtResponse{DeletedThought: res.Thought, User: res.User})
}

// AddReaction handles POST /api/thoughts/{thoughtId}/reactions
// @Summary      Add a reaction
// @Description  A reaction with the same body and username as an existing one is not added again.
// @Tags         reactions
// @Accept       json
// @Produce      json
// @Param        thoughtId path int true "Thought ID"
// @Param        request body AddReactionRequest true "Reaction"
// @Success      200 {object} models.Thought
// @Failure      400 {object} models.ErrorResponse
// @Failure      404 {object} models.ErrorResponse
// @Router       /thoughts/{thoughtId}/reactions [post]
func (s *Server) AddReaction(c *fiber.Ctx) error {
	id, err := parseID(c, "thoughtId")
	if err != nil {
		return nil
	}
	var req AddReactionRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	thought, err := s.thoughtService.AddReaction(c.UserContext(), id, service.AddReactionInput{
		ReactionBody: req.ReactionBody,
		Username:     req.Username,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(thought)
}

// RemoveReaction handles DELETE /api/thoughts/{thoughtId}/reactions/{reactionId}
// @Summary      Remove a reaction
// @Tags         reactions
// @Produce      json
// @Param        thoughtId path int true "Thought ID"
// @Param        reactionId path string true "Reaction ID"
// @Success      200 {object} models.Thought
// @Failure      404 {object} models.ErrorResponse
// @Router       /thoughts/{thoughtId}/reactions/{reactionId} [delete]
func (s *Server) RemoveReaction(c *fiber.Ctx) error {
	id, err := parseID(c, "thoughtId")
	if err != nil {
		return nil
	}
	reactionID := strings.TrimSpace(c.Params("reactionId"))
	if reactionID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid reaction ID"))
	}

	thought, err := s.thoughtService.RemoveReaction(c.UserContext(), id, reactionID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(thought)
}
