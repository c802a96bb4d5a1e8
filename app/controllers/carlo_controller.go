package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/yonderlust/yonderlust/app/models"
	"github.com/yonderlust/yonderlust/app/repository"
	"github.com/yonderlust/yonderlust/internal/pkg/advisor"
	"github.com/yonderlust/yonderlust/internal/pkg/usercontext"
)

// HandleCheckCarloAccess reports whether the user may start an exchange,
// without consuming anything. The UI gates the composer on this.
func HandleCheckCarloAccess(c *fiber.Ctx) error {
	return c.JSON(quotaEngine.CheckAccess(usercontext.UserID(c)))
}

// HandleListConversations returns the user's conversations, most
// recently active first.
func HandleListConversations(c *fiber.Ctx) error {
	conversations, err := repository.GetGlobalRepositories().Conversation.ListByUser(usercontext.UserID(c))
	if err != nil {
		return jsonInternalError(c, "carlo: list conversations", err)
	}
	return c.JSON(fiber.Map{"conversations": conversations})
}

type conversationRequest struct {
	Title string `json:"title"`
}

// HandleCreateConversation opens a new conversation, untitled unless the
// client seeds a title (template starters do). Creation is free; quota is
// charged per completed exchange.
func HandleCreateConversation(c *fiber.Ctx) error {
	conv := &models.Conversation{UserID: usercontext.UserID(c)}

	if len(c.Body()) > 0 {
		var req conversationRequest
		if err := c.BodyParser(&req); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
		}
		if title := strings.TrimSpace(req.Title); title != "" {
			conv.Title = &title
		}
	}

	if err := repository.GetGlobalRepositories().Conversation.Create(conv); err != nil {
		return jsonInternalError(c, "carlo: create conversation", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"conversation": conv})
}

// HandleRenameConversation sets the title of an owned conversation.
func HandleRenameConversation(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)
	repos := repository.GetGlobalRepositories()

	var req conversationRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Title is required")
	}

	conv, err := repos.Conversation.GetByIDAndUser(c.Params("id"), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Conversation not found")
		}
		return jsonInternalError(c, "carlo: load conversation", err)
	}

	if err := repos.Conversation.UpdateTitle(conv.ID, title); err != nil {
		return jsonInternalError(c, "carlo: rename conversation", err)
	}
	conv.Title = &title
	return c.JSON(fiber.Map{"conversation": conv})
}

// HandleGetConversation returns one owned conversation with its messages
// in ledger order.
func HandleGetConversation(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)
	conversationID := c.Params("id")
	repos := repository.GetGlobalRepositories()

	conv, err := repos.Conversation.GetByIDAndUser(conversationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Conversation not found")
		}
		return jsonInternalError(c, "carlo: load conversation", err)
	}

	messages, err := repos.Conversation.ListMessages(conv.ID)
	if err != nil {
		return jsonInternalError(c, "carlo: load messages", err)
	}

	return c.JSON(fiber.Map{"conversation": conv, "messages": messages})
}

// HandleDeleteConversation deletes an owned conversation with its
// messages.
func HandleDeleteConversation(c *fiber.Ctx) error {
	err := repository.GetGlobalRepositories().Conversation.Delete(c.Params("id"), usercontext.UserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Conversation not found")
		}
		return jsonInternalError(c, "carlo: delete conversation", err)
	}
	return c.JSON(fiber.Map{"success": true})
}

type sendMessageRequest struct {
	Message   string            `json:"message"`
	Selection advisor.Selection `json:"selection"`
}

// HandleSendMessage runs one Carlo exchange in the :id conversation.
func HandleSendMessage(c *fiber.Ctx) error {
	userID := usercontext.UserID(c)
	conversationID := c.Params("id")

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	result, err := advisorService.SendMessage(c.Context(), userID, conversationID, req.Message, req.Selection)
	if err != nil {
		var quotaErr *advisor.QuotaError
		switch {
		case errors.As(err, &quotaErr):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":     "subscription_limit_reached",
				"message":   quotaErr.Reason,
				"remaining": quotaErr.Remaining,
			})
		case errors.Is(err, advisor.ErrEmptyMessage):
			return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
		case errors.Is(err, advisor.ErrConversationNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "Conversation not found")
		default:
			return jsonInternalError(c, "carlo: send message", err)
		}
	}

	return c.JSON(result)
}
