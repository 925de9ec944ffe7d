package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"policy-intel-be/internal/dto"
	"policy-intel-be/internal/pkg/serverutils"
	"policy-intel-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateConversation(ctx *fiber.Ctx) error
	ListConversations(ctx *fiber.Ctx) error
	DeleteConversation(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	StreamMessage(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("conversations", c.CreateConversation)
	h.Get("conversations", c.ListConversations)
	h.Delete("conversations/:id", c.DeleteConversation)
	h.Get("conversations/:id/messages", c.ListMessages)
	h.Post("conversations/:id/messages", c.SendMessage)
	h.Post("conversations/:id/messages/stream", c.StreamMessage)
}

func (c *chatController) CreateConversation(ctx *fiber.Ctx) error {
	tenantIdStr := ctx.Locals("tenant_id").(string)
	tenantId, _ := uuid.Parse(tenantIdStr)

	var req dto.CreateConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	res, err := c.chatService.CreateConversation(ctx.Context(), tenantId, &req)
	if err != nil {
		if errors.Is(err, service.ErrScopeNotOwned) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create conversation", res))
}

func (c *chatController) ListConversations(ctx *fiber.Ctx) error {
	tenantIdStr := ctx.Locals("tenant_id").(string)
	tenantId, _ := uuid.Parse(tenantIdStr)

	res, err := c.chatService.ListConversations(ctx.Context(), tenantId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list conversations", res))
}

func (c *chatController) DeleteConversation(ctx *fiber.Ctx) error {
	tenantIdStr := ctx.Locals("tenant_id").(string)
	tenantId, _ := uuid.Parse(tenantIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}

	if err := c.chatService.DeleteConversation(ctx.Context(), tenantId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete conversation", nil))
}

func (c *chatController) ListMessages(ctx *fiber.Ctx) error {
	tenantIdStr := ctx.Locals("tenant_id").(string)
	tenantId, _ := uuid.Parse(tenantIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}

	res, err := c.chatService.ListMessages(ctx.Context(), tenantId, id)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "conversation not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list messages", res))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	tenantIdStr := ctx.Locals("tenant_id").(string)
	tenantId, _ := uuid.Parse(tenantIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendMessage(ctx.Context(), tenantId, id, &req)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "conversation not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

// StreamMessage answers over server-sent events. Each frame is one
// dto.StreamChunk; the stream ends after a "done" or "error" frame.
func (c *chatController) StreamMessage(ctx *fiber.Ctx) error {
	tenantIdStr := ctx.Locals("tenant_id").(string)
	tenantId, _ := uuid.Parse(tenantIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The stream must start before fiber writes headers, so the conversation
	// lookup happens here and streaming errors travel inside the stream.
	streamCtx, cancel := context.WithCancel(context.Background())

	chunks, err := c.chatService.StreamMessage(streamCtx, tenantId, id, &req)
	if err != nil {
		cancel()
		return err
	}
	if chunks == nil {
		cancel()
		return fiber.NewError(fiber.StatusNotFound, "conversation not found")
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		for chunk := range chunks {
			payload, err := json.Marshal(chunk)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				// Client went away; cancel discards the partial turn.
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}
