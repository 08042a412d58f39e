package controller

import (
	"strings"

	"openbook-be/internal/dto"
	"openbook-be/internal/mapper"
	"openbook-be/internal/pkg/apperror"
	"openbook-be/internal/pkg/serverutils"
	"openbook-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	StartSession(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
	mapper  *mapper.ChatMapper
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{
		service: service,
		mapper:  mapper.NewChatMapper(),
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("/send", c.SendMessage)
	h.Get("/session/:sessionId", c.GetSession)
	h.Delete("/session/:sessionId", c.DeleteSession)
	h.Post("/:username/start", c.StartSession)
	h.Get("/:username/sessions", c.ListSessions)
}

func (c *chatController) StartSession(ctx *fiber.Ctx) error {
	res, err := c.service.StartSession(ctx.UserContext(), ctx.Params("username"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start session", res))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	sessionId := strings.TrimSpace(ctx.Query("sessionId"))
	if sessionId == "" {
		return apperror.Invalid("sessionId query parameter is required")
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Message = strings.TrimSpace(req.Message)

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.UserContext(), sessionId, req.Message)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *chatController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.UserContext(), ctx.Params("sessionId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	res, err := c.service.ListSessions(ctx.UserContext(), ctx.Params("username"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", c.mapper.SessionsToSummaries(res)))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	if err := c.service.DeleteSession(ctx.UserContext(), ctx.Params("sessionId")); err != nil {
		return err
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}
