package controller

import (
	"symptom-checker-be/internal/dto"
	"symptom-checker-be/internal/pkg/apperror"
	"symptom-checker-be/internal/pkg/serverutils"
	"symptom-checker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAppointmentController interface {
	RegisterRoutes(r fiber.Router)
	Analyze(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Session(ctx *fiber.Ctx) error
}

type appointmentController struct {
	service service.IAppointmentService
	auth    *serverutils.JwtAuth
	quota   serverutils.QuotaGate
}

func NewAppointmentController(
	service service.IAppointmentService,
	auth *serverutils.JwtAuth,
	quota serverutils.QuotaGate,
) IAppointmentController {
	return &appointmentController{
		service: service,
		auth:    auth,
		quota:   quota,
	}
}

func (c *appointmentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/appointment")

	limited := serverutils.RateLimitMiddleware(c.quota)
	h.Post("/analyze", c.auth.Optional, limited, c.Analyze)
	h.Post("/chatbot", c.auth.Optional, limited, c.Analyze)

	h.Get("/history", c.auth.Required, c.History)
	h.Get("/session/:id", c.auth.Required, c.Session)
}

func (c *appointmentController) Analyze(ctx *fiber.Ctx) error {
	identity := serverutils.GetIdentity(ctx)

	var req dto.AnalyzeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("userInput is required and must be a string")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if req.SessionId != "" {
		id, err := serverutils.NormalizeSessionID(req.SessionId)
		if err != nil {
			return err
		}
		req.SessionId = id
	}

	res, err := c.service.Analyze(ctx.UserContext(), identity.UserId, identity.IsGuest, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Analysis complete", res))
}

func (c *appointmentController) History(ctx *fiber.Ctx) error {
	identity := serverutils.GetIdentity(ctx)

	res, err := c.service.GetHistory(ctx.UserContext(), identity.UserId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *appointmentController) Session(ctx *fiber.Ctx) error {
	identity := serverutils.GetIdentity(ctx)

	id, err := serverutils.NormalizeSessionID(ctx.Params("id"))
	if err != nil {
		return err
	}

	res, err := c.service.GetSession(ctx.UserContext(), identity.UserId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}
