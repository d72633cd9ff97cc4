package controller

import (
	"placement-engine-be/internal/dto"
	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/pkg/serverutils"
	"placement-engine-be/internal/service"
	"placement-engine-be/pkg/events"

	"github.com/gofiber/fiber/v2"
)

// IOpsController is the operator surface: inspecting and replaying domain events and reading
// derived application status.
type IOpsController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	GetDomainEvent(ctx *fiber.Ctx) error
	ReplayDomainEvent(ctx *fiber.Ctx) error
	GetApplicationStatus(ctx *fiber.Ctx) error
	GetApplicationEvents(ctx *fiber.Ctx) error
}

type opsController struct {
	domainEvents service.IDomainEventService
	applications service.IApplicationService
}

func NewOpsController(domainEvents service.IDomainEventService, applications service.IApplicationService) IOpsController {
	return &opsController{domainEvents: domainEvents, applications: applications}
}

func (c *opsController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/ops")
	h.Use(auth)
	h.Get("/domain-events/:id", c.GetDomainEvent)
	h.Post("/domain-events/:id/replay", c.ReplayDomainEvent)
	h.Get("/applications/:id/status", c.GetApplicationStatus)
	h.Get("/applications/:id/domain-events", c.GetApplicationEvents)
}

func (c *opsController) GetDomainEvent(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	expected := events.Type(ctx.Query("type"))
	if expected != "" && !events.Known(expected) {
		v := apperror.NewValidationErrors()
		v.Add("$.type", "isInvalid")
		return v.Err()
	}

	res, err := c.domainEvents.Get(ctx.Context(), id, expected)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get domain event", res))
}

// ReplayDomainEvent is restricted to workflow managers.
func (c *opsController) ReplayDomainEvent(ctx *fiber.Ctx) error {
	actor, ok := serverutils.ActorFrom(ctx)
	if !ok || !actor.HasRole(entity.UserRoleWorkflowManager) {
		return apperror.Unauthorised("replaying domain events requires the workflow manager role")
	}

	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.domainEvents.Replay(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success replay domain event", nil))
}

func (c *opsController) GetApplicationStatus(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	st, err := c.applications.GetStatus(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get application status", dto.ApplicationStatusResponse{
		ApplicationId: id,
		Status:        st,
	}))
}

func (c *opsController) GetApplicationEvents(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.domainEvents.ListForApplication(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get application domain events", dto.ApplicationEventsResponse{
		ApplicationId: id,
		Events:        res,
	}))
}
