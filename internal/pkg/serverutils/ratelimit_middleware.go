package serverutils

import (
	"context"

	"symptom-checker-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// QuotaGate admits calls into the analysis endpoint.
type QuotaGate interface {
	AdmitGuest(ctx context.Context, guestKey string) error
	// Reserve counts one request and returns the day it was counted on.
	Reserve(ctx context.Context, userId string) (string, error)
	Release(ctx context.Context, userId string, day string)
}

// RateLimitMiddleware must run after the JWT middleware. A reserved request
// is handed back when the handler fails.
func RateLimitMiddleware(gate QuotaGate) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		identity := GetIdentity(ctx)

		if identity.IsGuest {
			if err := gate.AdmitGuest(ctx.UserContext(), identity.GuestKey); err != nil {
				return err
			}
			return ctx.Next()
		}

		if identity.UserId == "" {
			return apperror.Unauthorized("Missing identity")
		}

		day, err := gate.Reserve(ctx.UserContext(), identity.UserId)
		if err != nil {
			return err
		}
		release := func() {
			gate.Release(context.WithoutCancel(ctx.UserContext()), identity.UserId, day)
		}

		// recover.New sits outside this handler; give the slot back before
		// the panic leaves it.
		defer func() {
			if r := recover(); r != nil {
				release()
				panic(r)
			}
		}()

		err = ctx.Next()
		if err != nil || ctx.Response().StatusCode() >= fiber.StatusBadRequest {
			release()
		}
		return err
	}
}
