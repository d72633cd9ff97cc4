package serverutils

import (
	"placement-engine-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const actorLocal = "actor"

// JwtMiddleware accepts HS256 bearer tokens carrying a user_id claim and an optional roles list.
// The resolved actor is stored on the request. Browsers cannot set headers on a websocket
// handshake, so a token query parameter is accepted as well.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := ""
		if authHeader := ctx.Get("Authorization"); len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		} else {
			tokenStr = ctx.Query("token")
		}
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Missing token", nil))
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Invalid token", nil))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Invalid claims", nil))
		}

		userIdStr, _ := claims["user_id"].(string)
		userId, err := uuid.Parse(userIdStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Invalid claims", nil))
		}

		actor := entity.Actor{Id: userId}
		if roles, ok := claims["roles"].([]interface{}); ok {
			for _, r := range roles {
				if role, ok := r.(string); ok {
					actor.Roles = append(actor.Roles, entity.UserRole(role))
				}
			}
		}

		ctx.Locals("user_id", userIdStr)
		ctx.Locals(actorLocal, actor)
		return ctx.Next()
	}
}

// ActorFrom returns the actor stored by JwtMiddleware.
func ActorFrom(ctx *fiber.Ctx) (entity.Actor, bool) {
	actor, ok := ctx.Locals(actorLocal).(entity.Actor)
	return actor, ok
}
