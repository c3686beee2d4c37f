package serverutils

import (
	"strings"
	"time"

	"symptom-checker-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/golang-jwt/jwt/v5"
)

const (
	localsUserId   = "user_id"
	localsIdentity = "identity"
	guestMarkerKey = "guest"
)

// Identity is the verified caller of a request. Guests carry the id of their
// cookie session instead of a user id.
type Identity struct {
	UserId   string
	IsGuest  bool
	GuestKey string
}

type JwtAuth struct {
	secret   []byte
	sessions *session.Store
}

func NewJwtAuth(secret string, sessions *session.Store) *JwtAuth {
	return &JwtAuth{secret: []byte(secret), sessions: sessions}
}

// IssueToken signs an HS256 token carrying the user_id claim.
func (a *JwtAuth) IssueToken(userId string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})
	return token.SignedString(a.secret)
}

func (a *JwtAuth) parse(authHeader string) (string, error) {
	tokenStr := strings.TrimSpace(authHeader[len("Bearer "):])

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", apperror.Unauthorized("Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperror.Unauthorized("Invalid claims")
	}
	userId, ok := claims["user_id"].(string)
	if !ok || userId == "" {
		return "", apperror.Unauthorized("Invalid claims")
	}
	return userId, nil
}

func hasBearer(authHeader string) bool {
	return len(authHeader) >= 7 && authHeader[:7] == "Bearer "
}

// Required rejects requests without a valid bearer token.
func (a *JwtAuth) Required(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if !hasBearer(authHeader) {
		return apperror.Unauthorized("Missing token")
	}

	userId, err := a.parse(authHeader)
	if err != nil {
		return err
	}

	ctx.Locals(localsUserId, userId)
	ctx.Locals(localsIdentity, Identity{UserId: userId})
	return ctx.Next()
}

// Optional admits callers without a token as guests keyed by their cookie
// session. A token that is present but invalid is still rejected.
func (a *JwtAuth) Optional(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if hasBearer(authHeader) {
		return a.Required(ctx)
	}

	sess, err := a.sessions.Get(ctx)
	if err != nil {
		return apperror.Internal("failed to load guest session", err)
	}
	guestKey := sess.ID()
	sess.Set(guestMarkerKey, true)
	if err := sess.Save(); err != nil {
		return apperror.Internal("failed to save guest session", err)
	}

	ctx.Locals(localsIdentity, Identity{IsGuest: true, GuestKey: guestKey})
	return ctx.Next()
}

func GetIdentity(ctx *fiber.Ctx) Identity {
	if id, ok := ctx.Locals(localsIdentity).(Identity); ok {
		return id
	}
	return Identity{}
}
