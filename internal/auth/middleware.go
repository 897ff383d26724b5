package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/content-platform/internal/domain"
	"github.com/spec-kit/content-platform/internal/repository"
	apperrors "github.com/spec-kit/content-platform/pkg/util"
)

const (
	identityKey   = "auth_identity"
	ownedStoryKey = "auth_owned_story"
)

// Middleware is the single gate through which caller identity is
// established; no handler parses tokens itself.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs the authentication gate.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Require rejects requests without a valid bearer token. A missing or
// malformed header is an authentication failure (401); a header that is
// present but fails verification is forbidden (403).
func (m *Middleware) Require(c *fiber.Ctx) error {
	identity, err := m.extract(c)
	if err != nil {
		return err
	}
	if identity == nil {
		return apperrors.NewUnauthenticated("missing authorization header")
	}
	c.Locals(identityKey, *identity)
	return c.Next()
}

// Optional attaches an identity when a valid token is present and lets
// anonymous requests continue. Used on public read routes where owners
// see their own drafts.
func (m *Middleware) Optional(c *fiber.Ctx) error {
	identity, err := m.extract(c)
	if err != nil {
		return err
	}
	if identity != nil {
		c.Locals(identityKey, *identity)
	}
	return c.Next()
}

func (m *Middleware) extract(c *fiber.Ctx) (*Identity, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewUnauthenticated("invalid authorization header")
	}

	identity, err := m.tokens.Verify(parts[1])
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, apperrors.NewForbidden("token expired")
		}
		return nil, apperrors.NewForbidden("invalid token")
	}
	return &identity, nil
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return Identity{}, false
	}
	identity, ok := val.(Identity)
	return identity, ok
}

// StoryOwnership loads the story addressed by the :id route parameter
// and confirms the authenticated identity owns it. Runs strictly after
// Require.
type StoryOwnership struct {
	stories repository.StoryRepository
}

// NewStoryOwnership constructs the ownership validator.
func NewStoryOwnership(stories repository.StoryRepository) *StoryOwnership {
	return &StoryOwnership{stories: stories}
}

// Handle validates ownership and stashes the loaded story for the
// downstream handler. A story owned by someone else yields the same
// NOT_FOUND as a story that does not exist.
func (o *StoryOwnership) Handle(c *fiber.Ctx) error {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperrors.NewNotFound("story", nil)
	}

	story, err := o.stories.GetByID(c.Context(), int64(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("story", nil)
		}
		return apperrors.MapStoreError(err, "story")
	}
	if story.AuthorID != identity.SubjectID {
		return apperrors.NewNotFound("story", nil)
	}

	c.Locals(ownedStoryKey, story)
	return c.Next()
}

// OwnedStoryFromContext retrieves the story loaded by StoryOwnership,
// saving handlers a duplicate fetch.
func OwnedStoryFromContext(c *fiber.Ctx) (*domain.Story, bool) {
	val := c.Locals(ownedStoryKey)
	if val == nil {
		return nil, false
	}
	story, ok := val.(*domain.Story)
	return story, ok
}
