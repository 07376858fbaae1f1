package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/adonese/hawiya/apperr"
	"github.com/adonese/hawiya/fields"
)

const (
	googleUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	oauthStateCookie  = "oauth_state"
)

// googleProfile is the subset of the OpenID Connect userinfo response the
// resolver cares about.
type googleProfile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleLogin starts the consent flow: mint a state nonce, remember it in a
// short-lived cookie, and send the browser to Google.
func (s *Service) GoogleLogin(c *fiber.Ctx) error {
	if s.oauth.ClientID == "" {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"code": "missing_google_client", "message": "google client id not configured"})
	}
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		MaxAge:   600,
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.Redirect(s.oauth.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback finishes the flow: verify state, swap the code for a token,
// fetch the profile, resolve it to an account, and bounce the browser back to
// the frontend with token and userId query parameters. Every failure turns
// into a redirect carrying an error indicator, never a raw error body.
func (s *Service) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return s.redirectOAuthFailure(c, "state_mismatch", nil)
	}
	code := c.Query("code")
	if code == "" {
		return s.redirectOAuthFailure(c, "missing_code", nil)
	}

	ctx := c.UserContext()
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return s.redirectOAuthFailure(c, "token_exchange_failed", err)
	}
	profile, err := s.fetchGoogleProfile(ctx, token)
	if err != nil {
		return s.redirectOAuthFailure(c, "userinfo_failed", err)
	}
	if profile.Sub == "" {
		return s.redirectOAuthFailure(c, "invalid_userinfo", errors.New("google subject missing"))
	}

	user, err := s.resolveGoogle(profile)
	if err != nil {
		return s.redirectOAuthFailure(c, "resolver_failed", err)
	}
	jwtToken, err := s.Auth.GenerateJWT(user.ID, user.IsAdmin)
	if err != nil {
		return s.redirectOAuthFailure(c, "jwt_failed", err)
	}

	query := url.Values{}
	query.Set("token", jwtToken)
	query.Set("userId", fmt.Sprint(user.ID))
	return c.Redirect(s.Config.FrontendURL+"?"+query.Encode(), http.StatusFound)
}

func (s *Service) redirectOAuthFailure(c *fiber.Ctx, reason string, err error) error {
	entry := s.Logger.WithField("code", reason)
	if err != nil {
		entry = entry.WithField("error", err.Error())
	}
	entry.Warn("google login failed")
	query := url.Values{}
	query.Set("error", reason)
	return c.Redirect(s.Config.FrontendURL+"?"+query.Encode(), http.StatusFound)
}

func (s *Service) fetchGoogleProfile(ctx context.Context, token *oauth2.Token) (googleProfile, error) {
	var profile googleProfile
	client := s.oauth.Client(ctx, token)
	client.Timeout = 10 * time.Second
	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return profile, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return profile, fmt.Errorf("google userinfo failed: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return profile, err
	}
	return profile, nil
}

// resolveGoogle maps a Google profile onto an account. The order is the whole
// point: a subject-id match always wins over an email match, so an email
// claim in a later login can never redirect an identity that is already
// linked. Lookups and writes run in one transaction; the unique indexes turn
// a concurrent link/create race into a typed conflict.
func (s *Service) resolveGoogle(profile googleProfile) (fields.User, error) {
	var user fields.User
	err := s.Db.Transaction(func(tx *gorm.DB) error {
		// already linked: idempotent re-login, nothing to write
		linked, err := fields.UserByGoogleID(profile.Sub, tx)
		if err == nil {
			user = linked
			return nil
		}
		if !fields.IsNotFound(err) {
			return err
		}

		email := strings.ToLower(strings.TrimSpace(profile.Email))
		if email != "" {
			user, err = fields.UserByEmail(email, tx)
			if err == nil {
				// an existing local (or re-registered) account shares the
				// email: link it rather than create a duplicate identity
				user.AuthProvider = fields.ProviderGoogle
				user.GoogleID = profile.Sub
				if user.HasDefaultPhoto() {
					photo := profile.Picture
					if photo == "" {
						photo = user.ProfilePhoto.URL
					}
					if photo == "" {
						photo = fields.PlaceholderPhotoURL
					}
					user.ProfilePhoto = fields.ProfilePhoto{URL: photo}
				}
				return tx.Save(&user).Error
			}
			if !fields.IsNotFound(err) {
				return err
			}
		}

		username := profile.Name
		if username == "" {
			username = "Google User"
		}
		photo := profile.Picture
		if photo == "" {
			photo = fields.PlaceholderPhotoURL
		}
		user = fields.User{
			Username:          username,
			Email:             email,
			AuthProvider:      fields.ProviderGoogle,
			GoogleID:          profile.Sub,
			IsAccountVerified: true,
			ProfilePhoto:      fields.ProfilePhoto{URL: photo},
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return user, apperr.Wrap(err, apperr.ErrConflict, "account was linked concurrently")
		}
		return user, apperr.Wrap(err, apperr.ErrStorage, "")
	}
	return user, nil
}

// isUniqueViolation reports whether err is a unique-index failure from
// sqlite. gorm's translated sentinel is checked first.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
