package middleware

import (
	"errors"
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	log "github.com/sirupsen/logrus"
)

const (
	sessionName   = "storefront_session"
	sessionIDKey  = "sid"
	sessionUIDKey = "uid"
	sessionCtxKey = "session_id"
)

func NewCookieStore(secret string, secure bool, maxAge int) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(maxAge)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Sessions gives every page visitor a stable session id, which keys the
// cart, and restores the logged-in user.
func Sessions(store sessions.Store, resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := store.Get(c.Request, sessionName)
		if err != nil {
			log.Debugf("discarding unreadable session cookie: %v", err)
		}

		dirty := false
		sid, _ := sess.Values[sessionIDKey].(string)
		if sid == "" {
			sid = uuid.NewString()
			sess.Values[sessionIDKey] = sid
			dirty = true
		}

		if uid, ok := sess.Values[sessionUIDKey].(uint64); ok && uid != 0 {
			actor, err := resolver.ActorFor(c.Request.Context(), uid)
			switch {
			case err == nil:
				SetActor(c, actor)
			case errors.Is(err, domain.ErrAuthRequired):
				delete(sess.Values, sessionUIDKey)
				dirty = true
			default:
				log.Errorf("load session user %d: %v", uid, err)
			}
		}

		if dirty {
			if err := sess.Save(c.Request, c.Writer); err != nil {
				log.Errorf("save session: %v", err)
			}
		}

		c.Set(sessionCtxKey, sid)
		c.Set(sessionName, sess)
		c.Next()
	}
}

func SessionID(c *gin.Context) string {
	return c.GetString(sessionCtxKey)
}

// Login binds the user to a fresh session id and returns the previous one so
// the caller can carry the cart over.
func Login(c *gin.Context, u *domain.User) (string, error) {
	sess, err := current(c)
	if err != nil {
		return "", err
	}
	prev := SessionID(c)
	sid := uuid.NewString()
	sess.Values[sessionIDKey] = sid
	sess.Values[sessionUIDKey] = u.ID
	c.Set(sessionCtxKey, sid)
	SetActor(c, u.Actor())
	return prev, sess.Save(c.Request, c.Writer)
}

// Logout forgets the user and starts a fresh session id, which empties the cart.
func Logout(c *gin.Context) error {
	sess, err := current(c)
	if err != nil {
		return err
	}
	delete(sess.Values, sessionUIDKey)
	sid := uuid.NewString()
	sess.Values[sessionIDKey] = sid
	c.Set(sessionCtxKey, sid)
	SetActor(c, domain.Actor{})
	return sess.Save(c.Request, c.Writer)
}

func current(c *gin.Context) (*sessions.Session, error) {
	v, ok := c.Get(sessionName)
	if !ok {
		return nil, errors.New("sessions middleware not installed")
	}
	return v.(*sessions.Session), nil
}
