package handlers

import (
	"time"

	"github.com/gorilla/securecookie"
	"github.com/valyala/fasthttp"
)

const sessionCookieName = "quiz-widget"

// SessionCookies guarda el ID del widget en una cookie firmada y cifrada
type SessionCookies struct {
	codec *securecookie.SecureCookie
	ttl   time.Duration
}

// NewSessionCookies blockKey puede ser nil (solo firma) o de 16, 24 o 32 bytes
func NewSessionCookies(hashKey, blockKey []byte, ttl time.Duration) *SessionCookies {
	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(int(ttl.Seconds()))
	return &SessionCookies{
		codec: codec,
		ttl:   ttl,
	}
}

// Read devuelve el ID del widget de la sesión, si la cookie es válida
func (c *SessionCookies) Read(ctx *fasthttp.RequestCtx) (string, bool) {
	raw := ctx.Request.Header.Cookie(sessionCookieName)
	if len(raw) == 0 {
		return "", false
	}

	var id string
	if err := c.codec.Decode(sessionCookieName, string(raw), &id); err != nil {
		return "", false
	}
	return id, id != ""
}

// Write asocia el widget a la sesión del navegador
func (c *SessionCookies) Write(ctx *fasthttp.RequestCtx, id string) error {
	encoded, err := c.codec.Encode(sessionCookieName, id)
	if err != nil {
		return err
	}

	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)

	cookie.SetKey(sessionCookieName)
	cookie.SetValue(encoded)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	cookie.SetMaxAge(int(c.ttl.Seconds()))
	ctx.Response.Header.SetCookie(cookie)
	return nil
}

// Clear borra la cookie de sesión
func (c *SessionCookies) Clear(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.DelClientCookie(sessionCookieName)
}
