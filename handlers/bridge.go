package handlers

import (
	"bytes"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"

	"vitebridge/pkg/bridgelib"
)

// Bridge adapts the core pipeline to fiber. Requests the pipeline
// leaves unhandled fall through to the next handler.
func Bridge(p *bridgelib.Proxy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := make(http.Header)
		c.Request().Header.VisitAll(func(key, value []byte) {
			header.Add(string(key), string(value))
		})

		req := bridgelib.Request{
			Path:   c.OriginalURL(),
			Method: c.Method(),
			Header: header,
			Body:   bytes.NewReader(c.Body()),
		}

		handled, err := p.Handle(c.UserContext(), req, &fiberResponse{c: c})
		if err != nil {
			return err
		}
		if !handled {
			return c.Next()
		}
		return nil
	}
}

// AssetHost forwards everything the bridge left alone to the asset dev
// server, preserving path and query.
func AssetHost(target string) fiber.Handler {
	base := bridgelib.StripTrailingSlash(target)
	return func(c *fiber.Ctx) error {
		return proxy.Do(c, base+c.OriginalURL())
	}
}

// fiberResponse exposes a fiber context as the dispatcher's response
// surface. AddHeader appends, so multi-valued headers keep every value.
type fiberResponse struct {
	c *fiber.Ctx
}

func (r *fiberResponse) AddHeader(key, value string) {
	r.c.Response().Header.Add(key, value)
}

func (r *fiberResponse) WriteResponse(status int, contentType string, body []byte) error {
	if contentType != "" {
		r.c.Response().Header.SetContentType(contentType)
	}
	return r.c.Status(status).Send(body)
}
