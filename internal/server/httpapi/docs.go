package httpapi

import (
	_ "embed"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// apiDocs is the OpenAPI description rendered once, with servers pointing
// at the configured base path.
type apiDocs struct {
	yaml []byte
	json []byte
}

func loadAPIDocs(basePath string) (*apiDocs, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(openAPIDocument, &doc); err != nil {
		return nil, fmt.Errorf("openapi document: %w", err)
	}

	server := basePath
	if server == "" {
		server = "/"
	}
	doc["servers"] = []map[string]any{{"url": server}}

	y, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi yaml: %w", err)
	}
	j, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi json: %w", err)
	}
	return &apiDocs{yaml: y, json: j}, nil
}

func (d *apiDocs) register(r fiber.Router) {
	r.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(d.yaml)
	})
	r.Get("/docs/openapi.json", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(d.json)
	})
}
