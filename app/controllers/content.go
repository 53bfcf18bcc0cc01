package controllers

import (
	"strconv"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/repositories"
	"github.com/sparkcrackers/storefront/pkg/ctx"
	"github.com/sparkcrackers/storefront/pkg/logger"
)

type ContentController struct {
	content *repositories.ContentRepository
}

func NewContentController(content *repositories.ContentRepository) *ContentController {
	return &ContentController{content: content}
}

// Index handles GET /content.
func (cc *ContentController) Index(c *ctx.Context) {
	sections, err := cc.content.All(c.Context())
	if err != nil {
		c.ServerError(err)
		return
	}
	c.OK(sections)
}

// Update handles PUT /content with an array of sections keyed by contentId
// and answers with every stored section.
func (cc *ContentController) Update(c *ctx.Context) {
	var sections []models.ContentSection
	if !c.BindJSON(&sections) {
		return
	}

	errs := map[string]string{}
	for i, s := range sections {
		key := strconv.Itoa(i)
		if s.ContentID == "" {
			errs[key+".contentId"] = "The contentId field is required."
		}
		if s.Type != "" && !s.Type.Valid() {
			errs[key+".type"] = "The selected type is invalid."
		}
	}
	if len(errs) > 0 {
		c.Invalid(errs)
		return
	}

	if err := cc.content.Upsert(c.Context(), sections); err != nil {
		c.ServerError(err)
		return
	}
	logger.WithCtx(c.Context()).Info("content: sections updated", "count", len(sections))
	cc.Index(c)
}
