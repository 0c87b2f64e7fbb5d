package handler

import (
	"context"
	"net/url"
	"strconv"

	"usergate/internal/users/models"
	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/platform/middleware/auth"
	"usergate/pkg/platform/pipeline"
	"usergate/pkg/requestcontext"
)

// Pagination bounds of the listing endpoint.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const msgInvalidPage = "Página inválida."

func (h *Handler) handleList(ctx context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	actor, err := auth.RequireIdentity(req)
	if err != nil {
		return nil, err
	}

	page, size, err := pagination(req.Query)
	if err != nil {
		return nil, err
	}
	offset := (page - 1) * size

	users, total, err := h.users.List(ctx, actor, offset, size)
	if err != nil {
		return nil, err
	}
	if page > 1 && offset >= total {
		return nil, dErrors.New(dErrors.CodeNotFound, msgInvalidPage)
	}

	resp := models.Page{
		Count:   total,
		Results: models.ToResponses(users),
	}
	if offset+len(users) < total {
		resp.Next = pageLink(req, page+1)
	}
	if page > 1 {
		resp.Previous = pageLink(req, page-1)
	}
	return pipeline.OK(resp), nil
}

// pagination reads page and page_size. A malformed page is not found; a
// malformed page_size falls back to the default and is capped at the max.
func pagination(q url.Values) (page, size int, err error) {
	page = 1
	if raw := q.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, dErrors.New(dErrors.CodeNotFound, msgInvalidPage)
		}
	}

	size = DefaultPageSize
	if raw := q.Get("page_size"); raw != "" {
		if n, convErr := strconv.Atoi(raw); convErr == nil && n > 0 {
			size = min(n, MaxPageSize)
		}
	}
	return page, size, nil
}

// pageLink is the request path with page replaced. The first page drops the
// parameter.
func pageLink(req *requestcontext.Request, page int) *string {
	q := url.Values{}
	for k, v := range req.Query {
		q[k] = append([]string(nil), v...)
	}
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	link := req.Path
	if encoded := q.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return &link
}
