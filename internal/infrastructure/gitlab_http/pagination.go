package gitlab_http

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/peterhellberg/link"
)

const perPage = 100

// getAll follows the Link rel="next" chain of a list endpoint.
func getAll[T any](ctx context.Context, c *Client, path string, q url.Values) ([]T, error) {
	if q == nil {
		q = url.Values{}
	}
	q.Set("per_page", strconv.Itoa(perPage))

	var out []T
	next := c.endpoint(path, q)
	for next != "" {
		var page []T
		hdr, err := c.do(ctx, http.MethodGet, next, nil, &page)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		next = nextPage(hdr)
	}

	return out, nil
}

func nextPage(h http.Header) string {
	if l := link.ParseHeader(h)["next"]; l != nil {
		return l.URI
	}
	return ""
}

// total reads X-Total. GitLab omits it above 10000 rows.
func total(h http.Header) (int, bool) {
	v := h.Get("X-Total")
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
