package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const maxCallbackBody = 64 << 10

// callbackValues holds gateway callback parameters keyed by lower-cased name.
type callbackValues map[string]string

// get returns the first non-empty value among keys.
func (v callbackValues) get(keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(v[k]); s != "" {
			return s
		}
	}
	return ""
}

func (v callbackValues) setFirst(k, val string) {
	k = strings.ToLower(k)
	if _, ok := v[k]; !ok {
		v[k] = val
	}
}

// callbackParams merges a form or JSON body with the query string. Body
// values win over query values.
func callbackParams(c echo.Context) (callbackValues, error) {
	out := callbackValues{}
	req := c.Request()
	ct := strings.ToLower(req.Header.Get(echo.HeaderContentType))

	if req.Method != http.MethodGet && req.Body != nil {
		switch {
		case strings.HasPrefix(ct, echo.MIMEApplicationJSON):
			dec := json.NewDecoder(io.LimitReader(req.Body, maxCallbackBody))
			dec.UseNumber()
			var m map[string]any
			if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
				return nil, err
			}
			for k, v := range m {
				switch t := v.(type) {
				case string:
					out.setFirst(k, t)
				case json.Number:
					out.setFirst(k, t.String())
				}
			}
		case strings.HasPrefix(ct, echo.MIMEApplicationForm), strings.HasPrefix(ct, echo.MIMEMultipartForm):
			req.Body = http.MaxBytesReader(c.Response(), req.Body, maxCallbackBody)
			form, err := c.FormParams()
			if err != nil {
				return nil, err
			}
			for k, vs := range form {
				if len(vs) > 0 {
					out.setFirst(k, vs[0])
				}
			}
		}
	}
	for k, vs := range c.QueryParams() {
		if len(vs) > 0 {
			out.setFirst(k, vs[0])
		}
	}
	return out, nil
}
