package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithURLParam(key, value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int64
		wantErr error
	}{
		{"valid", "42", 42, nil},
		{"missing", "", 0, domain.ErrValidation},
		{"not a number", "abc", 0, domain.ErrInvalidID},
		{"zero", "0", 0, domain.ErrInvalidID},
		{"negative", "-3", 0, domain.ErrInvalidID},
		{"overflow", "99999999999999999999", 0, domain.ErrInvalidID},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, err := getPathID(requestWithURLParam("id", tc.value), "id")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
		})
	}
}

func TestParseListQuery(t *testing.T) {
	tests := []struct {
		url  string
		want domain.ListQuery
	}{
		{"/users", domain.ListQuery{Page: 1, Size: 10}},
		{"/users?q=ann&page=3&size=5", domain.ListQuery{Q: "ann", Page: 3, Size: 5}},
		{"/users?page=0&size=1000", domain.ListQuery{Page: 1, Size: 100}},
		{"/users?page=x&size=y", domain.ListQuery{Page: 1, Size: 10}},
		{"/users?q=%20bob%20", domain.ListQuery{Q: "bob", Page: 1, Size: 10}},
	}

	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tc.url, nil)
			assert.Equal(t, tc.want, parseListQuery(r))
		})
	}
}
