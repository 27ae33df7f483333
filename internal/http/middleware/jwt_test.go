package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lucky_streets/internal/service"

	"github.com/gin-gonic/gin"
)

func TestJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service.InitJWT("middleware-test-secret")
	token, err := service.GenerateJWT(42, "ann")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	r := gin.New()
	r.GET("/me", JWT(), func(c *gin.Context) {
		id, _ := c.Get("user_id")
		name, _ := c.Get("user_name")
		c.JSON(http.StatusOK, gin.H{"id": id, "name": name})
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + token, http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status %d; want %d", w.Code, tt.want)
			}
		})
	}
}
