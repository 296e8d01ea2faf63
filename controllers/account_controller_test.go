package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tally-hq/tally-api/config"
	"github.com/tally-hq/tally-api/services"
)

// setupMockAuth0Server creates a mock HTTP server that simulates Auth0's
// /userinfo endpoint, keyed by bearer token
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if len(authHeader) < 8 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token := authHeader[7:]

		userInfo, exists := userInfoMap[token]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	}))
}

func TestGetAccount(t *testing.T) {
	mockServer := setupMockAuth0Server(map[string]*services.Auth0UserInfo{
		"valid-token": {
			Sub:   "auth0|account",
			Email: "owner@example.com",
			Name:  "Shop Owner",
		},
	})
	defer mockServer.Close()

	originalConfig := config.GetConfig()
	defer config.SetConfig(originalConfig)
	config.SetConfig(&config.Config{Auth0Domain: mockServer.URL})

	tests := []struct {
		name           string
		accessToken    string
		withAuth       bool
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Successfully fetch profile",
			accessToken:    "valid-token",
			withAuth:       true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Auth0 rejects the token",
			accessToken:    "expired-token",
			withAuth:       true,
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "AUTH0_ERROR",
		},
		{
			name:           "Missing access token",
			withAuth:       false,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "MISSING_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			if tt.withAuth {
				router.GET("/me",
					mockAuthMiddleware("auth0|account", tt.accessToken),
					GetAccount,
				)
			} else {
				router.GET("/me", GetAccount)
			}

			w := performRequest(router, http.MethodGet, "/me", nil)
			assert.Equal(t, tt.expectedStatus, w.Code)

			response := parseResponse(t, w)
			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
				return
			}

			data := response["data"].(map[string]interface{})
			assert.Equal(t, "auth0|account", data["sub"])
			assert.Equal(t, "owner@example.com", data["email"])
			assert.Equal(t, "Shop Owner", data["name"])
		})
	}
}
