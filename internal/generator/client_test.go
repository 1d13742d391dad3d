package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		wantErr   bool
		wantImage string
	}{
		{
			name: "успешная генерация",
			handler: func(w http.ResponseWriter, r *http.Request) {
				var req GenerateRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "Spa Harmony", req.CompanyName)
				assert.Equal(t, "instagram", req.Platform)
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(GenerateResponse{
					ImageURL: "https://cdn.example.com/img.png",
					Caption:  "Relax with us",
					Hashtags: []string{"#spa", "#massage"},
				})
			},
			wantErr:   false,
			wantImage: "https://cdn.example.com/img.png",
		},
		{
			name: "не-2xx ответ",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantErr: true,
		},
		{
			name: "некорректное тело ответа",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not a json"))
			},
			wantErr: true,
		},
		{
			name: "пустой результат генерации",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(GenerateResponse{})
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewClient(srv.URL, 5*time.Second)
			resp, err := client.Generate(context.Background(), GenerateRequest{
				CompanyName: "Spa Harmony",
				Platform:    "instagram",
				Format:      "story",
			})

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantImage, resp.ImageURL)
				assert.Len(t, resp.Hashtags, 2)
			}
		})
	}
}

func TestClient_Generate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(GenerateResponse{ImageURL: "late"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 50*time.Millisecond)
	_, err := client.Generate(context.Background(), GenerateRequest{})
	require.Error(t, err)
}

func TestClient_Generate_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Generate(ctx, GenerateRequest{})
	require.Error(t, err)
}
