package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/scy"
)

// ErrNoToken is returned when none of the token sources is configured
var ErrNoToken = errors.New("bearer token is required: set --token, MCP_JWT_TOKEN, --token-url or --secret")

// Source represents bearer token sources, checked in field order
type Source struct {
	Token    string
	TokenURL string
	Secret   string
	Key      string
}

// LoadToken returns the bearer token from the first configured source
func LoadToken(ctx context.Context, source *Source) (string, error) {
	if source == nil {
		return "", ErrNoToken
	}
	if token := strings.TrimSpace(source.Token); token != "" {
		return token, nil
	}
	if source.TokenURL != "" {
		data, err := afs.New().DownloadWithURL(ctx, source.TokenURL)
		if err != nil {
			return "", fmt.Errorf("failed to load token from %v: %w", source.TokenURL, err)
		}
		return tokenFrom(data, source.TokenURL)
	}
	if source.Secret != "" {
		URL, key := source.Secret, source.Key
		if index := strings.Index(URL, "|"); index != -1 {
			URL, key = URL[:index], URL[index+1:]
		}
		secret, err := scy.New().Load(ctx, scy.NewResource(nil, URL, key))
		if err != nil {
			return "", fmt.Errorf("failed to load secret %v: %w", URL, err)
		}
		return tokenFrom([]byte(secret.String()), URL)
	}
	return "", ErrNoToken
}

// tokenFrom accepts either a raw token or a JSON document carrying one
func tokenFrom(data []byte, location string) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		document := map[string]interface{}{}
		if err := json.Unmarshal(data, &document); err == nil {
			for _, field := range []string{"token", "access_token", "accessToken", "id_token"} {
				if value, ok := document[field].(string); ok && value != "" {
					return value, nil
				}
			}
			return "", fmt.Errorf("no token field in %v", location)
		}
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty token in %v", location)
	}
	return string(data), nil
}
