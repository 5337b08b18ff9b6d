package inspector

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/tidwall/gjson"
)

// NeedsAuth reports whether image matches one of the authenticated prefixes.
func NeedsAuth(image string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.Contains(image, p) {
			return true
		}
	}
	return false
}

// LoadRegistryAuth reads a containers auth.json and returns the encoded
// registry auth for image. The longest matching key wins, so namespace
// scoped entries override registry wide ones.
func LoadRegistryAuth(authfile, image string) (string, error) {
	data, err := os.ReadFile(authfile)
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("auth file '%s' is not valid JSON", authfile)
	}

	var key, auth string
	gjson.GetBytes(data, "auths").ForEach(func(k, v gjson.Result) bool {
		name := strings.TrimPrefix(strings.TrimPrefix(k.String(), "https://"), "http://")
		name = strings.TrimSuffix(name, "/")
		if name == "" || !matchesRegistry(image, name) || len(name) <= len(key) {
			return true
		}
		key, auth = name, v.Get("auth").String()
		return true
	})

	if key == "" {
		return "", fmt.Errorf("no credentials for '%s' in '%s'", image, authfile)
	}

	decoded, err := base64.StdEncoding.DecodeString(auth)
	if err != nil {
		return "", fmt.Errorf("decode credentials for '%s': %w", key, err)
	}

	user, pass, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", errors.New("credentials are not in user:password form")
	}

	registry, _, _ := strings.Cut(key, "/")
	return encodeAuth(types.AuthConfig{
		Username:      user,
		Password:      pass,
		ServerAddress: registry,
	})
}

func matchesRegistry(image, name string) bool {
	return image == name || strings.HasPrefix(image, name+"/") ||
		strings.HasPrefix(image, name+"@") || strings.HasPrefix(image, name+":")
}

func encodeAuth(auth types.AuthConfig) (string, error) {
	data, err := json.Marshal(auth)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(data), nil
}
