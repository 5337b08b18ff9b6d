package inspector

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var quayManifest = regexp.MustCompile(`https://quay\.io/repository/([^/]+)/([^/]+)/manifest/(sha256:[a-f0-9]+)`)

// ReformatQuayURLs turns Quay manifest page URLs, one per line, into pullable
// references. Lines without such a URL are dropped.
func ReformatQuayURLs(r io.Reader) ([]string, error) {
	images := []string{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := quayManifest.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		images = append(images, fmt.Sprintf("quay.io/%s/%s@%s", m[1], m[2], m[3]))
	}

	return images, scanner.Err()
}

func SanitizeImageName(image string) string {
	return strings.TrimSpace(strings.ReplaceAll(image, "@sha256@sha256:", "@sha256:"))
}
