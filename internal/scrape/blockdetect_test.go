package scrape

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBlock(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header http.Header
		body   string
		want   BlockType
	}{
		{"cloudflare 403 ray", 403, http.Header{"Cf-Ray": {"abc123"}}, "", BlockCloudflare},
		{"cloudflare 503 server", 503, http.Header{"Server": {"cloudflare"}}, "", BlockCloudflare},
		{"cloudflare body", 200, nil, "<html>Checking your browser before accessing</html>", BlockCloudflare},
		{"captcha body", 200, nil, `<div class="g-recaptcha"></div>`, BlockCaptcha},
		{"js shell", 200, nil, "<html><noscript>Enable JavaScript to continue</noscript></html>", BlockJSShell},
		{"meta refresh", 200, nil, `<meta http-equiv="refresh" content="0;url=/x">`, BlockJSShell},
		{"plain 403", 403, http.Header{}, "forbidden", BlockNone},
		{"normal page", 200, nil, `<div class="company-result"><span class="company-name">Acme</span></div>`, BlockNone},
		{"large page with noscript", 200, nil, "<noscript>javascript</noscript>" + strings.Repeat("x", 3000), BlockNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.header
			if h == nil {
				h = http.Header{}
			}
			assert.Equal(t, tt.want, DetectBlock(tt.status, h, []byte(tt.body)))
		})
	}
}
