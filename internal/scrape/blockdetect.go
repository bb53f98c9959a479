package scrape

import (
	"bytes"
	"net/http"
)

// BlockType names the anti-bot wall a response hit.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

var (
	cfMarkers      = [][]byte{[]byte("checking your browser"), []byte("cf-browser-verification"), []byte("cf-chl-")}
	captchaMarkers = [][]byte{[]byte("captcha"), []byte("recaptcha"), []byte("hcaptcha")}
)

// DetectBlock inspects a response for a challenge page instead of content.
// Trade directories put most search pages behind one, so a blocked reply is
// the common case rather than an exception.
func DetectBlock(status int, header http.Header, body []byte) BlockType {
	if status == http.StatusForbidden || status == http.StatusServiceUnavailable {
		if header.Get("cf-ray") != "" || header.Get("cf-mitigated") != "" || header.Get("server") == "cloudflare" {
			return BlockCloudflare
		}
	}

	lower := bytes.ToLower(body)
	for _, m := range cfMarkers {
		if bytes.Contains(lower, m) {
			return BlockCloudflare
		}
	}
	for _, m := range captchaMarkers {
		if bytes.Contains(lower, m) {
			return BlockCaptcha
		}
	}

	// tiny page that only redirects or asks for javascript
	if len(body) < 2000 {
		if bytes.Contains(lower, []byte("<noscript")) && bytes.Contains(lower, []byte("javascript")) {
			return BlockJSShell
		}
		if bytes.Contains(lower, []byte(`http-equiv="refresh"`)) {
			return BlockJSShell
		}
	}
	return BlockNone
}
