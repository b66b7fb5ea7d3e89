// Package platform maps page URLs to known AI chat sites. Detection is a
// pure function of the URL; results are never cached across navigations.
package platform

import (
	"net/url"
	"strings"
)

// Platform identifies a supported AI chat site.
type Platform string

const (
	ChatGPT    Platform = "chatgpt"
	Claude     Platform = "claude"
	Gemini     Platform = "gemini"
	DeepSeek   Platform = "deepseek"
	Grok       Platform = "grok"
	Perplexity Platform = "perplexity"
	Unknown    Platform = "unknown"
)

// rule matches a platform by hostname substrings and, optionally, a path
// substring. First matching rule wins.
type rule struct {
	platform Platform
	hosts    []string
	path     string // additional requirement on the URL path, "" = none
}

// Ordered: grok's bare x.com entry needs the path check, so the more
// specific grok.x.com host sits in the same rule ahead of it.
var rules = []rule{
	{platform: ChatGPT, hosts: []string{"chatgpt.com", "chat.openai.com"}},
	{platform: Claude, hosts: []string{"claude.ai"}},
	{platform: Gemini, hosts: []string{"gemini.google.com", "bard.google.com"}},
	{platform: DeepSeek, hosts: []string{"chat.deepseek.com"}},
	{platform: Grok, hosts: []string{"grok.x.com"}},
	{platform: Grok, hosts: []string{"x.com"}, path: "grok"},
	{platform: Perplexity, hosts: []string{"perplexity.ai"}},
}

// Detect returns the platform for a page URL. Total: malformed input and
// unmatched hostnames both yield Unknown.
func Detect(rawURL string) Platform {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Unknown
	}

	hostname := u.Hostname()
	path := u.Path

	for _, r := range rules {
		if r.path != "" && !strings.Contains(path, r.path) {
			continue
		}
		for _, h := range r.hosts {
			if strings.Contains(hostname, h) {
				return r.platform
			}
		}
	}
	return Unknown
}

// Known reports whether p is a recognized chat site.
func (p Platform) Known() bool {
	return p != Unknown && p != ""
}

// DisplayName returns the capitalized platform name for UI copy.
func (p Platform) DisplayName() string {
	s := string(p)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
