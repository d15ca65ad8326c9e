package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is an isolated browser context with one page.
type Session struct {
	context playwright.BrowserContext
	page    playwright.Page
	timeout time.Duration

	CreatedAt time.Time
}

// Navigate loads url and waits for network idle, which is when
// script-driven pages have usually finished injecting their links.
func (s *Session) Navigate(url string) error {
	waitUntil := playwright.WaitUntilStateNetworkidle
	timeout := float64(s.timeout.Milliseconds())

	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: waitUntil,
		Timeout:   &timeout,
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Hrefs returns the href of every anchor in the rendered DOM.
func (s *Session) Hrefs() ([]string, error) {
	result, err := s.page.EvalOnSelectorAll("a[href]", "els => els.map(e => e.href)")
	if err != nil {
		return nil, fmt.Errorf("href extraction failed: %w", err)
	}

	raw, ok := result.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected href evaluation result %T", result)
	}
	hrefs := make([]string, 0, len(raw))
	for _, v := range raw {
		if href, ok := v.(string); ok && href != "" {
			hrefs = append(hrefs, href)
		}
	}
	return hrefs, nil
}

// Close tears down the session's browser context.
func (s *Session) Close() error {
	return s.context.Close()
}
