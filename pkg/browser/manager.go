// Package browser provides the JS-render crawl mode: pages are loaded in
// a headless Chromium so links injected by client-side scripts become
// visible to the discovery pipeline.
package browser

import (
	"fmt"
	"io"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/playwright-community/playwright-go"
)

var log = logging.Logger("browser")

// Manager owns the Playwright driver and the headless browser instance.
// Sessions are created from it; Stop tears everything down.
type Manager struct {
	mu          sync.Mutex
	pw          *playwright.Playwright
	browser     playwright.Browser
	initialized bool
}

// NewManager creates an unstarted manager.
func NewManager() *Manager {
	return &Manager{}
}

// Start installs the Playwright driver if needed and launches a headless
// Chromium. Safe to call more than once.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Driver install chatter would pollute CLI output; discard it.
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	headless := true
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{Headless: &headless})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("failed to launch chromium: %w", err)
	}

	m.pw = pw
	m.browser = browser
	m.initialized = true
	log.Info("headless chromium started")
	return nil
}

// NewSession opens an isolated browser context with a single page.
func (m *Manager) NewSession(userAgent string, timeout time.Duration) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("browser manager not started")
	}

	contextOpts := playwright.BrowserNewContextOptions{}
	if userAgent != "" {
		contextOpts.UserAgent = &userAgent
	}
	context, err := m.browser.NewContext(contextOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		_ = context.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &Session{
		context:   context,
		page:      page,
		timeout:   timeout,
		CreatedAt: time.Now(),
	}, nil
}

// Stop closes the browser and the Playwright driver.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil
	}
	m.initialized = false

	var firstErr error
	if m.browser != nil {
		if err := m.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.browser = nil
	}
	if m.pw != nil {
		if err := m.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.pw = nil
	}
	return firstErr
}
