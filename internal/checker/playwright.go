package checker

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightBrowser runs headless Chromium through playwright-go.
type PlaywrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// LaunchChromium starts the Playwright driver and a headless Chromium.
// PRE: browsers are installed (go run github.com/playwright-community/playwright-go/cmd/playwright install chromium)
// POST: the caller owns the returned browser and must Close it
func LaunchChromium() (*PlaywrightBrowser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     []string{"--no-sandbox", "--disable-setuid-sandbox"},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	return &PlaywrightBrowser{pw: pw, browser: browser}, nil
}

// NewPage opens a tab with the given viewport.
func (b *PlaywrightBrowser) NewPage(width, height int) (Page, error) {
	page, err := b.browser.NewPage(playwright.BrowserNewPageOptions{
		Viewport: &playwright.Size{Width: width, Height: height},
	})
	if err != nil {
		return nil, err
	}
	return playwrightPage{page: page}, nil
}

// Close shuts the browser and stops the driver.
func (b *PlaywrightBrowser) Close() error {
	berr := b.browser.Close()
	if err := b.pw.Stop(); err != nil {
		return err
	}
	return berr
}

type playwrightPage struct {
	page playwright.Page
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func (p playwrightPage) Goto(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   ms(timeout),
	})
	return err
}

func (p playwrightPage) WaitVisible(selector string, timeout time.Duration) error {
	return p.page.Locator(selector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(timeout),
	})
}

func (p playwrightPage) ScrollIntoView(id string) error {
	_, err := p.page.Evaluate(`(id) => document.getElementById(id)?.scrollIntoView()`, id)
	return err
}

func (p playwrightPage) Type(selector, text string, delay time.Duration) error {
	return p.page.Locator(selector).PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
		Delay: ms(delay),
	})
}

func (p playwrightPage) Click(selector string) error {
	return p.page.Locator(selector).Click()
}

func (p playwrightPage) Text(selector string) (string, error) {
	return p.page.Locator(selector).TextContent()
}

func (p playwrightPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

func (p playwrightPage) Close() error {
	return p.page.Close()
}
