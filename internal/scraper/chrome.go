package scraper

import (
	"os/exec"
	"runtime"

	"github.com/chromedp/chromedp"
)

const scrapeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// allocatorOptions builds the Chrome launch flags. The set keeps the browser
// headless and quiet (no background networking, no throttling of hidden
// renderers) and blocks image loading since the announcements table is pure
// text.
func allocatorOptions(chromePath string) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", "new"),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(scrapeUserAgent),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-plugins", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-ipc-flooding-protection", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	}

	if path := resolveChromePath(chromePath); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}
	return opts
}

// resolveChromePath returns the Chrome executable to launch. An explicitly
// configured path wins; otherwise common per-OS install locations are
// probed. An empty result leaves discovery to the browser driver.
func resolveChromePath(configured string) string {
	if configured != "" {
		return configured
	}

	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = []string{
			`/Applications/Google Chrome.app/Contents/MacOS/Google Chrome`,
			`/Applications/Chromium.app/Contents/MacOS/Chromium`,
			`/usr/local/bin/chrome`,
			`/usr/local/bin/chromium`,
		}
	case "windows":
		candidates = []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files\Chromium\Application\chrome.exe`,
		}
	case "linux":
		candidates = []string{
			`/usr/bin/google-chrome`,
			`/usr/bin/chromium-browser`,
			`/usr/bin/chromium`,
			`/snap/bin/chromium`,
		}
	}

	for _, candidate := range candidates {
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
