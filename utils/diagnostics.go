package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// DiagnosticsDebugger writes a bundle per fatal filter failure: a
// full-page screenshot plus the serialized DOM, named by search key and
// failure reason. The bundle is write-only, the monitor never reads it.
type DiagnosticsDebugger struct {
	outputDir string
}

func NewDiagnosticsDebugger(dir string) *DiagnosticsDebugger {
	os.MkdirAll(dir, 0755)
	return &DiagnosticsDebugger{
		outputDir: dir,
	}
}

// CaptureBundle is best effort: a failed capture is logged and swallowed
// so it never masks the error that triggered it.
func (d *DiagnosticsDebugger) CaptureBundle(page playwright.Page, searchKey, reason string) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	base := fmt.Sprintf("%s_%s_%s", searchKey, reason, timestamp)
	log.Printf("📸 Capturing diagnostics for %s (%s)", searchKey, reason)

	//Take screenshot
	shotPath := filepath.Join(d.outputDir, base+".png")
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(shotPath),
		FullPage: playwright.Bool(true),
	}); err != nil {
		log.Printf("⚠️ Failed to capture screenshot: %v", err)
	} else {
		log.Printf("   Screenshot saved: %s", shotPath)
	}

	//Dump the DOM as the page rendered it
	html, err := page.Content()
	if err != nil {
		log.Printf("⚠️ Failed to serialize DOM: %v", err)
		return
	}
	domPath := filepath.Join(d.outputDir, base+".html")
	if err := os.WriteFile(domPath, []byte(html), 0644); err != nil {
		log.Printf("⚠️ Failed to write DOM snapshot: %v", err)
		return
	}
	log.Printf("   DOM snapshot saved: %s", domPath)
}
